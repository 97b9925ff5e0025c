package kai

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates an item, update, or setting failed validation.
	ErrValidation = errors.New("validation error")

	// ErrUnknownChannel indicates a subscribe on a channel nobody provides.
	ErrUnknownChannel = errors.New("unknown channel")

	// ErrChannelOwned indicates a second writer tried to provide a channel.
	ErrChannelOwned = errors.New("channel already provided")

	// ErrChannelType indicates a channel was looked up with the wrong value type.
	ErrChannelType = errors.New("channel type mismatch")

	// ErrChannelClosed indicates a publish on a channel whose owner was closed.
	ErrChannelClosed = errors.New("channel closed")

	// ErrNotFound indicates a room or message does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPaginationTimeout indicates a load-more request was never answered.
	ErrPaginationTimeout = errors.New("pagination request timed out")
)
