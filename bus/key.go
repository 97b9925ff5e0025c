package bus

// Key is the typed identity of a channel. Providers and subscribers that
// share a name must agree on T.
type Key[T any] struct {
	name  string
	equal func(a, b T) bool
}

// KeyOption configures a Key.
type KeyOption[T any] func(*Key[T])

// WithEqual replaces the default shallow comparison used to collapse
// publishes of unchanged values.
func WithEqual[T any](fn func(a, b T) bool) KeyOption[T] {
	return func(k *Key[T]) {
		k.equal = fn
	}
}

// NewKey creates a key for the channel called name.
func NewKey[T any](name string, opts ...KeyOption[T]) Key[T] {
	k := Key[T]{name: name, equal: Shallow[T]}
	for _, opt := range opts {
		opt(&k)
	}
	return k
}

// Name returns the channel name.
func (k Key[T]) Name() string { return k.name }
