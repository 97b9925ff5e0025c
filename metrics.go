package kai

// Metrics receives counters from the bus and the pagination gates.
type Metrics interface {
	ChannelPublished(channel string)
	ChannelCoalesced(channel string)
	PaginationRequested(target Target, dir Direction)
	PaginationIgnored(target Target, dir Direction)
	PaginationTimedOut(target Target, dir Direction)
}

// NopMetrics discards all counters.
type NopMetrics struct{}

func (NopMetrics) ChannelPublished(string)               {}
func (NopMetrics) ChannelCoalesced(string)               {}
func (NopMetrics) PaginationRequested(Target, Direction) {}
func (NopMetrics) PaginationIgnored(Target, Direction)   {}
func (NopMetrics) PaginationTimedOut(Target, Direction)  {}

var _ Metrics = NopMetrics{}
