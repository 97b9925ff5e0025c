// Package scroll implements the policy of a bidirectionally paginated,
// bottom-anchored list: boundary sentinels, pagination gates, mutation
// classification and scroll anchoring. It has no UI dependency; callers
// supply measurements through Metrics and act through Scroller.
package scroll

// Metrics is a measurement of a scroll container in rows.
type Metrics struct {
	Top          int // first visible row
	Height       int // total content rows
	ClientHeight int // visible rows
}

// DistanceFromBottom returns the number of rows below the visible area.
func (m Metrics) DistanceFromBottom() int {
	return max(0, m.Height-m.Top-m.ClientHeight)
}

// NearBottom reports whether the viewer is within one viewport height of
// the true bottom.
func (m Metrics) NearBottom() bool {
	return m.DistanceFromBottom() <= m.ClientHeight
}

// MaxTop returns the largest valid Top.
func (m Metrics) MaxTop() int {
	return max(0, m.Height-m.ClientHeight)
}
