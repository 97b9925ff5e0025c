package kai

// Direction is a pagination direction of a scrolling list.
type Direction int

const (
	Top    Direction = iota // older items
	Bottom                  // newer items
)

func (d Direction) String() string {
	switch d {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	default:
		return "unknown"
	}
}
