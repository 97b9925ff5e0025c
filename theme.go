package kai

import "fmt"

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the widget
// automatically matches any color scheme.
type Theme struct {
	Name      string
	Mine      int // Own message accent
	Theirs    int // Other senders' names
	Muted     int // Timestamps, status bar, placeholders
	Error     int // Error messages
	Selected  int // Selected room and message marker
	Badge     int // New message notification
	Reaction  int // Reaction chips
	Divider   int // Date dividers
	CodeBg    int // Code block background
	Accent    int // Headings, links
	Border    int // Pane borders
	DialogBg  int // Dialog overlay background
	DialogFg  int // Dialog overlay text
	Highlight int // Search matches and active buttons
}

// LightTheme returns the ANSI mapping tuned for light terminal backgrounds.
func LightTheme() Theme {
	return Theme{
		Name:      "light",
		Mine:      4,
		Theirs:    5,
		Muted:     8,
		Error:     1,
		Selected:  6,
		Badge:     4,
		Reaction:  3,
		Divider:   8,
		CodeBg:    7,
		Accent:    5,
		Border:    8,
		DialogBg:  7,
		DialogFg:  0,
		Highlight: 2,
	}
}

// DarkTheme returns the ANSI mapping tuned for dark terminal backgrounds.
func DarkTheme() Theme {
	return Theme{
		Name:      "dark",
		Mine:      12,
		Theirs:    13,
		Muted:     8,
		Error:     9,
		Selected:  14,
		Badge:     12,
		Reaction:  11,
		Divider:   8,
		CodeBg:    0,
		Accent:    13,
		Border:    8,
		DialogBg:  0,
		DialogFg:  15,
		Highlight: 10,
	}
}

// ThemeByName returns the theme registered under name.
func ThemeByName(name string) (Theme, error) {
	switch name {
	case "light":
		return LightTheme(), nil
	case "dark", "":
		return DarkTheme(), nil
	default:
		return Theme{}, fmt.Errorf("unknown theme %q: %w", name, ErrValidation)
	}
}
