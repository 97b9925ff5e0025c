// Package toml loads the kai configuration file and locale string tables
// from TOML.
package toml

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/kai"
	"github.com/fwojciec/kai/scroll"
)

// Config is the file configuration of the kai command.
//
//	theme = "dark"
//	user = "alice"
//	locale = "fr"
//	locale_dir = "locales"
//	pagination_timeout = "15s"
//	page_size = 30
//
//	[features]
//	markdown = true
//	align_mine_left = false
//
//	[footer]
//	enter_to_send = true
type Config struct {
	Theme             string   `toml:"theme"`
	User              string   `toml:"user"`
	Database          string   `toml:"database"`
	Locale            string   `toml:"locale"`
	LocaleDir         string   `toml:"locale_dir"`
	PaginationTimeout Duration `toml:"pagination_timeout"`
	PageSize          int      `toml:"page_size"`
	Mouse             bool     `toml:"mouse"`
	Sidebar           bool     `toml:"sidebar"`

	Features FeaturesConfig `toml:"features"`
	Footer   FooterConfig   `toml:"footer"`
}

// FeaturesConfig mirrors kai.Features.
type FeaturesConfig struct {
	Emoji         bool `toml:"emoji"`
	Reactions     bool `toml:"reactions"`
	Reply         bool `toml:"reply"`
	Attachments   bool `toml:"attachments"`
	Markdown      bool `toml:"markdown"`
	RoomAvatar    bool `toml:"room_avatar"`
	TheirAvatar   bool `toml:"their_avatar"`
	AlignMineLeft bool `toml:"align_mine_left"`
	SingleRoom    bool `toml:"single_room"`
}

// FooterConfig holds composer settings.
type FooterConfig struct {
	EnterToSend bool `toml:"enter_to_send"`
}

// Duration is a time.Duration written as a Go duration string.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	f := kai.DefaultFeatures()
	return Config{
		Theme:             "dark",
		User:              "me",
		Database:          "kai.db",
		LocaleDir:         "locales",
		PaginationTimeout: Duration{scroll.DefaultTimeout},
		PageSize:          30,
		Mouse:             true,
		Sidebar:           true,
		Features: FeaturesConfig{
			Emoji:         f.Emoji,
			Reactions:     f.Reactions,
			Reply:         f.Reply,
			Attachments:   f.Attachments,
			Markdown:      f.Markdown,
			RoomAvatar:    f.RoomAvatar,
			TheirAvatar:   f.TheirAvatar,
			AlignMineLeft: f.AlignMineLeft,
			SingleRoom:    f.SingleRoom,
		},
		Footer: FooterConfig{EnterToSend: true},
	}
}

// Load reads the file at path over the defaults. A missing file yields
// the defaults. Keys the config does not know are rejected.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, iofs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config %s: unknown keys %s: %w", path, strings.Join(keys, ", "), kai.ErrValidation)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses a configuration document over the defaults.
func Decode(data string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.Decode(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the widget cannot use.
func (c Config) Validate() error {
	if _, err := kai.ThemeByName(c.Theme); err != nil {
		return err
	}
	if c.User == "" {
		return fmt.Errorf("user is required: %w", kai.ErrValidation)
	}
	if c.PaginationTimeout.Duration < 0 {
		return fmt.Errorf("pagination_timeout must not be negative: %w", kai.ErrValidation)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d: %w", c.PageSize, kai.ErrValidation)
	}
	return nil
}

// KaiFeatures converts the features table.
func (c Config) KaiFeatures() kai.Features {
	f := c.Features
	return kai.Features{
		Emoji:         f.Emoji,
		Reactions:     f.Reactions,
		Reply:         f.Reply,
		Attachments:   f.Attachments,
		Markdown:      f.Markdown,
		RoomAvatar:    f.RoomAvatar,
		TheirAvatar:   f.TheirAvatar,
		AlignMineLeft: f.AlignMineLeft,
		SingleRoom:    f.SingleRoom,
	}
}

// Updates returns the host updates that apply the configuration to a
// widget.
func (c Config) Updates() []kai.Update {
	return []kai.Update{
		kai.CurrentUserUpdate{UserID: c.User},
		kai.ThemeUpdate{Name: c.Theme},
		kai.FeaturesUpdate{Features: c.KaiFeatures()},
		kai.FooterUpdate{State: kai.FooterState{EnterToSend: c.Footer.EnterToSend}},
		kai.SidebarUpdate{Visible: c.Sidebar},
	}
}
