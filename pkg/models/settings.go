package models

import "time"

// Settings represents the application configuration
type Settings struct {
	Sync   SyncSettings   `yaml:"sync"`
	Store  StoreSettings  `yaml:"store"`
	Editor EditorSettings `yaml:"editor"`
	UI     UISettings     `yaml:"ui"`
}

// SyncSettings controls how committed edits are written back
type SyncSettings struct {
	// GroupDebounce is the quiet interval for multi-field records (client block, terms)
	GroupDebounce time.Duration `yaml:"group_debounce" validate:"gt=0"`
	// DocumentDebounce is the quiet interval for whole-contract text
	DocumentDebounce time.Duration `yaml:"document_debounce" validate:"gt=0"`
	// WriteTimeout bounds a single write; zero leaves it to the store
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gte=0"`
}

// StoreSettings selects the persistence backend
type StoreSettings struct {
	Backend string `yaml:"backend" validate:"oneof=file sqlite postgres memory"`
	Path    string `yaml:"path,omitempty"`
	DSN     string `yaml:"dsn,omitempty"`
}

// EditorSettings controls inline editing behavior
type EditorSettings struct {
	// Exclusive keeps at most one field in editing mode session-wide
	Exclusive bool `yaml:"exclusive"`
	// MultilineCommit overrides the platform-specific commit key for multi-line fields
	MultilineCommit string `yaml:"multiline_commit,omitempty"`
}

// UISettings controls UI preferences
type UISettings struct {
	ShowTotals bool `yaml:"show_totals"`
}

// DefaultSettings returns the default configuration
func DefaultSettings() *Settings {
	return &Settings{
		Sync: SyncSettings{
			GroupDebounce:    1500 * time.Millisecond,
			DocumentDebounce: 500 * time.Millisecond,
		},
		Store: StoreSettings{
			Backend: "file",
		},
		Editor: EditorSettings{
			Exclusive: true,
		},
		UI: UISettings{
			ShowTotals: true,
		},
	}
}
