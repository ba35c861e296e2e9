package editable

import (
	"runtime"
	"strings"
)

// OSType represents the operating system type
type OSType int

const (
	OSMac OSType = iota
	OSLinux
	OSWindows
	OSUnknown
)

// GetOS returns the current operating system type
func GetOS() OSType {
	return osFromGOOS(runtime.GOOS)
}

func osFromGOOS(goos string) OSType {
	switch goos {
	case "darwin":
		return OSMac
	case "linux":
		return OSLinux
	case "windows":
		return OSWindows
	default:
		return OSUnknown
	}
}

// ShortcutKey represents a keyboard shortcut with OS-specific variations
type ShortcutKey struct {
	Mac     string
	Linux   string
	Windows string
	Default string // Fallback if OS-specific not defined
}

// Get returns the appropriate shortcut for the current OS
func (s ShortcutKey) Get() string {
	return s.For(GetOS())
}

// For returns the shortcut for the given OS
func (s ShortcutKey) For(os OSType) string {
	switch os {
	case OSMac:
		if s.Mac != "" {
			return s.Mac
		}
	case OSLinux:
		if s.Linux != "" {
			return s.Linux
		}
	case OSWindows:
		if s.Windows != "" {
			return s.Windows
		}
	}
	return s.Default
}

// Shortcuts contains the inline editing keys with OS-specific variations
var Shortcuts = struct {
	Activate        ShortcutKey
	Commit          ShortcutKey
	CommitMultiline ShortcutKey
	Cancel          ShortcutKey
	AcceptSuggest   ShortcutKey
	ToggleOverride  ShortcutKey
	Retry           ShortcutKey
	Copy            ShortcutKey
	Quit            ShortcutKey
}{
	Activate: ShortcutKey{
		Default: "e",
	},
	Commit: ShortcutKey{
		Default: "enter",
	},
	// Multi-line fields keep plain Enter for newlines
	CommitMultiline: ShortcutKey{
		Mac:     "alt+enter",
		Linux:   "alt+enter",
		Windows: "alt+s", // Windows Terminal takes alt+enter for fullscreen
		Default: "alt+enter",
	},
	Cancel: ShortcutKey{
		Default: "esc",
	},
	AcceptSuggest: ShortcutKey{
		Default: "tab",
	},
	ToggleOverride: ShortcutKey{
		Mac:     "ctrl+o",
		Linux:   "alt+o",
		Windows: "alt+o",
		Default: "ctrl+o",
	},
	Retry: ShortcutKey{
		Mac:     "ctrl+r",
		Linux:   "alt+r", // Avoid readline reverse search
		Windows: "alt+r",
		Default: "ctrl+r",
	},
	Copy: ShortcutKey{
		Default: "y",
	},
	Quit: ShortcutKey{
		Default: "ctrl+c",
	},
}

// FormatShortcutForHelp formats a shortcut key for display in help text
func FormatShortcutForHelp(key ShortcutKey) string {
	return FormatKeyForHelp(key.Get())
}

// FormatKeyForHelp formats a bubbletea key string for display in help text
func FormatKeyForHelp(key string) string {
	return formatShortcut(key, GetOS())
}

func formatShortcut(shortcut string, os OSType) string {
	// Use M- prefix for Alt on Linux/Windows (common terminal convention)
	if os == OSLinux || os == OSWindows {
		shortcut = strings.ReplaceAll(shortcut, "alt+", "M-")
	} else {
		shortcut = strings.ReplaceAll(shortcut, "alt+", "⌥")
	}
	shortcut = strings.ReplaceAll(shortcut, "ctrl+", "^")
	shortcut = strings.ReplaceAll(shortcut, "shift+", "⇧")
	return shortcut
}
