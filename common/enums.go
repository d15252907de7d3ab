// Package common holds enums shared by configuration and processing code.
package common

// Strategy applied to url references.
// ENUM(rebase, inline, copy)
type Mode int

// NeedsDestination reports whether strategy writes files next to the
// destination stylesheet.
func (m Mode) NeedsDestination() bool {
	return m == ModeCopy
}
