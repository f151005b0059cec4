// Package ui provides terminal UI utilities for ctxsync.
package ui

import (
	"github.com/fatih/color"
)

// Color function types for styled output.
var (
	// Success is used for successful operations (green).
	Success = color.New(color.FgGreen).SprintFunc()
	// Error is used for errors and failures (red).
	Error = color.New(color.FgRed).SprintFunc()
	// Warning is used for warnings and drift notices (yellow).
	Warning = color.New(color.FgYellow).SprintFunc()
	// Info is used for informational messages (cyan).
	Info = color.New(color.FgCyan).SprintFunc()
	// Bold is used for emphasis.
	Bold = color.New(color.Bold).SprintFunc()
	// Dim is used for secondary information (faint).
	Dim = color.New(color.Faint).SprintFunc()
	// Header is used for section headers (bold cyan).
	Header = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Status symbols.
const (
	SymbolInSync  = "✓"
	SymbolError   = "✗"
	SymbolDrift   = "~"
	SymbolMissing = "-"
)

// StatusInSync returns a green checkmark with optional message.
func StatusInSync(msg string) string {
	if msg == "" {
		return Success(SymbolInSync)
	}
	return Success(SymbolInSync) + " " + msg
}

// StatusError returns a red X with optional message.
func StatusError(msg string) string {
	if msg == "" {
		return Error(SymbolError)
	}
	return Error(SymbolError) + " " + msg
}

// StatusDrift returns a yellow drift marker with optional message.
func StatusDrift(msg string) string {
	if msg == "" {
		return Warning(SymbolDrift)
	}
	return Warning(SymbolDrift) + " " + msg
}

// StatusMissing returns a dimmed marker for absent targets.
func StatusMissing(msg string) string {
	if msg == "" {
		return Dim(SymbolMissing)
	}
	return Dim(SymbolMissing) + " " + msg
}

// DisableColors disables all color output. Useful when piping output or
// honoring --no-color.
func DisableColors() {
	color.NoColor = true
}

// EnableColors enables color output.
func EnableColors() {
	color.NoColor = false
}

// IsColorEnabled returns whether colors are currently enabled.
func IsColorEnabled() bool {
	return !color.NoColor
}
