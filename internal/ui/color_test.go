package ui

import (
	"testing"
)

func TestStatusFunctions(t *testing.T) {
	// Disable colors for consistent test output
	DisableColors()
	defer EnableColors()

	tests := []struct {
		name  string
		fn    func(string) string
		input string
		want  string
	}{
		{"StatusInSync empty", StatusInSync, "", SymbolInSync},
		{"StatusInSync with msg", StatusInSync, "claude-code", SymbolInSync + " claude-code"},
		{"StatusError empty", StatusError, "", SymbolError},
		{"StatusError with msg", StatusError, "generation failed", SymbolError + " generation failed"},
		{"StatusDrift empty", StatusDrift, "", SymbolDrift},
		{"StatusDrift with msg", StatusDrift, "cursor modified", SymbolDrift + " cursor modified"},
		{"StatusMissing empty", StatusMissing, "", SymbolMissing},
		{"StatusMissing with msg", StatusMissing, "not generated", SymbolMissing + " not generated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(tt.input)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColorToggle(t *testing.T) {
	initial := IsColorEnabled()

	DisableColors()
	if IsColorEnabled() {
		t.Error("expected colors to be disabled")
	}

	EnableColors()
	if !IsColorEnabled() {
		t.Error("expected colors to be enabled")
	}

	if !initial {
		DisableColors()
	}
}

func TestColorFunctionsPlainWhenDisabled(t *testing.T) {
	DisableColors()
	defer EnableColors()

	fns := map[string]func(...interface{}) string{
		"Success": Success,
		"Error":   Error,
		"Warning": Warning,
		"Info":    Info,
		"Bold":    Bold,
		"Dim":     Dim,
		"Header":  Header,
	}
	for name, fn := range fns {
		if got := fn("test"); got != "test" {
			t.Errorf("%s() = %q, want %q", name, got, "test")
		}
	}
}
