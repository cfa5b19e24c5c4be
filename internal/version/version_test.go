// ABOUTME: Tests for version constants
// ABOUTME: Checks the release number format and the string the commands print
package version

import (
	"strconv"
	"strings"
	"testing"
)

func TestVersionIsDottedRelease(t *testing.T) {
	parts := strings.Split(Version, ".")
	if len(parts) != 3 {
		t.Fatalf("expected major.minor.patch, got %q", Version)
	}
	for _, part := range parts {
		if _, err := strconv.Atoi(part); err != nil {
			t.Errorf("non-numeric component %q in %q", part, Version)
		}
	}
}

func TestIdentification(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"product matches binary", Product, "pcmout"},
		{"manufacturer", Manufacturer, "Resonate"},
		{"string", String(), "pcmout " + Version},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
