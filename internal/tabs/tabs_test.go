package tabs

import (
	"errors"
	"testing"
)

var slots = []string{"Medicinal Uses", "How to Grow", "Warnings"}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		names      []string
		active     string
		wantActive string
		wantErr    bool
	}{
		{"defaults to first", slots, "", "Medicinal Uses", false},
		{"explicit active", slots, "Warnings", "Warnings", false},
		{"unknown active", slots, "Pests", "", true},
		{"no slots", nil, "", "", true},
		{"duplicate slots", []string{"A", "A"}, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.names, tt.active)
			if tt.wantErr {
				if err == nil {
					t.Error("New() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := c.Active(); got != tt.wantActive {
				t.Errorf("Active() = %q, want %q", got, tt.wantActive)
			}
		})
	}
}

func TestSelect_ExactlyOneActive(t *testing.T) {
	c, err := New(slots, "")
	if err != nil {
		t.Fatal(err)
	}

	for _, target := range []string{"How to Grow", "Warnings", "Medicinal Uses"} {
		if err := c.Select(target); err != nil {
			t.Fatalf("Select(%q) error = %v", target, err)
		}
		active := 0
		for _, n := range c.Names() {
			if c.IsActive(n) {
				active++
			}
		}
		if active != 1 || !c.IsActive(target) {
			t.Errorf("after Select(%q): %d active, IsActive = %v", target, active, c.IsActive(target))
		}
	}
}

func TestSelect_UnknownLeavesSelection(t *testing.T) {
	c, _ := New(slots, "How to Grow")

	err := c.Select("Pests")
	if !errors.Is(err, ErrUnknownTab) {
		t.Errorf("Select() error = %v, want ErrUnknownTab", err)
	}
	if c.Active() != "How to Grow" || c.Index() != 1 {
		t.Errorf("Active() = %q (index %d), want unchanged", c.Active(), c.Index())
	}
}

func TestNames_ReturnsCopy(t *testing.T) {
	c, _ := New(slots, "")
	names := c.Names()
	names[0] = "mutated"

	if c.Names()[0] != "Medicinal Uses" {
		t.Error("Names() must not expose internal state")
	}
}
