package ids

import (
	"strings"
	"testing"
)

func TestNew_UsesPrefix(t *testing.T) {
	id := New("pres")
	if !strings.HasPrefix(id, "pres_") {
		t.Errorf("expected pres_ prefix, got %q", id)
	}
}

func TestNew_UniqueUnderBurst(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New("order")
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestPrefix(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"doctor_1724800000000000000", "doctor"},
		{"elog_1", "elog"},
		{"p_99", "p"},
		{"noseparator", ""},
		{"trailing_", ""},
		{"not_a_number", ""},
	}
	for _, tt := range tests {
		if got := Prefix(tt.id); got != tt.want {
			t.Errorf("Prefix(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
