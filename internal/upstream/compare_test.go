package upstream

import "testing"

func TestNeedsUpdate(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		resolved string
		force    bool
		want     bool
	}{
		{"equal versions", "1.0", "1.0", false, false},
		{"equal versions forced", "1.0", "1.0", true, true},
		{"newer upstream", "1.0", "1.1", false, true},
		{"older upstream still differs", "2.0", "1.9", false, true},
		{"different forced", "1.0", "1.1", true, true},
		{"empty current", "", "1.0", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsUpdate(tt.current, tt.resolved, tt.force); got != tt.want {
				t.Errorf("NeedsUpdate(%q, %q, %v) = %v, want %v",
					tt.current, tt.resolved, tt.force, got, tt.want)
			}
		})
	}
}
