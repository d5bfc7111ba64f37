package slide

import "testing"

// TestParseMpp verifies the dual-locale microns-per-pixel parse,
// including the comma-decimal fallback used for decoder builds that
// format the value under the host locale.
func TestParseMpp(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"period decimal", "0.25", 0.25},
		{"comma decimal falls back", "0,25", 0.25},
		{"integer", "1", 1},
		{"absent property", "", 0},
		{"garbage", "n/a", 0},
		{"implausibly large", "2500000", 0},
		{"implausibly small", "1e-12", 0},
		{"thousands mark with comma decimal", "1.234,5", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseMpp(tt.raw); got != tt.want {
				t.Errorf("parseMpp(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

// TestMicronsPerPixelFromSource checks the full path through the
// property channel, including a locale-formatted value.
func TestMicronsPerPixelFromSource(t *testing.T) {
	src := NewSynthetic(64, 64, 1)
	src.SetProperty(PropertyMppX, "0,25")
	c := NewChecked(src)

	if got := c.MicronsPerPixel(); got != 0.25 {
		t.Errorf("Expected MPP 0.25 from comma-formatted property, got %v", got)
	}

	src.SetProperty(PropertyMppX, "")
	if got := c.MicronsPerPixel(); got != 0 {
		t.Errorf("Expected MPP 0 for absent property, got %v", got)
	}
}
