package pricing

import (
	"math"
	"testing"
)

func TestCostSingleTokenTypes(t *testing.T) {
	tests := []struct {
		name  string
		usage TokenUsage
		want  float64
	}{
		{"input only", TokenUsage{InputTokens: 1_000_000}, 3.00},
		{"output only", TokenUsage{OutputTokens: 1_000_000}, 15.00},
		{"cache read only", TokenUsage{CacheReadInputTokens: 1_000_000}, 0.30},
		{"cache create only", TokenUsage{CacheCreationInputTokens: 1_000_000}, 3.75},
		{"zero usage", TokenUsage{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cost(tt.usage)
			if got != tt.want {
				t.Errorf("Cost(%+v) = %v, want %v", tt.usage, got, tt.want)
			}
		})
	}
}

func TestCostAllTokenTypesCombined(t *testing.T) {
	u := TokenUsage{
		InputTokens:              1_000_000,
		OutputTokens:             1_000_000,
		CacheReadInputTokens:     1_000_000,
		CacheCreationInputTokens: 1_000_000,
	}
	got := Cost(u)
	want := 22.05
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Cost(all four) = %v, want %v", got, want)
	}
}

func TestTotal(t *testing.T) {
	u := TokenUsage{InputTokens: 120, OutputTokens: 80, CacheReadInputTokens: 999}
	if got := u.Total(); got != 200 {
		t.Errorf("Total() = %d, want 200", got)
	}
}
