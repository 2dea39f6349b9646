package news

import "testing"

func TestTierRoundTrip(t *testing.T) {
	for _, tier := range []Tier{TierLow, TierMedium, TierHigh} {
		if got := ParseTier(tier.String()); got != tier {
			t.Errorf("ParseTier(%q) = %v, want %v", tier.String(), got, tier)
		}
	}
	if got := ParseTier("unknown"); got != TierLow {
		t.Errorf("unknown tier should parse low, got %v", got)
	}
}

func TestRunStatsGroupLazyInit(t *testing.T) {
	var s RunStats
	s.Group("international").Raw = 5
	s.Group("international").Filtered = 3

	if s.Groups["international"].Raw != 5 || s.Groups["international"].Filtered != 3 {
		t.Errorf("unexpected stats %+v", s.Groups["international"])
	}
	if len(s.Groups) != 1 {
		t.Errorf("expected 1 group, got %d", len(s.Groups))
	}
}
