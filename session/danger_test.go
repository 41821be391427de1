package session

import "testing"

func TestHeroLeavesScene(t *testing.T) {
	cases := []struct {
		danger        int
		complications int
		leaves        bool
	}{
		{0, 0, false},
		{0, 7, false}, // not dangerous: never leaves
		{1, 0, false},
		{1, 1, true},
		{2, 1, false},
		{2, 2, true},
		{3, 3, true},
		{4, 3, false},
		{4, 4, true},
	}
	for _, tc := range cases {
		if got := HeroLeavesScene(tc.danger, tc.complications); got != tc.leaves {
			t.Errorf("HeroLeavesScene(%d, %d) = %v, want %v", tc.danger, tc.complications, got, tc.leaves)
		}
	}
}

func TestDangerLabels(t *testing.T) {
	if DangerLabel(0) != "Not Dangerous" {
		t.Errorf("level 0: %q", DangerLabel(0))
	}
	for level := 1; level <= MaxDanger; level++ {
		if DangerLabel(level) == "" || DangerLabel(level) == DangerLabel(level-1) {
			t.Errorf("level %d label: %q", level, DangerLabel(level))
		}
	}
}
