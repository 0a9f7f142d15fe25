package services

import "testing"

func TestCalculateLevel(t *testing.T) {
	tests := []struct {
		totalXP int
		want    int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},  // 100 + 150
		{474, 3},
		{475, 4},  // 100 + 150 + 225
	}

	for _, tt := range tests {
		if got := calculateLevel(tt.totalXP); got != tt.want {
			t.Errorf("calculateLevel(%d) = %d, want %d", tt.totalXP, got, tt.want)
		}
	}
}

func TestXPToNextLevel(t *testing.T) {
	tests := []struct {
		totalXP int
		want    int
	}{
		{0, 100},
		{40, 60},
		{100, 150},
		{120, 130},
		{250, 225},
	}

	for _, tt := range tests {
		if got := xpToNextLevel(tt.totalXP); got != tt.want {
			t.Errorf("xpToNextLevel(%d) = %d, want %d", tt.totalXP, got, tt.want)
		}
	}
}
