package common

import "testing"

func TestRoundTo(t *testing.T) {
	tests := []struct {
		name     string
		v        float64
		decimals int
		want     float64
	}{
		{"three places", 1.23456, 3, 1.235},
		{"already exact", 2.5, 3, 2.5},
		{"negative", -0.0004, 3, -0.0},
		{"zero decimals", 1.6, 0, 2},
		{"negative decimals", 1.4, -2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundTo(tt.v, tt.decimals)
			if got != tt.want {
				t.Fatalf("RoundTo(%v, %d) = %v, want %v", tt.v, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 1); got != 1 {
		t.Fatalf("Clamp(5,0,1) = %v, want 1", got)
	}
	if got := Clamp(-5, 0, 1); got != 0 {
		t.Fatalf("Clamp(-5,0,1) = %v, want 0", got)
	}
	if got := Clamp(0.5, 0, 1); got != 0.5 {
		t.Fatalf("Clamp(0.5,0,1) = %v, want 0.5", got)
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(0, 10, 0.25); got != 2.5 {
		t.Fatalf("Lerp(0,10,0.25) = %v, want 2.5", got)
	}
}
