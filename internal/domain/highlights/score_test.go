package highlights

import "testing"

func TestScore_Table(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"none", "selamat pagi semua", 0},
		{"two", "ternyata gila", 2},
		{"case", "WOW, Breaking!", 2},
		{"repeat counts once", "gila gila gila", 1},
		{"substring", "faktanya begitu", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.text); got != tt.want {
				t.Fatalf("Score(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}
