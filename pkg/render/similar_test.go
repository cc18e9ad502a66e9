package render

import "testing"

func TestSimilar(t *testing.T) {
	tests := []struct {
		s, t string
		want float64
	}{
		{"hello world", "hellow world", 0.917},
		{"", "", 1},
		{"abc", "abc", 1},
		{"abc", "", 0},
		{"", "abc", 0},
		{"abc", "xyz", 0},
		{"kitten", "sitting", 0.571},
		{"日本語", "日本", 0.667},
	}
	for _, tt := range tests {
		if got := Similar(tt.s, tt.t); got != tt.want {
			t.Errorf("Similar(%q, %q) = %v, want %v", tt.s, tt.t, got, tt.want)
		}
	}
}

func TestSimilarSymmetric(t *testing.T) {
	pairs := [][2]string{
		{`class="app"`, `class="apps" id="x"`},
		{"data-value=1", "data-value=2"},
		{"a", "ab"},
	}
	for _, p := range pairs {
		if a, b := Similar(p[0], p[1]), Similar(p[1], p[0]); a != b {
			t.Errorf("Similar(%q, %q) = %v but reversed = %v", p[0], p[1], a, b)
		}
	}
}

func TestSimilarPrecision(t *testing.T) {
	if got := SimilarPrecision("hello world", "hellow world", 1); got != 0.9 {
		t.Errorf("SimilarPrecision(1) = %v, want 0.9", got)
	}
	if got := SimilarPrecision("hello world", "hellow world", 5); got != 0.91667 {
		t.Errorf("SimilarPrecision(5) = %v, want 0.91667", got)
	}
}
