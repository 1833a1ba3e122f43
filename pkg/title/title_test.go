package title

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases",
			input: "Topside Mast",
			want:  "topside mast",
		},
		{
			name:  "strips punctuation",
			input: "Ar'Tel, Wandering Scout",
			want:  "artel wandering scout",
		},
		{
			name:  "strips leading article a",
			input: "A Perfect Day",
			want:  "perfect day",
		},
		{
			name:  "strips leading article an",
			input: "An Errant Breeze",
			want:  "errant breeze",
		},
		{
			name:  "strips leading article the",
			input: "The Fractured Wall",
			want:  "fractured wall",
		},
		{
			name:  "interior article is kept",
			input: "Crossing the Valley",
			want:  "crossing the valley",
		},
		{
			name:  "only one leading article removed",
			input: "The A Team",
			want:  "a team",
		},
		{
			name:  "article alone survives",
			input: "The",
			want:  "the",
		},
		{
			name:  "collapses whitespace",
			input: "  Silver   Moth  ",
			want:  "silver moth",
		},
		{
			name:  "hyphenated words merge",
			input: "Rock-Slide",
			want:  "rockslide",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"identical", "Perceptive", "Perceptive", true},
		{"case insensitive", "perceptive", "PERCEPTIVE", true},
		{"article insensitive", "A Perfect Day", "Perfect Day", true},
		{"punctuation insensitive", "Ar'Tel", "ArTel", true},
		{"different titles", "Perceptive", "Persuasive", false},
		{"shared word is not a match", "Perfect Day", "Perfect Night", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
