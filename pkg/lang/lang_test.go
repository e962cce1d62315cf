package lang

import "testing"

func TestInfer(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain english", "hello", EnglishUS},
		{"empty string", "", EnglishUS},
		{"devanagari word", "नमस्ते", HindiIN},
		{"mixed script", "please say नमस्ते", HindiIN},
		{"single devanagari rune", "aकb", HindiIN},
		{"digits and punctuation", "123!?", EnglishUS},
		{"other non-latin script", "Привет", EnglishUS},
		{"devanagari digits", "१२", HindiIN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Infer(tt.text); got != tt.want {
				t.Errorf("Infer(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestBase(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"en-US", "en"},
		{"hi-IN", "hi"},
		{"en", "en"},
		{"auto", "und"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Base(tt.tag); got != tt.want {
			t.Errorf("Base(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		voiceLang string
		tag       string
		want      bool
	}{
		{"en-US", "en-US", true},
		{"en-GB", "en-US", true},
		{"hi-IN", "hi-IN", true},
		{"hi", "hi-IN", true},
		{"en-US", "hi-IN", false},
		{"", "en-US", false},
		{"en-US", "", false},
	}

	for _, tt := range tests {
		if got := Matches(tt.voiceLang, tt.tag); got != tt.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tt.voiceLang, tt.tag, got, tt.want)
		}
	}
}
