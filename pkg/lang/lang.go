// Package lang provides the language tags and script detection used across
// the conversation pipeline. Detection is deliberately tiny: the client only
// distinguishes Devanagari-script text (Hindi) from everything else
// (English), and that rule is authoritative wherever the reply service does
// not supply an explicit language tag.
package lang

import (
	"strings"
	"unicode"
)

// Language tags understood by the client.
const (
	// EnglishUS is the default recognition and synthesis language.
	EnglishUS = "en-US"

	// HindiIN selects Hindi recognition decoding and a Hindi voice.
	HindiIN = "hi-IN"

	// Auto asks capture to use its default decode language while the
	// translation stage treats the source as undetermined.
	Auto = "auto"

	// Undetermined is the BCP-47 "und" subtag sent when the source
	// language is unknown.
	Undetermined = "und"
)

// Infer classifies text by script: any Devanagari code point means Hindi,
// otherwise English. Pure and deterministic.
func Infer(text string) string {
	for _, r := range text {
		if unicode.Is(unicode.Devanagari, r) {
			return HindiIN
		}
	}
	return EnglishUS
}

// Base returns the primary language subtag: "hi-IN" -> "hi".
// "auto" maps to "und" since capture cannot truly auto-detect.
func Base(tag string) string {
	if tag == Auto {
		return Undetermined
	}
	if i := strings.IndexByte(tag, '-'); i >= 0 {
		return tag[:i]
	}
	return tag
}

// Matches reports whether a voice's language tag serves the requested tag,
// comparing primary subtags ("hi-IN" serves "hi").
func Matches(voiceLang, tag string) bool {
	if voiceLang == "" || tag == "" {
		return false
	}
	return Base(voiceLang) == Base(tag)
}
