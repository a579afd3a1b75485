// Package langdetect guesses the language a caption is written in.
package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// minLetters is the shortest sample worth classifying.
const minLetters = 6

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// candidateLanguages is the source locale plus every translation target.
var candidateLanguages = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.French,
	lingua.German,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Japanese,
	lingua.Korean,
	lingua.Chinese,
	lingua.Arabic,
	lingua.Hindi,
	lingua.Russian,
	lingua.Turkish,
}

// DetectISO6391 returns the two-letter code of text's language, or "" when the
// sample is too short or the detector is unsure.
func DetectISO6391(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < minLetters {
		return ""
	}

	language, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(candidateLanguages...).
			Build()
	})
	return detector
}
