// Package langcheck gives a second opinion on whether recovered plaintext is
// English, independent of the frequency tables used to recover it.
package langcheck

import (
	"github.com/pemistahl/lingua-go"
)

// Languages the detector chooses between.
var languages = []lingua.Language{
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
}

// Detector wraps a language detector. It is safe for concurrent use.
type Detector struct {
	detector lingua.LanguageDetector
}

// New returns a detector. Language models are loaded on first use.
func New() *Detector {
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			Build(),
	}
}

// IsEnglish returns true if English is the most likely language of the text.
func (d *Detector) IsEnglish(text string) bool {
	lang, ok := d.detector.DetectLanguageOf(text)
	return ok && lang == lingua.English
}

// Confidence returns a value in [0, 1] for the text being English.
func (d *Detector) Confidence(text string) float64 {
	return d.detector.ComputeLanguageConfidence(text, lingua.English)
}
