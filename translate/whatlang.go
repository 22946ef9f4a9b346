package translate

import (
	"strings"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
)

// DefaultMinSampleLength is the shortest sample, in runes, WhatlangDetector
// will try to name.
const DefaultMinSampleLength = 20

// WhatlangDetector is a Detector built on whatlanggo's trigram models.
type WhatlangDetector struct {
	// MinLength is the shortest sample to detect. Zero means
	// DefaultMinSampleLength.
	MinLength int

	// Whitelist limits detection to the given languages when not empty.
	Whitelist map[whatlanggo.Lang]bool
}

// Detect returns the ISO 639-1 code of the language of the sample. It returns
// ErrUnknownLanguage when the sample is too short, the result is not
// reliable, or the language has no two letter code.
func (d *WhatlangDetector) Detect(sample string) (string, error) {
	minLen := d.MinLength
	if minLen <= 0 {
		minLen = DefaultMinSampleLength
	}

	sample = strings.TrimSpace(sample)
	if utf8.RuneCountInString(sample) < minLen {
		return "", ErrUnknownLanguage
	}

	info := whatlanggo.DetectWithOptions(sample, whatlanggo.Options{
		Whitelist: d.Whitelist,
	})
	if !info.IsReliable() {
		return "", ErrUnknownLanguage
	}

	code := info.Lang.Iso6391()
	if code == "" {
		return "", ErrUnknownLanguage
	}

	return code, nil
}
