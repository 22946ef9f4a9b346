// Package translate produces translated previews of message bodies. A Service
// detects the language of a sample of the body text and, when it is not the
// target language, asks a Translator for a translation. Failures never stop a
// preview. They only add a warning.
package translate

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Defaults used when a Service leaves a setting at its zero value.
const (
	DefaultTarget     = "en"
	DefaultSampleSize = 1500
	DefaultTimeout    = 10 * time.Second
)

// AutoDetect is the source language asking the Translator to work out the
// language itself.
const AutoDetect = "auto"

var (
	// ErrUnknownLanguage is returned by a Detector when the sample is too short
	// or too ambiguous to name a language.
	ErrUnknownLanguage = errors.New("unknown language")
)

// Detector names the language of a text sample with an ISO 639-1 code.
type Detector interface {
	Detect(sample string) (string, error)
}

// Translator translates text from the source language to the target language.
// Languages are ISO 639-1 codes. The source may be AutoDetect. Failures
// should be returned as a *TranslationError.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// TranslationError is returned when a translation fails.
type TranslationError struct {
	Source string
	Target string
	Err    error
}

// Error returns the error message.
func (err *TranslationError) Error() string {
	return fmt.Sprintf("unable to translate from %s to %s: %v", err.Source, err.Target, err.Err)
}

// Unwrap returns the cause of the error.
func (err *TranslationError) Unwrap() error {
	return err.Err
}
