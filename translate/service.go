package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/zostay/emledit/edit"
)

// Service holds the collaborators and settings for translated previews. A
// Service is safe to share. The work is done by the Session it returns.
type Service struct {
	// Detector names the language of the sample. When nil, the language is
	// left to the Translator.
	Detector Detector

	// Translator does the translating. When nil, NopTranslator is used.
	Translator Translator

	// Target is the language to translate into. Empty means DefaultTarget.
	Target string

	// SampleSize is the number of runes of body text to sample. Zero means
	// DefaultSampleSize.
	SampleSize int

	// Timeout limits each call to the Translator. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Session returns a new Session with an empty cache.
func (s *Service) Session() *Session {
	return &Session{
		svc:   s,
		cache: map[string]string{},
	}
}

func (s *Service) target() string {
	if s.Target == "" {
		return DefaultTarget
	}
	return s.Target
}

func (s *Service) sampleSize() int {
	if s.SampleSize <= 0 {
		return DefaultSampleSize
	}
	return s.SampleSize
}

func (s *Service) timeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultTimeout
	}
	return s.Timeout
}

func (s *Service) translator() Translator {
	if s.Translator == nil {
		return NopTranslator{}
	}
	return s.Translator
}

// Preview is a translated sample of a message body.
type Preview struct {
	// Sample is the body text that was sampled.
	Sample string `json:"sample"`

	// Text is the translation of Sample or Sample itself when no translation
	// was made.
	Text string `json:"text"`

	// Language is the detected language of the sample. It is empty when the
	// language is unknown.
	Language string `json:"language"`

	// Target is the language translated into.
	Target string `json:"target"`

	// Translated is true when Text holds a translation.
	Translated bool `json:"translated"`

	// Warning describes why a translation failed.
	Warning string `json:"warning,omitempty"`
}

// Session makes previews for one request. It caches translations by a hash of
// the text and the languages, so repeated previews of unchanged text do not
// call the Translator again. A Session is not safe for concurrent use.
type Session struct {
	svc   *Service
	cache map[string]string
}

// Invalidate empties the cache.
func (s *Session) Invalidate() {
	s.cache = map[string]string{}
}

// Preview samples the body, detects its language, and translates the sample
// when it is not in the target language. The sample is taken from the text of
// the HTML body if there is one and from the plain body otherwise. A sample in
// an unknown language is not translated. When translation fails, the
// untranslated sample is returned with a warning.
func (s *Session) Preview(ctx context.Context, body *edit.Body) *Preview {
	target := s.svc.target()
	sample := Sample(body, s.svc.sampleSize())

	p := &Preview{
		Sample: sample,
		Text:   sample,
		Target: target,
	}

	if strings.TrimSpace(sample) == "" {
		return p
	}

	source := AutoDetect
	if s.svc.Detector != nil {
		lang, err := s.svc.Detector.Detect(sample)
		if err != nil {
			return p
		}

		p.Language = lang
		source = lang
	}

	if strings.EqualFold(p.Language, target) {
		return p
	}

	text, err := s.translate(ctx, sample, source, target)
	if err != nil {
		var terr *TranslationError
		if !errors.As(err, &terr) {
			err = &TranslationError{Source: source, Target: target, Err: err}
		}
		p.Warning = err.Error()
		return p
	}

	p.Text = text
	p.Translated = true
	return p
}

// translate returns the cached translation or calls the Translator.
func (s *Session) translate(ctx context.Context, text, source, target string) (string, error) {
	key := cacheKey(text, source, target)
	if cached, ok := s.cache[key]; ok {
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.svc.timeout())
	defer cancel()

	translated, err := s.svc.translator().Translate(ctx, text, source, target)
	if err != nil {
		return "", err
	}

	s.cache[key] = translated
	return translated, nil
}

// cacheKey hashes the text and languages.
func cacheKey(text, source, target string) string {
	h := sha256.New()
	for _, s := range []string{text, source, target} {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Sample returns up to size runes of the body text. HTML is converted to text
// with edit.TextFromHTML.
func Sample(body *edit.Body, size int) string {
	var text string
	switch {
	case body == nil:
		return ""
	case body.HasHTML():
		text = edit.TextFromHTML(body.HTML)
	default:
		text = body.Plain
	}

	if size <= 0 {
		return text
	}

	n := 0
	for i := range text {
		if n == size {
			return text[:i]
		}
		n++
	}
	return text
}
