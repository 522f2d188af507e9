// Package nlp turns text into lemmatized tokens for keyword matching.
package nlp

import (
	"sync"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"resumescan/internal/errors"
)

// Token is one unit of analysed text.
type Token struct {
	Text    string
	Lemma   string
	IsStop  bool
	IsPunct bool
	IsAlpha bool
}

// Lemmatizer analyses text into tokens. Implementations are safe for
// concurrent use once loaded.
type Lemmatizer interface {
	Analyze(text string) ([]Token, error)
	Loaded() bool
}

// ErrNotLoaded is returned by Analyze before Load succeeds or after Close.
var ErrNotLoaded = errors.NewInternalError(errors.ErrCodeModelNotLoaded, "lemmatizer is not loaded", nil)

// Pipeline is the English lemmatizer backed by golem dictionaries.
type Pipeline struct {
	mu    sync.RWMutex
	lemma func(string) string
}

// NewPipeline returns an unloaded pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// NewStaticPipeline returns a loaded pipeline that maps words through
// lemmas and leaves every other word unchanged.
func NewStaticPipeline(lemmas map[string]string) *Pipeline {
	return &Pipeline{lemma: func(word string) string {
		if l, ok := lemmas[word]; ok {
			return l
		}
		return word
	}}
}

// Load reads the English dictionary. Calling Load on a loaded pipeline is a
// no-op.
func (p *Pipeline) Load() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lemma != nil {
		return nil
	}
	lemmatizer, err := golem.New(en.New())
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeModelNotLoaded, "failed to load english lemma dictionary", err)
	}
	p.lemma = lemmatizer.Lemma
	return nil
}

// Close releases the dictionary.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lemma = nil
}

// Loaded reports whether Analyze can run.
func (p *Pipeline) Loaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lemma != nil
}

// Analyze tokenizes text and attaches a lemma and flags to every token.
// Lemmas are lowercase.
func (p *Pipeline) Analyze(text string) ([]Token, error) {
	p.mu.RLock()
	lemma := p.lemma
	p.mu.RUnlock()
	if lemma == nil {
		return nil, ErrNotLoaded
	}

	words := Tokenize(text)
	tokens := make([]Token, 0, len(words))
	for _, w := range words {
		lower := toLower(w)
		tok := Token{
			Text:    w,
			IsPunct: isPunct(w),
			IsAlpha: isAlpha(w),
			IsStop:  IsStopword(lower),
		}
		if tok.IsAlpha {
			tok.Lemma = toLower(lemma(lower))
		} else {
			tok.Lemma = lower
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// Unavailable is a Lemmatizer that is never loaded. Callers degrade to
// empty results with it.
type Unavailable struct{}

func (Unavailable) Analyze(string) ([]Token, error) { return nil, ErrNotLoaded }
func (Unavailable) Loaded() bool                    { return false }

// ContentLemmas returns the unique lemmas of alphabetic tokens that are
// neither stopwords nor punctuation.
func ContentLemmas(tokens []Token) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range tokens {
		if t.IsStop || t.IsPunct || !t.IsAlpha {
			continue
		}
		set[t.Lemma] = struct{}{}
	}
	return set
}

// LemmaTerms returns the lemma of every non-punctuation token plus every
// pair of adjacent lemmas joined by a space, so two-word terms can be
// looked up in a set.
func LemmaTerms(tokens []Token) map[string]struct{} {
	set := make(map[string]struct{})
	prev := ""
	for _, t := range tokens {
		if t.IsPunct {
			prev = ""
			continue
		}
		set[t.Lemma] = struct{}{}
		if prev != "" {
			set[prev+" "+t.Lemma] = struct{}{}
		}
		prev = t.Lemma
	}
	return set
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isPunct(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}
