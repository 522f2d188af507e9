package nlp

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"resumescan/internal/errors"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain words", "Led the team", []string{"Led", "the", "team"}},
		{"trailing punctuation", "Python, Java.", []string{"Python", ",", "Java", "."}},
		{"slash separated", "AWS/Azure/GCP", []string{"AWS", "/", "Azure", "/", "GCP"}},
		{"internal dot", "vb.net and ph.d", []string{"vb.net", "and", "ph.d"}},
		{"hyphen splits", "go-getter", []string{"go", "-", "getter"}},
		{"apostrophe", "don't", []string{"don't"}},
		{"parentheses", "(SEO)", []string{"(", "SEO", ")"}},
		{"empty", "  \n\t ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestAnalyzeFlags(t *testing.T) {
	p := NewStaticPipeline(map[string]string{"engineers": "engineer", "managed": "manage"})

	tokens, err := p.Analyze("The engineers managed 3 APIs!")
	require.NoError(t, err)
	require.Len(t, tokens, 6)

	assert.True(t, tokens[0].IsStop)
	assert.Equal(t, "engineer", tokens[1].Lemma)
	assert.Equal(t, "manage", tokens[2].Lemma)
	assert.False(t, tokens[3].IsAlpha)
	assert.Equal(t, "apis", tokens[4].Lemma)
	assert.True(t, tokens[5].IsPunct)
}

func TestContentLemmas(t *testing.T) {
	p := NewStaticPipeline(nil)
	tokens, err := p.Analyze("We build APIs in Python, and we build them fast. 2024")
	require.NoError(t, err)

	set := ContentLemmas(tokens)
	assert.Contains(t, set, "build")
	assert.Contains(t, set, "apis")
	assert.Contains(t, set, "python")
	assert.Contains(t, set, "fast")
	assert.NotContains(t, set, "we")
	assert.NotContains(t, set, "2024")
	assert.NotContains(t, set, ",")
}

func TestLemmaTermsIncludesBigrams(t *testing.T) {
	p := NewStaticPipeline(nil)
	tokens, err := p.Analyze("Visual Basic, jQuery and SVN")
	require.NoError(t, err)

	set := LemmaTerms(tokens)
	assert.Contains(t, set, "visual basic")
	assert.Contains(t, set, "jquery")
	assert.Contains(t, set, "svn")
	// punctuation breaks bigrams
	assert.NotContains(t, set, "basic jquery")
}

func TestNotLoaded(t *testing.T) {
	p := NewPipeline()
	assert.False(t, p.Loaded())
	_, err := p.Analyze("text")
	assert.True(t, errors.Is(err, ErrNotLoaded))

	_, err = Unavailable{}.Analyze("text")
	assert.True(t, errors.Is(err, ErrNotLoaded))
	assert.False(t, Unavailable{}.Loaded())
}

func TestPipelineLoadLemmatizes(t *testing.T) {
	p := NewPipeline()
	require.NoError(t, p.Load())
	t.Cleanup(p.Close)
	require.True(t, p.Loaded())

	tokens, err := p.Analyze("engineers")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "engineer", tokens[0].Lemma)

	p.Close()
	assert.False(t, p.Loaded())
}

func TestAnalyzeConcurrent(t *testing.T) {
	p := NewStaticPipeline(nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens, err := p.Analyze("distributed systems engineer")
			assert.NoError(t, err)
			assert.Len(t, tokens, 3)
		}()
	}
	wg.Wait()
}
