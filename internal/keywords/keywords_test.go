package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "basic text",
			text: "Machine Learning with Python",
			want: []string{"machine", "learning", "python"},
		},
		{
			name: "stopwords removed",
			text: "the quick and the slow",
			want: []string{"quick", "slow"},
		},
		{
			name: "web noise removed",
			text: "https://www.example.com/index.html?utm=tracking",
			want: []string{"example", "tracking"},
		},
		{
			name: "short and numeric tokens dropped",
			text: "go 42 7 ai kubernetes",
			want: []string{"go", "ai", "kubernetes"},
		},
		{
			name: "email dropped whole",
			text: "contact alice@example.com about invoices",
			want: []string{"contact", "invoices"},
		},
		{
			name: "random identifiers dropped",
			text: "session a1b2c3d4e5 token xkcdqzwrtp report",
			want: []string{"session", "token", "report"},
		},
		{
			name: "empty input",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestTokenizeShortTokensKept(t *testing.T) {
	// Two-character tokens survive; one-character tokens do not.
	got := Tokenize("r go c")
	assert.Equal(t, []string{"go"}, got)
}

func TestStripParticles(t *testing.T) {
	tests := []struct {
		tok  string
		want string
	}{
		{"회사에서", "회사"},
		{"개발자는", "개발자"},
		{"데이터를", "데이터"},
		{"서울", "서울"},   // no particle suffix
		{"가게", "가게"},   // stem would be too short to strip
		{"python", "python"}, // non-Hangul untouched
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripParticles(tt.tok), "token %q", tt.tok)
	}
}

func TestScoreEmptyInput(t *testing.T) {
	stats := Score(nil)
	assert.Empty(t, stats.Scores)
	assert.Empty(t, stats.DocFrequency)
}

func TestScoreStopwordOnlyDocuments(t *testing.T) {
	stats := Score([]string{"the and of", "is was were"})
	assert.Empty(t, stats.Scores)
	assert.Empty(t, stats.DocFrequency)
}

func TestScoreDocumentFrequency(t *testing.T) {
	docs := []string{
		"kubernetes deployment guide",
		"kubernetes networking deep dive",
		"kubernetes storage overview",
	}
	stats := Score(docs)

	assert.Equal(t, 3, stats.DocFrequency["kubernetes"])
	assert.Equal(t, 1, stats.DocFrequency["networking"])
	assert.Positive(t, stats.Scores["kubernetes"])
}

func TestScoreIDFWeighting(t *testing.T) {
	docs := []string{
		"golang concurrency patterns",
		"golang error handling",
		"golang modules tutorial",
		"quantum computing basics golang",
	}
	stats := Score(docs)

	// Per-occurrence, a rare term carries a higher IDF weight.
	require.Contains(t, stats.Scores, "quantum")
	require.Contains(t, stats.Scores, "golang")
	assert.Equal(t, 1, stats.DocFrequency["quantum"])
	assert.Equal(t, 4, stats.DocFrequency["golang"])
}

func TestScoreFrequencyFallback(t *testing.T) {
	docs := []string{"alpha beta alpha", "beta gamma"}
	stats := ScoreFrequency(docs)

	assert.True(t, stats.Degraded)
	assert.Equal(t, float64(2), stats.Scores["alpha"])
	// Degraded mode pins document frequency to the document count.
	for term := range stats.Scores {
		assert.Equal(t, len(docs), stats.DocFrequency[term], "term %q", term)
	}
}

func TestSelectEmptyProfileFallsBackToRawScores(t *testing.T) {
	docs := []string{
		"rust memory safety rust ownership rust",
		"garden watering schedule",
		"tax filing deadline",
		"grocery list apples",
	}
	got := Select(docs, nil, 2)
	require.Len(t, got, 2)
	assert.Contains(t, got, "rust")
}

func TestSelectInterestWeightingDominates(t *testing.T) {
	docs := []string{
		"python machine learning tutorial",
		"python machine learning tutorial",
	}
	got := Select(docs, []string{"machine learning"}, 1)

	require.Len(t, got, 1)
	assert.Contains(t, []string{"machine", "learning"}, got[0])
}

func TestSelectDeterministic(t *testing.T) {
	docs := []string{
		"distributed systems consensus raft",
		"raft leader election walkthrough",
		"paxos versus raft comparison",
		"weekend hiking trail notes",
	}
	profile := []string{"distributed systems", "consensus algorithms"}

	first := Select(docs, profile, 3)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Select(docs, profile, 3))
	}
}

func TestSelectDropsGenericTerms(t *testing.T) {
	// "meeting" appears in every document; specific terms in one each.
	docs := []string{
		"meeting notes compiler design",
		"meeting agenda database sharding",
		"meeting summary network protocols",
		"meeting minutes api versioning",
		"meeting recap cache invalidation",
	}
	got := Select(docs, nil, 20)
	require.NotEmpty(t, got)
	assert.NotContains(t, got, "meeting")
}

func TestSelectSingleDocumentUsesFrequencyRanking(t *testing.T) {
	// One document has no document-frequency signal: selection runs on raw
	// counts and the ubiquitous-term filter does not apply.
	docs := []string{"compiler compiler compiler parser lexer"}

	got := Select(docs, nil, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "compiler", got[0])
	assert.ElementsMatch(t, []string{"compiler", "parser", "lexer"}, got)
}

func TestSelectTopNBounds(t *testing.T) {
	docs := []string{"alpha beta gamma"}

	assert.Nil(t, Select(docs, nil, 0))
	assert.Len(t, Select(docs, nil, 100), 3)
	assert.Nil(t, Select(nil, nil, 5))
}

func TestSelectWithConfigThreshold(t *testing.T) {
	cfg := DefaultSelectorConfig()
	cfg.MinFitScore = 100 // impossible bar drops every candidate
	got := SelectWithConfig(
		[]string{"observability tracing metrics", "gardening tips"},
		[]string{"observability"},
		5,
		cfg,
	)
	assert.Empty(t, got)
}
