package arxiv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hikawa/kotori/pkg/tools"
)

type fakeClient struct {
	papers  []Paper
	byID    map[string]*Paper
	err     error
	queries []string
	lookups []string
}

func (f *fakeClient) Search(ctx context.Context, query string, maxResults int) ([]Paper, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if maxResults < len(f.papers) {
		return f.papers[:maxResults], nil
	}
	return f.papers, nil
}

func (f *fakeClient) Lookup(ctx context.Context, id string) (*Paper, error) {
	f.lookups = append(f.lookups, id)
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[id], nil
}

func samplePaper() Paper {
	return Paper{
		ID:              "2303.10130",
		Title:           "GPTs are GPTs",
		Authors:         []string{"Tyna Eloundou", "Sam Manning"},
		Published:       time.Date(2023, 3, 17, 0, 0, 0, 0, time.UTC),
		Summary:         "We investigate the potential implications of large language models on the labor market.",
		PrimaryCategory: "econ.GN",
		PDFURL:          "http://arxiv.org/pdf/2303.10130v1",
	}
}

func newTestAdapters(c Client) *Adapters {
	return NewAdapters(c, zerolog.Nop())
}

func TestExtractID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"modern ID", "2303.10130", "2303.10130"},
		{"modern ID with version", "2303.10130v2", "2303.10130v2"},
		{"four-digit number", "1706.0376", "1706.0376"},
		{"abs URL", "https://arxiv.org/abs/2303.10130", "2303.10130"},
		{"pdf URL", "https://arxiv.org/pdf/2303.10130v1", "2303.10130v1"},
		{"legacy ID", "hep-th/0101001", "hep-th/0101001"},
		{"legacy ID with version", "hep-th/0101001v2", "hep-th/0101001v2"},
		{"legacy URL", "https://arxiv.org/abs/hep-th/0101001", "hep-th/0101001"},
		{"embedded in text", "see arXiv:2406.02900 for details", "2406.02900"},
		{"no ID", "not a paper reference", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractID(tt.input))
		})
	}
}

func TestAdapters_SearchPapers(t *testing.T) {
	client := &fakeClient{papers: []Paper{samplePaper()}}
	a := newTestAdapters(client)

	res := a.SearchPapers(context.Background(), "language models labor market")
	require.False(t, res.IsError())

	papers, ok := res.Data["papers"].([]any)
	require.True(t, ok)
	require.Len(t, papers, 1)

	payload := papers[0].(map[string]any)
	assert.Equal(t, "GPTs are GPTs", payload["title"])
	assert.Equal(t, "2303.10130", payload["arxiv_id"])
	assert.Equal(t, "2023-03-17", payload["published_date"])
}

func TestAdapters_SearchPapers_NoResults(t *testing.T) {
	a := newTestAdapters(&fakeClient{})

	res := a.SearchPapers(context.Background(), "nonexistent topic")
	require.False(t, res.IsError())
	assert.Equal(t, "No papers found matching your query.", res.Message)
}

func TestAdapters_SearchPapers_ClientError(t *testing.T) {
	a := newTestAdapters(&fakeClient{err: errors.New("api down")})

	res := a.SearchPapers(context.Background(), "anything")
	assert.True(t, res.IsError())
}

func TestAdapters_Summarize(t *testing.T) {
	p := samplePaper()
	client := &fakeClient{byID: map[string]*Paper{"2303.10130": &p}}
	a := newTestAdapters(client)

	res := a.Summarize(context.Background(), "https://arxiv.org/abs/2303.10130")
	require.False(t, res.IsError())

	payload, ok := res.Data["paper"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, p.Summary, payload["summary"])
	assert.Equal(t, []string{"2303.10130"}, client.lookups)
}

func TestAdapters_Summarize_InvalidID(t *testing.T) {
	client := &fakeClient{}
	a := newTestAdapters(client)

	res := a.Summarize(context.Background(), "not an id")
	require.True(t, res.IsError())
	assert.Equal(t, tools.ErrorKindValidation, res.Kind)
	assert.Empty(t, client.lookups)
}

func TestAdapters_Summarize_NotFound(t *testing.T) {
	a := newTestAdapters(&fakeClient{byID: map[string]*Paper{}})

	res := a.Summarize(context.Background(), "2303.10130")
	require.True(t, res.IsError())
	assert.Equal(t, tools.ErrorKindNotFound, res.Kind)
	assert.Equal(t, "paper not found or invalid ID", res.Message)
}

func TestAdapters_AnswerQuestion(t *testing.T) {
	p := samplePaper()
	client := &fakeClient{byID: map[string]*Paper{"2303.10130": &p}}
	a := newTestAdapters(client)

	tests := []struct {
		name     string
		question string
		wantType string
	}{
		{
			"keywords found in abstract",
			"what are the implications for the labor market?",
			"found_in_abstract",
		},
		{
			"keywords not in abstract",
			"does it discuss quantum cryptography benchmarks?",
			"not_found_in_abstract",
		},
		{
			"only stop words",
			"what is it about?",
			"not_enough_keywords",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := a.AnswerQuestion(context.Background(), "2303.10130", tt.question)
			require.False(t, res.IsError())
			assert.Equal(t, tt.wantType, res.Data["answer_type"])
			assert.NotEmpty(t, res.Message)
		})
	}
}

func TestAdapters_AnswerQuestion_NotFound(t *testing.T) {
	a := newTestAdapters(&fakeClient{byID: map[string]*Paper{}})

	res := a.AnswerQuestion(context.Background(), "2303.10130", "what about the labor market?")
	require.True(t, res.IsError())
	assert.Equal(t, tools.ErrorKindNotFound, res.Kind)
	assert.Contains(t, res.Message, "2303.10130")
}

func TestSignificantKeywords(t *testing.T) {
	assert.Empty(t, significantKeywords("what is it about?"))
	assert.Equal(t, []string{"labor", "market"}, significantKeywords("What about the labor market?"))
	assert.Empty(t, significantKeywords(""))
}

func TestAdapters_Tools_Declarations(t *testing.T) {
	a := newTestAdapters(&fakeClient{})
	ts := a.Tools()

	require.Len(t, ts, 3)
	names := []string{ts[0].Name, ts[1].Name, ts[2].Name}
	assert.Equal(t, []string{"search_arxiv_papers", "summarize_arxiv_paper", "answer_paper_question"}, names)
	for _, tool := range ts {
		assert.NotNil(t, tool.InputSchema)
		assert.NotNil(t, tool.Call)
	}
}
