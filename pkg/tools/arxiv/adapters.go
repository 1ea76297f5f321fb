// Package arxiv provides the document-lookup tool family: free-text
// search, fetch-by-identifier summaries, and abstract-based question
// answering over the arXiv repository.
package arxiv

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hikawa/kotori/pkg/tools"
)

const maxSearchResults = 5

// idPattern accepts both modern identifiers (2303.10130, optionally with
// a version suffix) and legacy category/number identifiers
// (hep-th/0101001), bare or embedded in URLs.
var idPattern = regexp.MustCompile(`(\d{4}\.\d{4,5}(v\d+)?|[a-zA-Z.-]+/\d{7}(v\d+)?)`)

// ExtractID pulls an arXiv identifier out of a bare ID or URL. It
// returns "" when no identifier is present.
func ExtractID(idOrURL string) string {
	return idPattern.FindString(idOrURL)
}

// Adapters bundles the arXiv tool implementations around a Client.
type Adapters struct {
	client Client
	logger zerolog.Logger
}

// NewAdapters creates the arXiv tool family.
func NewAdapters(client Client, logger zerolog.Logger) *Adapters {
	return &Adapters{
		client: client,
		logger: logger.With().Str("module", "arxiv").Logger(),
	}
}

// Tools returns the registry entries for this family.
func (a *Adapters) Tools() []tools.Tool {
	return []tools.Tool{
		{
			Declaration: tools.Declaration{
				Name:        "search_arxiv_papers",
				Description: "Search arXiv for papers matching a free-text query. Returns up to 5 results ordered by relevance.",
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{"type": "string", "description": "The search query."},
					},
					"required": []any{"query"},
				},
			},
			Call: func(ctx context.Context, args map[string]any) tools.Result {
				return a.SearchPapers(ctx, tools.StringArg(args, "query"))
			},
		},
		{
			Declaration: tools.Declaration{
				Name:        "summarize_arxiv_paper",
				Description: "Fetch a specific arXiv paper by ID or URL and return its details; the summary is the paper's abstract.",
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"arxiv_id_or_url": map[string]any{"type": "string", "description": "An arXiv ID like 2303.10130 or a full arxiv.org URL."},
					},
					"required": []any{"arxiv_id_or_url"},
				},
			},
			Call: func(ctx context.Context, args map[string]any) tools.Result {
				return a.Summarize(ctx, tools.StringArg(args, "arxiv_id_or_url"))
			},
		},
		{
			Declaration: tools.Declaration{
				Name:        "answer_paper_question",
				Description: "Check whether a paper's abstract plausibly answers a question, by keyword overlap.",
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"arxiv_id_or_url": map[string]any{"type": "string", "description": "An arXiv ID or URL."},
						"question":        map[string]any{"type": "string", "description": "The question to answer."},
					},
					"required": []any{"arxiv_id_or_url", "question"},
				},
			},
			Call: func(ctx context.Context, args map[string]any) tools.Result {
				return a.AnswerQuestion(ctx, tools.StringArg(args, "arxiv_id_or_url"), tools.StringArg(args, "question"))
			},
		},
	}
}

// SearchPapers searches arXiv by free text, relevance ordered, bounded
// to maxSearchResults entries.
func (a *Adapters) SearchPapers(ctx context.Context, query string) tools.Result {
	papers, err := a.client.Search(ctx, query, maxSearchResults)
	if err != nil {
		a.logger.Warn().Err(err).Str("query", query).Msg("arxiv search failed")
		return tools.Errorf("%v", err)
	}

	list := make([]any, 0, len(papers))
	for _, p := range papers {
		list = append(list, paperPayload(p))
	}

	if len(list) == 0 {
		return tools.Result{
			Status:  tools.StatusSuccess,
			Message: "No papers found matching your query.",
			Data:    map[string]any{"papers": list},
		}
	}
	return tools.OK(map[string]any{"papers": list})
}

// Summarize fetches one paper by ID or URL; the returned summary field
// is the paper's abstract.
func (a *Adapters) Summarize(ctx context.Context, idOrURL string) tools.Result {
	id := ExtractID(idOrURL)
	if id == "" {
		return tools.ValidationErrorf("invalid arXiv ID or URL format")
	}

	paper, err := a.client.Lookup(ctx, id)
	if err != nil {
		a.logger.Warn().Err(err).Str("id", id).Msg("arxiv lookup failed")
		return tools.Errorf("%v", err)
	}
	if paper == nil {
		return tools.NotFoundErrorf("paper not found or invalid ID")
	}
	return tools.OK(map[string]any{"paper": paperPayload(*paper)})
}

// AnswerQuestion checks whether a paper's abstract plausibly covers a
// question via stop-word-filtered keyword overlap: a match is declared
// when more than half of the significant question keywords appear in the
// abstract.
func (a *Adapters) AnswerQuestion(ctx context.Context, idOrURL, question string) tools.Result {
	id := ExtractID(idOrURL)
	if id == "" {
		return tools.ValidationErrorf("invalid arXiv ID or URL format")
	}

	paper, err := a.client.Lookup(ctx, id)
	if err != nil {
		a.logger.Warn().Err(err).Str("id", id).Msg("arxiv lookup failed")
		return tools.Errorf("%v", err)
	}
	if paper == nil {
		return tools.NotFoundErrorf("paper with ID %q not found", id)
	}

	keywords := significantKeywords(question)
	base := map[string]any{
		"title":    paper.Title,
		"abstract": paper.Summary,
	}

	if len(keywords) == 0 {
		base["answer_type"] = "not_enough_keywords"
		return tools.Result{
			Status:  tools.StatusSuccess,
			Message: "Your question did not contain enough significant keywords after removing common words. Please try a more specific question.",
			Data:    base,
		}
	}

	abstract := strings.ToLower(paper.Summary)
	found := 0
	for _, w := range keywords {
		if strings.Contains(abstract, w) {
			found++
		}
	}

	if found > len(keywords)/2 {
		base["answer_type"] = "found_in_abstract"
		return tools.Result{
			Status:  tools.StatusSuccess,
			Message: "The abstract may contain information relevant to your question. Please review it.",
			Data:    base,
		}
	}
	base["answer_type"] = "not_found_in_abstract"
	return tools.Result{
		Status:  tools.StatusSuccess,
		Message: "I could not find specific information for your question in the paper's abstract.",
		Data:    base,
	}
}

func paperPayload(p Paper) map[string]any {
	return map[string]any{
		"title":            p.Title,
		"authors":          p.Authors,
		"published_date":   p.Published.Format("2006-01-02"),
		"summary":          p.Summary,
		"arxiv_id":         p.ID,
		"primary_category": p.PrimaryCategory,
		"pdf_link":         p.PDFURL,
	}
}

// significantKeywords tokenizes a question and filters out stop words.
func significantKeywords(question string) []string {
	words := nonWordPattern.Split(strings.ToLower(question), -1)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

var nonWordPattern = regexp.MustCompile(`\W+`)
