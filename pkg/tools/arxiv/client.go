package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultEndpoint = "http://export.arxiv.org/api/query"

// Paper is one arXiv record as returned by the query API.
type Paper struct {
	ID              string
	Title           string
	Authors         []string
	Published       time.Time
	Summary         string
	PrimaryCategory string
	PDFURL          string
}

// Client fetches papers from an arXiv-compatible source. The HTTP
// implementation talks to the public Atom API; tests substitute fakes.
type Client interface {
	Search(ctx context.Context, query string, maxResults int) ([]Paper, error)
	Lookup(ctx context.Context, id string) (*Paper, error)
}

// HTTPClient implements Client against the arXiv Atom query API.
type HTTPClient struct {
	endpoint string
	client   *http.Client
}

// NewHTTPClient creates a client for the public arXiv API. An empty
// endpoint selects the default export.arxiv.org URL.
func NewHTTPClient(endpoint string, client *http.Client) *HTTPClient {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPClient{endpoint: endpoint, client: client}
}

// Search queries arXiv by free text, relevance ordered.
func (c *HTTPClient) Search(ctx context.Context, query string, maxResults int) ([]Paper, error) {
	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("max_results", fmt.Sprintf("%d", maxResults))
	params.Set("sortBy", "relevance")
	return c.query(ctx, params)
}

// Lookup fetches a single paper by its arXiv identifier.
func (c *HTTPClient) Lookup(ctx context.Context, id string) (*Paper, error) {
	params := url.Values{}
	params.Set("id_list", id)
	params.Set("max_results", "1")
	papers, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(papers) == 0 {
		return nil, nil
	}
	return &papers[0], nil
}

func (c *HTTPClient) query(ctx context.Context, params url.Values) ([]Paper, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build arxiv request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query arxiv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned status %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode arxiv feed: %w", err)
	}

	papers := make([]Paper, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		papers = append(papers, e.toPaper())
	}
	return papers, nil
}

// Atom feed shapes for the arXiv query API.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
	PrimaryCategory struct {
		Term string `xml:"term,attr"`
	} `xml:"primary_category"`
	Links []struct {
		Href  string `xml:"href,attr"`
		Title string `xml:"title,attr"`
	} `xml:"link"`
}

func (e atomEntry) toPaper() Paper {
	p := Paper{
		Title:           strings.TrimSpace(e.Title),
		Summary:         strings.TrimSpace(e.Summary),
		PrimaryCategory: e.PrimaryCategory.Term,
	}

	// Entry IDs look like http://arxiv.org/abs/2303.10130v1.
	if idx := strings.LastIndex(e.ID, "/abs/"); idx >= 0 {
		p.ID = e.ID[idx+len("/abs/"):]
	} else {
		p.ID = e.ID
	}

	for _, a := range e.Authors {
		p.Authors = append(p.Authors, a.Name)
	}
	for _, l := range e.Links {
		if l.Title == "pdf" {
			p.PDFURL = l.Href
		}
	}
	if t, err := time.Parse(time.RFC3339, e.Published); err == nil {
		p.Published = t
	}
	return p
}
