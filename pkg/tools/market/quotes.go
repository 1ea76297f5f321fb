package market

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Quote is the current view of a symbol. Price is zero when the source
// has no live figure; PreviousClose is the last close settled before
// the quote's date, or zero when unknown.
type Quote struct {
	Symbol        string
	Price         float64
	PreviousClose float64
}

// Close is one settled daily close.
type Close struct {
	Date  time.Time
	Price float64
}

// Quotes is the market data source. The HTTP implementation talks to
// stooq's CSV endpoints; tests substitute fakes.
type Quotes interface {
	Quote(ctx context.Context, symbol string) (*Quote, error)
	History(ctx context.Context, symbol string, from, to time.Time) ([]Close, error)
}

// ErrNoData signals the source had nothing for the symbol/range.
var ErrNoData = fmt.Errorf("no market data")

// StooqClient implements Quotes against stooq.com CSV endpoints.
type StooqClient struct {
	baseURL string
	client  *http.Client
}

// NewStooqClient creates a stooq-backed quote source. An empty baseURL
// selects the public site.
func NewStooqClient(baseURL string, client *http.Client) *StooqClient {
	if baseURL == "" {
		baseURL = "https://stooq.com"
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &StooqClient{baseURL: baseURL, client: client}
}

// Quote fetches the latest snapshot row for a symbol. The snapshot
// carries no previous-close column, so it is backfilled from the daily
// history as the latest close dated before the snapshot day.
func (c *StooqClient) Quote(ctx context.Context, symbol string) (*Quote, error) {
	params := url.Values{}
	params.Set("s", strings.ToLower(symbol))
	params.Set("f", "sd2t2ohlcv")
	params.Set("e", "csv")

	rows, err := c.fetchCSV(ctx, "/q/l/", params)
	if err != nil {
		return nil, err
	}
	// Snapshot format: Symbol,Date,Time,Open,High,Low,Close,Volume.
	if len(rows) == 0 || len(rows[0]) < 7 {
		return nil, ErrNoData
	}
	row := rows[0]
	last, err := strconv.ParseFloat(row[6], 64)
	if err != nil {
		// stooq reports unknown symbols with "N/D" fields.
		return nil, ErrNoData
	}
	q := &Quote{Symbol: symbol, Price: last}
	if day, err := time.Parse("2006-01-02", row[1]); err == nil {
		q.PreviousClose = c.previousClose(ctx, symbol, day)
	}
	return q, nil
}

// previousClose returns the latest daily close strictly before day, or
// zero when the history is unavailable.
func (c *StooqClient) previousClose(ctx context.Context, symbol string, day time.Time) float64 {
	closes, err := c.History(ctx, symbol, day.AddDate(0, 0, -10), day)
	if err != nil {
		return 0
	}
	prev := 0.0
	for _, cl := range closes {
		if cl.Date.Before(day) {
			prev = cl.Price
		}
	}
	return prev
}

// History fetches daily closes for a symbol between from and to.
func (c *StooqClient) History(ctx context.Context, symbol string, from, to time.Time) ([]Close, error) {
	params := url.Values{}
	params.Set("s", strings.ToLower(symbol))
	params.Set("d1", from.Format("20060102"))
	params.Set("d2", to.Format("20060102"))
	params.Set("i", "d")

	rows, err := c.fetchCSV(ctx, "/q/d/l/", params)
	if err != nil {
		return nil, err
	}

	closes := make([]Close, 0, len(rows))
	for _, row := range rows {
		// Daily format: Date,Open,High,Low,Close,Volume.
		if len(row) < 5 {
			continue
		}
		date, err := time.Parse("2006-01-02", row[0])
		if err != nil {
			continue
		}
		price, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			continue
		}
		closes = append(closes, Close{Date: date, Price: price})
	}
	if len(closes) == 0 {
		return nil, ErrNoData
	}
	return closes, nil
}

func (c *StooqClient) fetchCSV(ctx context.Context, path string, params url.Values) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build quote request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch quotes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote source returned status %d", resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1

	var rows [][]string
	header := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse quote csv: %w", err)
		}
		if header {
			header = false
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
