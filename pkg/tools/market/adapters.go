// Package market provides the market-data tool family: current price
// lookup with layered fallbacks, percent change over a window, and
// best-performer selection across a symbol list.
package market

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/hikawa/kotori/pkg/tools"
)

// Adapters bundles the market tool implementations around a Quotes
// source.
type Adapters struct {
	quotes Quotes
	now    func() time.Time
	logger zerolog.Logger
}

// NewAdapters creates the market tool family.
func NewAdapters(quotes Quotes, logger zerolog.Logger) *Adapters {
	return &Adapters{
		quotes: quotes,
		now:    time.Now,
		logger: logger.With().Str("module", "market").Logger(),
	}
}

// Tools returns the registry entries for this family.
func (a *Adapters) Tools() []tools.Tool {
	return []tools.Tool{
		{
			Declaration: tools.Declaration{
				Name:        "get_stock_price",
				Description: "Get the current or most recent closing price of a stock.",
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"symbol": map[string]any{"type": "string", "description": "The stock symbol, e.g. AAPL."},
					},
					"required": []any{"symbol"},
				},
			},
			Call: func(ctx context.Context, args map[string]any) tools.Result {
				return a.Price(ctx, tools.StringArg(args, "symbol"))
			},
		},
		{
			Declaration: tools.Declaration{
				Name:        "get_price_change_percent",
				Description: "Calculate the percentage change in a stock's price over the last N days.",
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"symbol":   map[string]any{"type": "string", "description": "The stock symbol."},
						"days_ago": map[string]any{"type": "integer", "description": "Look-back window in days. Must be positive."},
					},
					"required": []any{"symbol", "days_ago"},
				},
			},
			Call: func(ctx context.Context, args map[string]any) tools.Result {
				days, _ := tools.IntArg(args, "days_ago")
				return a.ChangePercent(ctx, tools.StringArg(args, "symbol"), days)
			},
		},
		{
			Declaration: tools.Declaration{
				Name:        "get_best_performing",
				Description: "Find the best performing stock from a list over the last N days.",
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"stocks":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Stock symbols to compare."},
						"days_ago": map[string]any{"type": "integer", "description": "Look-back window in days. Must be positive."},
					},
					"required": []any{"stocks", "days_ago"},
				},
			},
			Call: func(ctx context.Context, args map[string]any) tools.Result {
				days, _ := tools.IntArg(args, "days_ago")
				return a.BestPerforming(ctx, tools.StringSliceArg(args, "stocks"), days)
			},
		},
	}
}

// Price resolves a symbol's current price through three tiers: the live
// price field, then the most recent close from a short history window,
// then the previous-close field.
func (a *Adapters) Price(ctx context.Context, symbol string) tools.Result {
	if symbol == "" {
		return tools.ValidationErrorf("symbol is required")
	}

	quote, err := a.quotes.Quote(ctx, symbol)
	if err != nil && !errors.Is(err, ErrNoData) {
		a.logger.Warn().Err(err).Str("symbol", symbol).Msg("quote lookup failed")
		return tools.Errorf("could not retrieve price for %s: %v", symbol, err)
	}
	if quote != nil && quote.Price > 0 {
		return priceResult(symbol, quote.Price)
	}

	// Two days back so the latest close is present even across a
	// weekend boundary.
	end := a.now()
	closes, err := a.quotes.History(ctx, symbol, end.AddDate(0, 0, -2), end)
	if err == nil && len(closes) > 0 {
		return priceResult(symbol, closes[len(closes)-1].Price)
	}

	if quote != nil && quote.PreviousClose > 0 {
		return priceResult(symbol, quote.PreviousClose)
	}

	return tools.NotFoundErrorf("could not retrieve current price for %s; data might be unavailable", symbol)
}

func priceResult(symbol string, price float64) tools.Result {
	return tools.OK(map[string]any{
		"symbol": symbol,
		"price":  round2(price),
	})
}

// ChangePercent computes the percent change of a symbol over the last
// days. The window must contain at least two distinct daily closes.
func (a *Adapters) ChangePercent(ctx context.Context, symbol string, days int) tools.Result {
	if days <= 0 {
		return tools.ValidationErrorf("days ago must be a positive integer")
	}

	change, err := a.performance(ctx, symbol, days)
	if err != nil {
		return tools.NotFoundErrorf("could not calculate price change for %s over %d days: ensure the symbol is valid and data is available for the period", symbol, days)
	}

	return tools.OK(map[string]any{
		"symbol":               symbol,
		"price_change_percent": change,
		"period_days":          days,
	})
}

// BestPerforming picks the symbol with the highest percent change over
// the window. Ties keep the first-seen symbol. Symbols whose lookup
// fails are skipped; if every lookup fails the result is a lookup error
// naming the full input list.
func (a *Adapters) BestPerforming(ctx context.Context, symbols []string, days int) tools.Result {
	if len(symbols) == 0 {
		return tools.ValidationErrorf("stock list cannot be empty")
	}
	if days <= 0 {
		return tools.ValidationErrorf("days ago must be a positive integer")
	}

	best := ""
	bestChange := math.Inf(-1)
	for _, symbol := range symbols {
		change, err := a.performance(ctx, symbol, days)
		if err != nil {
			a.logger.Debug().Err(err).Str("symbol", symbol).Int("days", days).Msg("skipping symbol in best-performing scan")
			continue
		}
		if change > bestChange {
			bestChange = change
			best = symbol
		}
	}

	if best == "" {
		return tools.NotFoundErrorf("could not determine the best performing stock from the list %v over %d days", symbols, days)
	}

	return tools.OK(map[string]any{
		"best_stock":          best,
		"performance_percent": bestChange,
		"period_days":         days,
	})
}

// performance returns the rounded percent change across the window, or
// an error when fewer than two closes are available. A zero baseline
// yields 0.0 rather than a division error.
func (a *Adapters) performance(ctx context.Context, symbol string, days int) (float64, error) {
	end := a.now()
	closes, err := a.quotes.History(ctx, symbol, end.AddDate(0, 0, -days), end)
	if err != nil {
		return 0, fmt.Errorf("history for %s: %w", symbol, err)
	}
	if len(closes) < 2 {
		return 0, fmt.Errorf("not enough distinct data points for %s over %d days", symbol, days)
	}

	oldPrice := closes[0].Price
	newPrice := closes[len(closes)-1].Price
	if oldPrice == 0 {
		return 0.0, nil
	}
	return round2((newPrice - oldPrice) / oldPrice * 100), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
