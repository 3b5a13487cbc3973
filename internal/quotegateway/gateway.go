// Package quotegateway fetches best-effort previous close prices for holdings.
package quotegateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	quotePath   = "/v7/finance/quote"
	maxAttempts = 3
	userAgent   = "Mozilla/5.0"
)

// Cache stores quotes per raw symbol.
type Cache interface {
	Get(ctx context.Context, symbols []string) map[string]domain.Quote
	Set(ctx context.Context, quotes []domain.Quote)
}

// Config tunes the gateway.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
}

// Gateway facilitates the upstream quote feed.
type Gateway struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
	cache   Cache
	now     func() time.Time
}

// New returns Gateway. The cache may be nil.
func New(cfg Config, cache Cache) *Gateway {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	return &Gateway{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limiter: rate.NewLimiter(limit, 1),
		cache:   cache,
		now:     time.Now,
	}
}

// Quotes returns one quote per raw symbol, in order.
//
// It never fails: symbols the upstream did not price, or all of them when the
// upstream is unavailable, come back with nil prices.
func (g *Gateway) Quotes(ctx context.Context, symbols []string) []domain.Quote {
	l := zerolog.Ctx(ctx)

	out := make([]domain.Quote, len(symbols))
	if len(symbols) == 0 {
		return out
	}

	cached := map[string]domain.Quote{}
	if g.cache != nil {
		cached = g.cache.Get(ctx, symbols)
	}

	var missing []string
	for _, s := range symbols {
		if _, ok := cached[s]; !ok {
			missing = append(missing, s)
		}
	}

	fetched := map[string]domain.Quote{}

	if len(missing) > 0 {
		body, err := g.fetch(ctx, missing)
		if err != nil {
			l.Warn().Err(err).Strs("symbols", missing).Msg("quote upstream unavailable")
		} else {
			fetched = g.parse(body, missing)

			if g.cache != nil {
				var priced []domain.Quote
				for _, q := range fetched {
					if q.PrevClose != nil {
						priced = append(priced, q)
					}
				}
				g.cache.Set(ctx, priced)
			}
		}
	}

	nowMillis := g.now().UnixMilli()

	for i, s := range symbols {
		if q, ok := cached[s]; ok {
			out[i] = q
			continue
		}

		if q, ok := fetched[s]; ok {
			out[i] = q
			continue
		}

		out[i] = domain.Quote{Symbol: s, ObservedAtMillis: nowMillis}
	}

	return out
}

func (g *Gateway) fetch(ctx context.Context, symbols []string) ([]byte, error) {
	mapped := make([]string, len(symbols))
	for i, s := range symbols {
		mapped[i] = MapSymbol(s)
	}

	u := g.baseURL + quotePath + "?symbols=" + url.QueryEscape(strings.Join(mapped, ","))

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, retry, err := g.do(ctx, u)
		if err == nil {
			return body, nil
		}

		lastErr = err
		if !retry {
			break
		}

		zerolog.Ctx(ctx).Debug().Err(err).Int("attempt", attempt).Msg("quote request failed")
	}

	return nil, lastErr
}

func (g *Gateway) do(ctx context.Context, u string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, err
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, true, fmt.Errorf("quote upstream status %d", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("quote upstream status %d", resp.StatusCode)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	if !gjson.ValidBytes(body) {
		return nil, false, fmt.Errorf("malformed quote response")
	}

	return body, false, nil
}

// parse maps the upstream results back onto the raw symbols they were requested for.
func (g *Gateway) parse(body []byte, symbols []string) map[string]domain.Quote {
	byTicker := map[string]gjson.Result{}

	gjson.GetBytes(body, "quoteResponse.result").ForEach(func(_, item gjson.Result) bool {
		byTicker[item.Get("symbol").String()] = item
		return true
	})

	nowMillis := g.now().UnixMilli()
	out := make(map[string]domain.Quote, len(symbols))

	for _, s := range symbols {
		item, ok := byTicker[MapSymbol(s)]
		if !ok {
			continue
		}

		q := domain.Quote{
			Symbol:           s,
			Price:            number(item.Get("regularMarketPrice")),
			PrevClose:        number(item.Get("regularMarketPreviousClose")),
			ObservedAtMillis: nowMillis,
		}

		if ts := item.Get("regularMarketTime"); ts.Exists() && ts.Int() > 0 {
			q.ObservedAtMillis = ts.Int() * 1000
		}

		out[s] = q
	}

	return out
}

func number(r gjson.Result) *decimal.Decimal {
	if r.Type != gjson.Number {
		return nil
	}

	d, err := decimal.NewFromString(r.Raw)
	if err != nil {
		return nil
	}

	return &d
}
