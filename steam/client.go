// Package steam fetches the Steam app catalog and per-app store details.
package steam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-steam-search/config"
	"github.com/aluiziolira/go-steam-search/models"
	"github.com/aluiziolira/go-steam-search/parser"
)

const (
	endpointCatalog = "catalog"
	endpointDetail  = "detail"

	ctxEndpoint = "endpoint"
	ctxStart    = "start"
	ctxBody     = "body"
	ctxErr      = "error"
)

// Client issues one synchronous request per call against the Steam catalog
// and store detail endpoints.
type Client struct {
	cfg       *config.Config
	collector *colly.Collector
	Metrics   *Metrics
}

// Resolution is the outcome of resolving one candidate app ID.
type Resolution struct {
	AppID  uint64
	Detail *models.AppDetail
	Err    error
}

// OK reports whether the candidate resolved to a detail record.
func (r Resolution) OK() bool {
	return r.Err == nil && r.Detail != nil
}

// NewClient builds a client configured from cfg.
func NewClient(cfg *config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(cfg.Hosts()...),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	// The full app list is several megabytes.
	collector.MaxBodySize = cfg.MaxBodySize
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	c := &Client{
		cfg:       cfg,
		collector: collector,
		Metrics:   NewMetrics(),
	}
	c.configureHandlers()
	return c, nil
}

// FetchCatalog retrieves the complete app list. Transport and decode failures
// are returned as is; no partial catalog is ever returned.
func (c *Client) FetchCatalog(ctx context.Context) ([]models.CatalogEntry, error) {
	body, err := c.get(ctx, endpointCatalog, c.cfg.CatalogURL)
	if err != nil {
		return nil, err
	}

	entries, err := parser.DecodeCatalog(body)
	if err != nil {
		decodeErr := &DecodeError{Endpoint: endpointCatalog, Err: err}
		c.Metrics.IncError(errorTypeLabel(decodeErr))
		return nil, decodeErr
	}

	c.Metrics.SetCatalogSize(len(entries))
	slog.Debug("catalog fetched", slog.Int("entries", len(entries)))
	return entries, nil
}

// FetchDetail retrieves the store details for appID. A *LookupError is
// returned when the store does not report success for the app.
func (c *Client) FetchDetail(ctx context.Context, appID uint64) (*models.AppDetail, error) {
	body, err := c.get(ctx, endpointDetail, c.detailURL(appID))
	if err != nil {
		return nil, err
	}

	detail, err := parser.DecodeDetail(appID, body)
	if err != nil {
		if errors.Is(err, parser.ErrUnsuccessful) {
			err = &LookupError{AppID: appID}
		} else {
			err = &DecodeError{Endpoint: endpointDetail, AppID: appID, Err: err}
		}
		c.Metrics.IncError(errorTypeLabel(err))
		return nil, err
	}

	c.Metrics.IncResolved()
	return detail, nil
}

// Resolve fetches details for each ID in turn, one request at a time. Each
// result carries its own error; the order of appIDs is preserved. Resolution
// stops early only when ctx is done.
func (c *Client) Resolve(ctx context.Context, appIDs []uint64) []Resolution {
	out := make([]Resolution, 0, len(appIDs))
	for _, id := range appIDs {
		if ctx.Err() != nil {
			break
		}
		detail, err := c.FetchDetail(ctx, id)
		out = append(out, Resolution{AppID: id, Detail: detail, Err: err})
	}
	return out
}

// SearchDetails fetches the catalog and resolves every app whose name
// contains query. Candidates that fail to resolve are left out. An error is
// returned only if the catalog cannot be fetched or ctx is cancelled.
func (c *Client) SearchDetails(ctx context.Context, query string) ([]*models.AppDetail, error) {
	catalog, err := c.FetchCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	return c.DetailsFor(ctx, catalog, query)
}

// DetailsFor resolves the matches for query within an already fetched
// catalog.
func (c *Client) DetailsFor(ctx context.Context, catalog []models.CatalogEntry, query string) ([]*models.AppDetail, error) {
	candidates := FindByNameSubstring(catalog, query)
	slog.Debug("resolving candidates",
		slog.String("query", query),
		slog.Int("candidates", len(candidates)),
	)

	details := make([]*models.AppDetail, 0, len(candidates))
	for _, res := range c.Resolve(ctx, candidates) {
		if !res.OK() {
			slog.Debug("skipping candidate",
				slog.Uint64("appid", res.AppID),
				slog.String("category", errorTypeLabel(res.Err)),
				slog.Any("error", res.Err),
			)
			continue
		}
		details = append(details, res.Detail)
	}
	return details, ctx.Err()
}

func (c *Client) detailURL(appID uint64) string {
	u, err := url.Parse(c.cfg.DetailURL)
	if err != nil {
		// Validate already parsed it.
		return c.cfg.DetailURL
	}
	q := u.Query()
	q.Set("appids", strconv.FormatUint(appID, 10))
	if c.cfg.Language != "" {
		q.Set("l", c.cfg.Language)
	}
	if c.cfg.CountryCode != "" {
		q.Set("cc", c.cfg.CountryCode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// get performs one synchronous GET and returns the response body.
func (c *Client) get(ctx context.Context, endpoint, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reqCtx := colly.NewContext()
	reqCtx.Put(ctxEndpoint, endpoint)

	err := c.collector.Request(http.MethodGet, rawURL, nil, reqCtx, nil)
	if classified, ok := reqCtx.GetAny(ctxErr).(error); ok {
		err = classified
	}
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}

	body, _ := reqCtx.GetAny(ctxBody).([]byte)
	return body, nil
}

func (c *Client) configureHandlers() {
	c.collector.OnRequest(func(r *colly.Request) {
		r.Ctx.Put(ctxStart, time.Now())
		r.Headers.Set("Accept", "application/json")
		c.Metrics.IncRequest(r.Ctx.Get(ctxEndpoint))
		slog.Debug("steam request", slog.String("url", r.URL.String()))
	})

	c.collector.OnResponse(func(r *colly.Response) {
		if start, ok := r.Ctx.GetAny(ctxStart).(time.Time); ok {
			c.Metrics.ObserveDuration(r.Ctx.Get(ctxEndpoint), time.Since(start))
		}
		r.Ctx.Put(ctxBody, r.Body)
	})

	c.collector.OnError(func(r *colly.Response, err error) {
		statusCode := 0
		url := ""
		var reqCtx *colly.Context
		if r != nil {
			statusCode = r.StatusCode
			reqCtx = r.Ctx
			if r.Request != nil && r.Request.URL != nil {
				url = r.Request.URL.String()
			}
		}
		classified := classifyError(err, statusCode)
		if classified == nil {
			classified = fmt.Errorf("http status %d", statusCode)
		}
		category := errorTypeLabel(classified)

		slog.Warn("request error",
			slog.String("url", url),
			slog.Int("status", statusCode),
			slog.String("category", category),
			slog.Any("error", err),
		)
		c.Metrics.IncError(category)
		if reqCtx != nil {
			reqCtx.Put(ctxErr, classified)
		}
	})
}
