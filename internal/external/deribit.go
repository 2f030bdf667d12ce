package external

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pyLexxDramma/deribit-client/internal/httputil"
	"github.com/pyLexxDramma/deribit-client/internal/models"
)

const DefaultBaseURL = "https://www.deribit.com/api/v2"

// Instrument keys understood by the exchange, distinct from the public
// ticker names stored in the database.
const (
	indexBTC = "btc_usd"
	indexETH = "eth_usd"
)

// DeribitClient fetches index prices from Deribit's public API. Upstream
// trouble of any kind (transport error, timeout, bad status, malformed body)
// is normalized to "no price available" so a periodic caller can simply skip
// that tick; the client never returns an error.
type DeribitClient struct {
	baseURL string

	mu         sync.Mutex
	httpClient *http.Client
}

func NewDeribitClient(baseURL string) *DeribitClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &DeribitClient{baseURL: baseURL}
}

// session returns the shared HTTP client, creating it lazily and recreating
// it if the client was previously closed.
func (c *DeribitClient) session() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return c.httpClient
}

// Close releases the connection resources held by the client. The client
// remains usable; the next call opens a fresh session.
func (c *DeribitClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
		c.httpClient = nil
	}
}

// GetIndexPrice returns the current index price for an instrument key, or
// ok=false when no price is available.
func (c *DeribitClient) GetIndexPrice(ctx context.Context, indexName string) (price float64, ok bool) {
	u := c.baseURL + "/public/get_index_price?index_name=" + url.QueryEscape(indexName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		log.Debug().Str("index", indexName).Err(err).Msg("deribit request build failed")
		return 0, false
	}

	var body struct {
		Result *struct {
			IndexPrice *float64 `json:"index_price"`
		} `json:"result"`
	}
	if err := httputil.GetJSON(c.session(), req, &body); err != nil {
		log.Debug().Str("index", indexName).Err(err).Msg("deribit fetch failed")
		return 0, false
	}

	if body.Result == nil || body.Result.IndexPrice == nil || *body.Result.IndexPrice <= 0 {
		log.Debug().Str("index", indexName).Msg("deribit response missing index_price")
		return 0, false
	}
	return *body.Result.IndexPrice, true
}

// GetBTCPrice fetches the BTC index price, stamped with the fetch time.
// Returns nil when no price is available.
func (c *DeribitClient) GetBTCPrice(ctx context.Context) *models.Price {
	return c.labeled(ctx, models.TickerBTC, indexBTC)
}

// GetETHPrice fetches the ETH index price, stamped with the fetch time.
// Returns nil when no price is available.
func (c *DeribitClient) GetETHPrice(ctx context.Context) *models.Price {
	return c.labeled(ctx, models.TickerETH, indexETH)
}

func (c *DeribitClient) labeled(ctx context.Context, ticker, indexName string) *models.Price {
	price, ok := c.GetIndexPrice(ctx, indexName)
	if !ok {
		return nil
	}
	return &models.Price{
		Ticker:    ticker,
		Price:     price,
		Timestamp: time.Now().Unix(),
	}
}
