package models

// Price is one observed index price point. A Price is never mutated after
// construction; reads return fresh values scanned from the database.
type Price struct {
	Ticker    string  `json:"ticker"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}

// Supported public tickers. The ingestion set is fixed; queries accept any
// non-empty ticker and simply return nothing for unknown ones.
const (
	TickerBTC = "BTC_USD"
	TickerETH = "ETH_USD"
)
