package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pyLexxDramma/deribit-client/internal/models"
)

// PriceRepo persists observed prices in the prices table. Inserts are
// append-only: nothing enforces uniqueness on (ticker, timestamp), so two
// observations in the same second both persist.
type PriceRepo struct {
	pool *pgxpool.Pool
}

func NewPriceRepo(pool *pgxpool.Pool) *PriceRepo {
	return &PriceRepo{pool: pool}
}

// EnsureSchema creates the prices table and its lookup index if they do not
// exist yet. Safe to call on every startup and every ingestion tick.
func (r *PriceRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS prices (
			id BIGSERIAL PRIMARY KEY,
			ticker VARCHAR(10) NOT NULL,
			price DECIMAL(20, 8) NOT NULL,
			timestamp BIGINT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_prices_ticker_timestamp
		ON prices (ticker, timestamp DESC)`)
	return err
}

func (r *PriceRepo) Save(ctx context.Context, p *models.Price) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO prices (ticker, price, timestamp) VALUES ($1, $2, $3)`,
		p.Ticker, p.Price, p.Timestamp,
	)
	return err
}

// GetAllByTicker returns every stored price for a ticker, most recent first.
func (r *PriceRepo) GetAllByTicker(ctx context.Context, ticker string) ([]models.Price, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ticker, price, timestamp FROM prices
		 WHERE ticker = $1 ORDER BY timestamp DESC`,
		ticker,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPrices(rows)
}

// GetLastByTicker returns the most recent price for a ticker, or nil if the
// ticker has no rows.
func (r *PriceRepo) GetLastByTicker(ctx context.Context, ticker string) (*models.Price, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT ticker, price, timestamp FROM prices
		 WHERE ticker = $1 ORDER BY timestamp DESC LIMIT 1`,
		ticker,
	)
	return scanOptional(row)
}

// GetByTickerAndDate returns the price observed for a ticker at an exact
// Unix timestamp, or nil if none matches. When duplicate timestamps exist
// the choice among them is unspecified.
func (r *PriceRepo) GetByTickerAndDate(ctx context.Context, ticker string, timestamp int64) (*models.Price, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT ticker, price, timestamp FROM prices
		 WHERE ticker = $1 AND timestamp = $2 LIMIT 1`,
		ticker, timestamp,
	)
	return scanOptional(row)
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

func scanPrice(row scannable) (*models.Price, error) {
	var p models.Price
	if err := row.Scan(&p.Ticker, &p.Price, &p.Timestamp); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanOptional(row scannable) (*models.Price, error) {
	p, err := scanPrice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectPrices(rows rowsIter) ([]models.Price, error) {
	var out []models.Price
	for rows.Next() {
		var p models.Price
		if err := rows.Scan(&p.Ticker, &p.Price, &p.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
