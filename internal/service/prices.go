package service

import (
	"context"

	"github.com/pyLexxDramma/deribit-client/internal/models"
)

// PriceStore is the read surface of the price repository that the query
// operations need.
type PriceStore interface {
	GetAllByTicker(ctx context.Context, ticker string) ([]models.Price, error)
	GetLastByTicker(ctx context.Context, ticker string) (*models.Price, error)
	GetByTickerAndDate(ctx context.Context, ticker string, timestamp int64) (*models.Price, error)
}

// PriceService exposes the read use cases. Each operation delegates straight
// to the store; the layer exists to keep the HTTP boundary off the storage
// boundary.
type PriceService struct {
	store PriceStore
}

func NewPriceService(store PriceStore) *PriceService {
	return &PriceService{store: store}
}

func (s *PriceService) ListPrices(ctx context.Context, ticker string) ([]models.Price, error) {
	return s.store.GetAllByTicker(ctx, ticker)
}

func (s *PriceService) LatestPrice(ctx context.Context, ticker string) (*models.Price, error) {
	return s.store.GetLastByTicker(ctx, ticker)
}

func (s *PriceService) PriceAtDate(ctx context.Context, ticker string, timestamp int64) (*models.Price, error) {
	return s.store.GetByTickerAndDate(ctx, ticker, timestamp)
}
