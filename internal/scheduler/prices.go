package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pyLexxDramma/deribit-client/internal/models"
)

// PriceFetcher is the exchange-client surface the scheduler needs. A nil
// result means no price was available this tick; fetchers never error.
type PriceFetcher interface {
	GetBTCPrice(ctx context.Context) *models.Price
	GetETHPrice(ctx context.Context) *models.Price
}

// PriceStore is the write surface the scheduler needs.
type PriceStore interface {
	EnsureSchema(ctx context.Context) error
	Save(ctx context.Context, p *models.Price) error
}

// Notifier receives an alert when a tick fails on the storage side.
// Optional; may be nil.
type Notifier interface {
	Send(msg string)
}

type PriceSchedulerConfig struct {
	Interval    time.Duration // e.g. 60*time.Second
	TickTimeout time.Duration // budget for one full ingestion cycle
}

// PriceScheduler runs one ingestion cycle per interval: fetch the BTC and
// ETH index prices and persist whichever came back. Each ticker is an
// independent unit; a missing price skips only that ticker's save, while a
// storage failure aborts the remainder of the tick.
type PriceScheduler struct {
	client PriceFetcher
	store  PriceStore
	notify Notifier
	cfg    PriceSchedulerConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func NewPriceScheduler(client PriceFetcher, store PriceStore, notify Notifier, cfg PriceSchedulerConfig) *PriceScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.TickTimeout <= 0 {
		cfg.TickTimeout = 30 * time.Second
	}
	return &PriceScheduler{
		client: client,
		store:  store,
		notify: notify,
		cfg:    cfg,
	}
}

func (s *PriceScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Warn().Msg("price scheduler already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	go func() {
		// First tick immediately, then on the interval.
		s.tick()

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()

	log.Info().Dur("interval", s.cfg.Interval).Msg("price scheduler started")
}

func (s *PriceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
	log.Info().Msg("price scheduler stopped")
}

func (s *PriceScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *PriceScheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.TickTimeout)
	defer cancel()

	if err := s.RunOnce(ctx); err != nil {
		log.Error().Err(err).Msg("ingestion tick failed")
		if s.notify != nil {
			s.notify.Send(fmt.Sprintf("price ingestion failed: %v", err))
		}
	}
}

// RunOnce performs a single ingestion cycle synchronously. It is the whole
// public contract of the job; the interval loop is just RunOnce on a timer.
func (s *PriceScheduler) RunOnce(ctx context.Context) error {
	if err := s.store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	if p := s.client.GetBTCPrice(ctx); p != nil {
		if err := s.store.Save(ctx, p); err != nil {
			return fmt.Errorf("save %s: %w", p.Ticker, err)
		}
		log.Info().Str("ticker", p.Ticker).Float64("price", p.Price).Msg("price stored")
	} else {
		log.Warn().Str("ticker", models.TickerBTC).Msg("no price this tick")
	}

	if p := s.client.GetETHPrice(ctx); p != nil {
		if err := s.store.Save(ctx, p); err != nil {
			return fmt.Errorf("save %s: %w", p.Ticker, err)
		}
		log.Info().Str("ticker", p.Ticker).Float64("price", p.Price).Msg("price stored")
	} else {
		log.Warn().Str("ticker", models.TickerETH).Msg("no price this tick")
	}

	return nil
}
