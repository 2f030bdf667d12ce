package scheduler_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pyLexxDramma/deribit-client/internal/models"
	"github.com/pyLexxDramma/deribit-client/internal/scheduler"
)

type fakeFetcher struct {
	btc *models.Price
	eth *models.Price
}

func (f *fakeFetcher) GetBTCPrice(ctx context.Context) *models.Price { return f.btc }
func (f *fakeFetcher) GetETHPrice(ctx context.Context) *models.Price { return f.eth }

type fakeStore struct {
	mu           sync.Mutex
	schemaCalls  int
	schemaErr    error
	saveErr      error
	saveAttempts int
	saved        []models.Price
}

func (s *fakeStore) EnsureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemaCalls++
	return s.schemaErr
}

func (s *fakeStore) Save(ctx context.Context, p *models.Price) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveAttempts++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, *p)
	return nil
}

func (s *fakeStore) snapshot() []models.Price {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Price(nil), s.saved...)
}

func (s *fakeStore) schemaCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schemaCalls
}

func btc(price float64, ts int64) *models.Price {
	return &models.Price{Ticker: models.TickerBTC, Price: price, Timestamp: ts}
}

func eth(price float64, ts int64) *models.Price {
	return &models.Price{Ticker: models.TickerETH, Price: price, Timestamp: ts}
}

func TestRunOnce_BothTickersSaved(t *testing.T) {
	store := &fakeStore{}
	sched := scheduler.NewPriceScheduler(
		&fakeFetcher{btc: btc(50000.5, 100), eth: eth(3000.5, 100)},
		store, nil, scheduler.PriceSchedulerConfig{},
	)

	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	saved := store.snapshot()
	if len(saved) != 2 {
		t.Fatalf("expected 2 saves, got %d", len(saved))
	}
	if saved[0].Ticker != models.TickerBTC || saved[1].Ticker != models.TickerETH {
		t.Fatalf("unexpected save order: %+v", saved)
	}
	if store.schemaCount() != 1 {
		t.Fatalf("expected one EnsureSchema call, got %d", store.schemaCount())
	}
}

func TestRunOnce_AbsentBTCSkipsOnlyBTC(t *testing.T) {
	store := &fakeStore{}
	sched := scheduler.NewPriceScheduler(
		&fakeFetcher{btc: nil, eth: eth(3000.5, 100)},
		store, nil, scheduler.PriceSchedulerConfig{},
	)

	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	saved := store.snapshot()
	if len(saved) != 1 {
		t.Fatalf("expected 1 save, got %d", len(saved))
	}
	if saved[0].Ticker != models.TickerETH {
		t.Fatalf("expected ETH save, got %+v", saved[0])
	}
}

func TestRunOnce_NothingAvailable(t *testing.T) {
	store := &fakeStore{}
	sched := scheduler.NewPriceScheduler(&fakeFetcher{}, store, nil, scheduler.PriceSchedulerConfig{})

	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(store.snapshot()) != 0 {
		t.Fatal("expected no saves")
	}
}

func TestRunOnce_SaveErrorAbortsTick(t *testing.T) {
	boom := errors.New("connection lost")
	store := &fakeStore{saveErr: boom}
	sched := scheduler.NewPriceScheduler(
		&fakeFetcher{btc: btc(50000.5, 100), eth: eth(3000.5, 100)},
		store, nil, scheduler.PriceSchedulerConfig{},
	)

	err := sched.RunOnce(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected save error, got %v", err)
	}
	if !strings.Contains(err.Error(), models.TickerBTC) {
		t.Fatalf("error should name the failing ticker: %v", err)
	}

	store.mu.Lock()
	attempts := store.saveAttempts
	store.mu.Unlock()
	if attempts != 1 {
		t.Fatalf("expected tick to abort after first save failure, got %d attempts", attempts)
	}
}

func TestRunOnce_SchemaErrorPropagates(t *testing.T) {
	boom := errors.New("permission denied")
	store := &fakeStore{schemaErr: boom}
	sched := scheduler.NewPriceScheduler(&fakeFetcher{}, store, nil, scheduler.PriceSchedulerConfig{})

	if err := sched.RunOnce(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestStartStop(t *testing.T) {
	store := &fakeStore{}
	sched := scheduler.NewPriceScheduler(
		&fakeFetcher{btc: btc(50000.5, 100), eth: eth(3000.5, 100)},
		store, nil, scheduler.PriceSchedulerConfig{Interval: 10 * time.Millisecond},
	)

	sched.Start()
	if !sched.Running() {
		t.Fatal("expected running after Start")
	}

	time.Sleep(35 * time.Millisecond)
	sched.Stop()
	if sched.Running() {
		t.Fatal("expected stopped after Stop")
	}

	// Immediate tick plus at least two interval ticks, two saves each.
	if n := len(store.snapshot()); n < 4 {
		t.Fatalf("expected at least 4 saves, got %d", n)
	}

	// Idempotent Stop.
	sched.Stop()
}

func TestStart_Twice(t *testing.T) {
	store := &fakeStore{}
	sched := scheduler.NewPriceScheduler(
		&fakeFetcher{},
		store, nil, scheduler.PriceSchedulerConfig{Interval: time.Hour},
	)

	sched.Start()
	sched.Start() // no-op, must not spawn a second loop
	defer sched.Stop()

	time.Sleep(10 * time.Millisecond)
	if store.schemaCount() > 2 {
		t.Fatalf("expected a single immediate tick, got %d schema calls", store.schemaCount())
	}
}
