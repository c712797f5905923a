package clock

import (
	"fmt"
	"sync"
	"time"

	"job-auction/internal/auctionerrors"
	"job-auction/internal/models"
)

// Clock is the authoritative time source of the auction engine
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in UTC, truncated to the precision SQL storage keeps.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Fake is a manually advanced clock for tests and simulations
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

func NewFake(start time.Time) *Fake {
	return &Fake{now: start.UTC()}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the clock forward by d
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// Set jumps the clock to t
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t.UTC()
}

// NewWindow opens a bidding window of durationHours starting at now
func NewWindow(now time.Time, durationHours int, minimumBid *int64) (models.AuctionWindow, error) {
	if durationHours <= 0 {
		return models.AuctionWindow{}, fmt.Errorf("clock: %w - duration must be positive, got %d hours", auctionerrors.ErrInvalidInput, durationHours)
	}
	if minimumBid != nil && *minimumBid <= 0 {
		return models.AuctionWindow{}, fmt.Errorf("clock: %w - minimum bid must be positive", auctionerrors.ErrInvalidAmount)
	}

	w := models.AuctionWindow{
		StartTime: now,
		EndTime:   now.Add(time.Duration(durationHours) * time.Hour),
	}
	if minimumBid != nil {
		floor := *minimumBid
		w.MinimumBid = &floor
	}
	return w, nil
}

// IsExpired reports whether now has reached the end of the window
func IsExpired(w models.AuctionWindow, now time.Time) bool {
	return !now.Before(w.EndTime)
}

// TimeRemaining returns the time left in the window, never negative
func TimeRemaining(w models.AuctionWindow, now time.Time) time.Duration {
	if w.ClosedAt != nil {
		return 0
	}
	left := w.EndTime.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}
