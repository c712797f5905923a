package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"job-auction/internal/auctionerrors"
	"job-auction/internal/clock"
	"job-auction/internal/events"
	"job-auction/internal/locker"
	"job-auction/internal/models"
	"job-auction/internal/repository"
	"job-auction/utils"

	"github.com/sethvargo/go-retry"
)

const (
	DefaultConflictRetries  = 3
	DefaultConflictBackoff  = 25 * time.Millisecond
	DefaultMaxMessageLength = 500
	DefaultMaxAuctionHours  = 720
)

// audit actors for mutations not made by a provider
const (
	actorAdmin  = "admin"
	actorSystem = "system"
)

// AuctionService defines the business logic of the job auction engine:
// bid ledger, auction clock, state machine, award resolver and the read-side queries.
type AuctionService struct {
	repo      repository.AuctionDB
	clock     clock.Clock
	publisher events.Publisher
	locks     *locker.KeyedMutex

	conflictRetries  uint64
	conflictBackoff  time.Duration
	maxMessageLength int
	maxAuctionHours  int
}

// Option customises an AuctionService
type Option func(*AuctionService)

func WithClock(c clock.Clock) Option {
	return func(s *AuctionService) { s.clock = c }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *AuctionService) { s.publisher = p }
}

// WithConflictRetries bounds how many times a write is retried after ErrConflict
func WithConflictRetries(n uint64) Option {
	return func(s *AuctionService) { s.conflictRetries = n }
}

func WithConflictBackoff(d time.Duration) Option {
	return func(s *AuctionService) {
		if d > 0 {
			s.conflictBackoff = d
		}
	}
}

func WithMaxMessageLength(n int) Option {
	return func(s *AuctionService) { s.maxMessageLength = n }
}

func WithMaxAuctionHours(n int) Option {
	return func(s *AuctionService) { s.maxAuctionHours = n }
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.AuctionDB, opts ...Option) *AuctionService {
	s := &AuctionService{
		repo:             repo,
		clock:            clock.System{},
		publisher:        events.Nop{},
		locks:            locker.New(),
		conflictRetries:  DefaultConflictRetries,
		conflictBackoff:  DefaultConflictBackoff,
		maxMessageLength: DefaultMaxMessageLength,
		maxAuctionHours:  DefaultMaxAuctionHours,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// mutateJob runs fn while holding the job's lock and retries it on ErrConflict.
// fn must re-read everything it depends on, since a retry follows a concurrent write.
func (s *AuctionService) mutateJob(ctx context.Context, jobID string, fn func(ctx context.Context) error) error {
	unlock := s.locks.Lock(jobID)
	defer unlock()

	attempt := 0
	backoff := retry.WithMaxRetries(s.conflictRetries, retry.NewConstant(s.conflictBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if errors.Is(err, auctionerrors.ErrConflict) {
			utils.Warn("conflicting write, retrying", map[string]any{
				"job_id":  jobID,
				"attempt": attempt,
				"error":   err.Error(),
			})
			return retry.RetryableError(err)
		}
		return err
	})
}

// loadJob reads a job and, when its bidding window has elapsed, closes the auction first.
// Callers must hold the job lock.
func (s *AuctionService) loadJob(ctx context.Context, jobID string) (models.Job, error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return models.Job{}, fmt.Errorf("service: failed to load job %s: %w", jobID, err)
	}
	if !s.isDue(job) {
		return job, nil
	}
	closed, _, err := s.closeAuction(ctx, job, actorSystem)
	if err != nil {
		return models.Job{}, err
	}
	return closed, nil
}

// freshJob is the lock-free read path: it only takes the job lock when the
// window has elapsed and the auction still needs closing.
func (s *AuctionService) freshJob(ctx context.Context, jobID string) (models.Job, error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return models.Job{}, fmt.Errorf("service: failed to get job %s: %w", jobID, err)
	}
	if !s.isDue(job) {
		return job, nil
	}

	err = s.mutateJob(ctx, jobID, func(ctx context.Context) error {
		job, err = s.loadJob(ctx, jobID)
		return err
	})
	if err != nil {
		return models.Job{}, err
	}
	return job, nil
}

// isDue reports whether job is still bidding past the end of its window
func (s *AuctionService) isDue(job models.Job) bool {
	return job.Status == models.StatusBidding && job.Window != nil && clock.IsExpired(*job.Window, s.clock.Now())
}

func (s *AuctionService) publish(jobID string, eventType events.EventType, payload any) {
	s.publisher.Publish(events.Event{
		JobID:     jobID,
		EventType: eventType,
		Timestamp: s.clock.Now(),
		Payload:   payload,
	})
}

func (s *AuctionService) publishStatusChange(job models.Job, from models.JobStatus) {
	s.publish(job.JobID, events.JobStatusChanged, map[string]any{
		"from":    from,
		"to":      job.Status,
		"version": job.Version,
	})
}

func (s *AuctionService) newAudit(jobID, bidID string, action models.AuditAction, actor, detail string) models.AuditEntry {
	return models.AuditEntry{
		EntryID:   utils.GenerateID(),
		JobID:     jobID,
		BidID:     bidID,
		Action:    action,
		Actor:     actor,
		Detail:    detail,
		CreatedAt: s.clock.Now(),
	}
}
