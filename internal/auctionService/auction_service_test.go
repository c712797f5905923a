package auction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"job-auction/internal/auctionerrors"
	"job-auction/internal/clock"
	"job-auction/internal/events"
	model "job-auction/internal/models"
	"job-auction/internal/repository"

	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

// recorder keeps every published event
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) count(t events.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.EventType == t {
			n++
		}
	}
	return n
}

type fixture struct {
	service *AuctionService
	repo    *repository.MemoryRepo
	clock   *clock.Fake
	events  *recorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		repo:   repository.NewMemoryRepo(),
		clock:  clock.NewFake(start),
		events: &recorder{},
	}
	f.service = NewAuctionService(f.repo,
		WithClock(f.clock),
		WithPublisher(f.events),
		WithConflictBackoff(time.Millisecond),
	)
	return f
}

func (f fixture) auctionJob(t *testing.T) model.Job {
	t.Helper()
	job, err := f.service.CreateJob(context.Background(), NewJob{RequestType: model.RequestAuction, BasePrice: 380})
	require.NoError(t, err)
	return job
}

func (f fixture) biddingJob(t *testing.T, hours int, minimumBid *int64) model.Job {
	t.Helper()
	job := f.auctionJob(t)
	job, err := f.service.MakeBiddable(context.Background(), job.JobID, hours, minimumBid)
	require.NoError(t, err)
	return job
}

func int64Ptr(v int64) *int64 { return &v }

func TestAuctionService_EndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	job := f.auctionJob(t)
	require.Equal(t, model.StatusDraft, job.Status)
	require.Nil(t, job.BiddingEndTime)

	job, err := f.service.MakeBiddable(ctx, job.JobID, 24, nil)
	require.NoError(t, err)
	require.Equal(t, model.StatusBidding, job.Status)
	require.NotNil(t, job.BiddingEndTime)
	require.True(t, job.BiddingEndTime.Equal(start.Add(24*time.Hour)))

	p1, err := f.service.SubmitBid(ctx, job.JobID, "P1", 350, "")
	require.NoError(t, err)
	require.Equal(t, 1, p1.Rank)

	summary, err := f.service.GetAuctionSummary(ctx, job.JobID, "")
	require.NoError(t, err)
	require.Equal(t, 1, summary.TotalBids)
	require.Equal(t, int64(350), *summary.CurrentLowestBid)

	f.clock.Advance(time.Minute)
	p2, err := f.service.SubmitBid(ctx, job.JobID, "P2", 340, "")
	require.NoError(t, err)
	require.Equal(t, 1, p2.Rank)

	summary, err = f.service.GetAuctionSummary(ctx, job.JobID, "P1")
	require.NoError(t, err)
	require.Equal(t, int64(340), *summary.CurrentLowestBid)
	require.Equal(t, 2, summary.UserBid.Rank)

	f.clock.Advance(25 * time.Hour)
	closed, err := f.service.SweepExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, closed)

	job, err = f.repo.GetJob(ctx, job.JobID)
	require.NoError(t, err)
	require.Equal(t, model.StatusAwarded, job.Status)
	require.Nil(t, job.BiddingEndTime)
	require.Equal(t, p2.BidID, job.WinningBidID)

	accepted, err := f.repo.GetBid(ctx, p2.BidID)
	require.NoError(t, err)
	require.Equal(t, model.BidAccepted, accepted.Status)
	rejected, err := f.repo.GetBid(ctx, p1.BidID)
	require.NoError(t, err)
	require.Equal(t, model.BidRejected, rejected.Status)

	_, err = f.service.SubmitBid(ctx, job.JobID, "P3", 300, "")
	require.ErrorIs(t, err, auctionerrors.ErrWindowClosed)

	require.Equal(t, 1, f.events.count(events.AuctionStarted))
	require.Equal(t, 2, f.events.count(events.BidSubmitted))
	require.Equal(t, 1, f.events.count(events.AuctionClosed))
	require.Equal(t, 1, f.events.count(events.JobAwarded))
}

func TestAuctionService_CreateJob(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		in         NewJob
		wantStatus model.JobStatus
		wantErr    error
	}{
		{name: "auction_starts_as_draft", in: NewJob{RequestType: model.RequestAuction, BasePrice: 100}, wantStatus: model.StatusDraft},
		{name: "instant_goes_pending", in: NewJob{RequestType: model.RequestInstant, BasePrice: 100}, wantStatus: model.StatusInstantPending},
		{name: "journey_goes_pending", in: NewJob{RequestType: model.RequestJourney, BasePrice: 100, TrackingNumber: "JRN-1"}, wantStatus: model.StatusInstantPending},
		{name: "unknown_request_type", in: NewJob{RequestType: "barter", BasePrice: 100}, wantErr: auctionerrors.ErrInvalidInput},
		{name: "zero_base_price", in: NewJob{RequestType: model.RequestAuction}, wantErr: auctionerrors.ErrInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)

			job, err := f.service.CreateJob(context.Background(), tc.in)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantStatus, job.Status)
			require.NotEmpty(t, job.TrackingNumber)
			if tc.in.TrackingNumber != "" {
				require.Equal(t, tc.in.TrackingNumber, job.TrackingNumber)
			}

			trail, err := f.service.GetAuditTrail(context.Background(), job.JobID)
			require.NoError(t, err)
			require.Len(t, trail, 1)
			require.Equal(t, model.AuditJobCreated, trail[0].Action)
		})
	}
}

func TestAuctionService_SubmitBid_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		setup    func(t *testing.T, f fixture) string
		provider string
		amount   int64
		message  string
		wantErr  error
	}{
		{
			name:     "zero_amount",
			setup:    func(t *testing.T, f fixture) string { return f.biddingJob(t, 24, nil).JobID },
			provider: "P1", amount: 0, wantErr: auctionerrors.ErrInvalidAmount,
		},
		{
			name:     "negative_amount",
			setup:    func(t *testing.T, f fixture) string { return f.biddingJob(t, 24, nil).JobID },
			provider: "P1", amount: -5, wantErr: auctionerrors.ErrInvalidAmount,
		},
		{
			name:     "below_minimum_bid",
			setup:    func(t *testing.T, f fixture) string { return f.biddingJob(t, 24, int64Ptr(200)).JobID },
			provider: "P1", amount: 199, wantErr: auctionerrors.ErrInvalidAmount,
		},
		{
			name:     "at_minimum_bid",
			setup:    func(t *testing.T, f fixture) string { return f.biddingJob(t, 24, int64Ptr(200)).JobID },
			provider: "P1", amount: 200,
		},
		{
			name:     "message_too_long",
			setup:    func(t *testing.T, f fixture) string { return f.biddingJob(t, 24, nil).JobID },
			provider: "P1", amount: 100, message: strings.Repeat("x", DefaultMaxMessageLength+1), wantErr: auctionerrors.ErrInvalidInput,
		},
		{
			name:     "missing_provider",
			setup:    func(t *testing.T, f fixture) string { return f.biddingJob(t, 24, nil).JobID },
			provider: "", amount: 100, wantErr: auctionerrors.ErrInvalidInput,
		},
		{
			name:     "draft_job",
			setup:    func(t *testing.T, f fixture) string { return f.auctionJob(t).JobID },
			provider: "P1", amount: 100, wantErr: auctionerrors.ErrInvalidState,
		},
		{
			name: "window_elapsed_without_sweep",
			setup: func(t *testing.T, f fixture) string {
				job := f.biddingJob(t, 1, nil)
				f.clock.Advance(time.Hour)
				return job.JobID
			},
			provider: "P1", amount: 100, wantErr: auctionerrors.ErrWindowClosed,
		},
		{
			name:     "unknown_job",
			setup:    func(t *testing.T, f fixture) string { return "missing" },
			provider: "P1", amount: 100, wantErr: auctionerrors.ErrNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			jobID := tc.setup(t, f)

			bid, err := f.service.SubmitBid(context.Background(), jobID, tc.provider, tc.amount, tc.message)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.amount, bid.Amount)
		})
	}
}

func TestAuctionService_SubmitBid_RevisesPendingBid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	job := f.biddingJob(t, 24, nil)

	first, err := f.service.SubmitBid(ctx, job.JobID, "P1", 380, "first")
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	second, err := f.service.SubmitBid(ctx, job.JobID, "P1", 360, "second")
	require.NoError(t, err)

	require.Equal(t, first.BidID, second.BidID)
	require.Equal(t, int64(360), second.Amount)
	require.Equal(t, "second", second.Message)
	require.True(t, second.CreatedAt.Equal(first.CreatedAt))
	require.True(t, second.UpdatedAt.After(first.UpdatedAt))

	bids, err := f.service.ListBids(ctx, job.JobID)
	require.NoError(t, err)
	require.Len(t, bids, 1)

	trail, err := f.service.GetAuditTrail(ctx, job.JobID)
	require.NoError(t, err)
	actions := make([]model.AuditAction, 0, len(trail))
	for _, e := range trail {
		actions = append(actions, e.Action)
	}
	require.Equal(t, []model.AuditAction{
		model.AuditJobCreated, model.AuditStatusChanged, model.AuditBidSubmitted, model.AuditBidRevised,
	}, actions)
}

func TestAuctionService_ListBids_Order(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	job := f.biddingJob(t, 24, nil)

	submissions := []struct {
		provider string
		amount   int64
	}{
		{"P1", 300}, {"P2", 250}, {"P3", 300}, {"P4", 275},
	}
	for _, s := range submissions {
		_, err := f.service.SubmitBid(ctx, job.JobID, s.provider, s.amount, "")
		require.NoError(t, err)
		f.clock.Advance(time.Second)
	}

	bids, err := f.service.ListBids(ctx, job.JobID)
	require.NoError(t, err)
	got := make([]string, 0, len(bids))
	for _, b := range bids {
		got = append(got, fmt.Sprintf("%s:%d:%d", b.ProviderID, b.Amount, b.Rank))
	}
	// P1 and P3 tie on amount; P1 bid first
	require.Equal(t, []string{"P2:250:1", "P4:275:2", "P1:300:3", "P3:300:4"}, got)

	// the sequence reads the ledger on every range
	seq := f.service.IterBids(ctx, job.JobID)
	count := 0
	for _, err := range seq {
		require.NoError(t, err)
		count++
	}
	require.Equal(t, 4, count)

	_, err = f.service.SubmitBid(ctx, job.JobID, "P5", 100, "")
	require.NoError(t, err)
	var first model.Bid
	for b, err := range seq {
		require.NoError(t, err)
		first = b
		break
	}
	require.Equal(t, "P5", first.ProviderID)
}

func TestAuctionService_WithdrawBid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	job := f.biddingJob(t, 24, nil)

	_, err := f.service.SubmitBid(ctx, job.JobID, "P1", 200, "")
	require.NoError(t, err)
	_, err = f.service.SubmitBid(ctx, job.JobID, "P2", 250, "")
	require.NoError(t, err)

	withdrawn, err := f.service.WithdrawBid(ctx, job.JobID, "P1")
	require.NoError(t, err)
	require.Equal(t, model.BidWithdrawn, withdrawn.Status)

	_, err = f.service.WithdrawBid(ctx, job.JobID, "P1")
	require.ErrorIs(t, err, auctionerrors.ErrNotFound)

	bids, err := f.service.ListBids(ctx, job.JobID)
	require.NoError(t, err)
	require.Len(t, bids, 1)
	require.Equal(t, "P2", bids[0].ProviderID)

	// a withdrawn provider may bid again
	again, err := f.service.SubmitBid(ctx, job.JobID, "P1", 240, "")
	require.NoError(t, err)
	require.NotEqual(t, withdrawn.BidID, again.BidID)
	require.Equal(t, 1, again.Rank)

	f.clock.Advance(25 * time.Hour)
	_, err = f.service.WithdrawBid(ctx, job.JobID, "P2")
	require.ErrorIs(t, err, auctionerrors.ErrInvalidState)

	result, err := f.service.ResolveAuction(ctx, job.JobID)
	require.NoError(t, err)
	require.Equal(t, again.BidID, result.WinningBid.BidID)
	require.Equal(t, 1, f.events.count(events.BidWithdrawn))
}

func TestAuctionService_MakeBiddable_Guards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		setup      func(t *testing.T, f fixture) model.Job
		hours      int
		minimumBid *int64
		wantErr    error
	}{
		{
			name:  "draft_auction_job",
			setup: func(t *testing.T, f fixture) model.Job { return f.auctionJob(t) },
			hours: 24,
		},
		{
			name: "instant_pending_job",
			setup: func(t *testing.T, f fixture) model.Job {
				job, err := f.service.CreateJob(context.Background(), NewJob{RequestType: model.RequestInstant, BasePrice: 90})
				require.NoError(t, err)
				return job
			},
			hours: 2, minimumBid: int64Ptr(50),
		},
		{
			name:    "already_bidding",
			setup:   func(t *testing.T, f fixture) model.Job { return f.biddingJob(t, 24, nil) },
			hours:   24,
			wantErr: auctionerrors.ErrInvalidTransition,
		},
		{
			name: "assigned_job",
			setup: func(t *testing.T, f fixture) model.Job {
				job, err := f.service.CreateJob(context.Background(), NewJob{RequestType: model.RequestInstant, BasePrice: 90})
				require.NoError(t, err)
				job, err = f.service.AssignProvider(context.Background(), job.JobID, "P9")
				require.NoError(t, err)
				return job
			},
			hours:   24,
			wantErr: auctionerrors.ErrInvalidTransition,
		},
		{
			name: "cancelled_job",
			setup: func(t *testing.T, f fixture) model.Job {
				job, err := f.service.CancelJob(context.Background(), f.auctionJob(t).JobID)
				require.NoError(t, err)
				return job
			},
			hours:   24,
			wantErr: auctionerrors.ErrInvalidTransition,
		},
		{
			name:    "zero_duration",
			setup:   func(t *testing.T, f fixture) model.Job { return f.auctionJob(t) },
			hours:   0,
			wantErr: auctionerrors.ErrInvalidInput,
		},
		{
			name:    "duration_too_long",
			setup:   func(t *testing.T, f fixture) model.Job { return f.auctionJob(t) },
			hours:   DefaultMaxAuctionHours + 1,
			wantErr: auctionerrors.ErrInvalidInput,
		},
		{
			name:       "non_positive_minimum_bid",
			setup:      func(t *testing.T, f fixture) model.Job { return f.auctionJob(t) },
			hours:      24,
			minimumBid: int64Ptr(0),
			wantErr:    auctionerrors.ErrInvalidAmount,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			f := newFixture(t)
			before := tc.setup(t, f)

			job, err := f.service.MakeBiddable(ctx, before.JobID, tc.hours, tc.minimumBid)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				after, err := f.repo.GetJob(ctx, before.JobID)
				require.NoError(t, err)
				require.Equal(t, before, after, "a refused transition must not mutate the job")
				return
			}
			require.NoError(t, err)
			require.Equal(t, model.StatusBidding, job.Status)
			require.Equal(t, model.RequestAuction, job.RequestType)
			require.Equal(t, before.AuctionRound+1, job.AuctionRound)
			require.True(t, job.Window.EndTime.After(job.Window.StartTime))
			require.Equal(t, tc.minimumBid, job.Window.MinimumBid)
		})
	}
}

func TestAuctionService_MakeInstant(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("from_bidding_rejects_pending_bids", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		job := f.biddingJob(t, 24, nil)
		bid, err := f.service.SubmitBid(ctx, job.JobID, "P1", 200, "")
		require.NoError(t, err)

		f.clock.Advance(time.Hour)
		job, err = f.service.MakeInstant(ctx, job.JobID)
		require.NoError(t, err)
		require.Equal(t, model.StatusInstantPending, job.Status)
		require.Equal(t, model.RequestInstant, job.RequestType)
		require.Nil(t, job.BiddingEndTime)
		require.NotNil(t, job.Window.ClosedAt)
		require.True(t, job.Window.ClosedAt.Equal(start.Add(time.Hour)))

		stored, err := f.repo.GetBid(ctx, bid.BidID)
		require.NoError(t, err)
		require.Equal(t, model.BidRejected, stored.Status)

		summary, err := f.service.GetAuctionSummary(ctx, job.JobID, "")
		require.NoError(t, err)
		require.Zero(t, summary.TimeRemaining)
	})

	t.Run("instant_job_refused", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		job, err := f.service.CreateJob(ctx, NewJob{RequestType: model.RequestInstant, BasePrice: 90})
		require.NoError(t, err)
		_, err = f.service.MakeInstant(ctx, job.JobID)
		require.ErrorIs(t, err, auctionerrors.ErrInvalidTransition)
	})

	t.Run("expired_job_can_be_relisted", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		job := f.biddingJob(t, 1, nil)
		f.clock.Advance(2 * time.Hour)

		job, err := f.service.GetJob(ctx, job.JobID)
		require.NoError(t, err)
		require.Equal(t, model.StatusExpiredNoBids, job.Status)

		job, err = f.service.MakeInstant(ctx, job.JobID)
		require.NoError(t, err)
		job, err = f.service.MakeBiddable(ctx, job.JobID, 4, nil)
		require.NoError(t, err)
		require.Equal(t, 2, job.AuctionRound)

		bids, err := f.service.ListBids(ctx, job.JobID)
		require.NoError(t, err)
		require.Empty(t, bids)
	})
}

func TestAuctionService_ResolveAuction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("window_still_open", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		job := f.biddingJob(t, 24, nil)
		_, err := f.service.ResolveAuction(ctx, job.JobID)
		require.ErrorIs(t, err, auctionerrors.ErrInvalidState)
	})

	t.Run("idempotent_award", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		job := f.biddingJob(t, 24, nil)
		for i, amount := range []int64{310, 290, 290} {
			_, err := f.service.SubmitBid(ctx, job.JobID, fmt.Sprintf("P%d", i+1), amount, "")
			require.NoError(t, err)
			f.clock.Advance(time.Second)
		}
		f.clock.Advance(24 * time.Hour)

		first, err := f.service.ResolveAuction(ctx, job.JobID)
		require.NoError(t, err)
		require.Equal(t, model.StatusAwarded, first.Status)
		require.Equal(t, "P2", first.WinningBid.ProviderID)
		require.Equal(t, model.BidAccepted, first.WinningBid.Status)

		for i := 0; i < 3; i++ {
			again, err := f.service.ResolveAuction(ctx, job.JobID)
			require.NoError(t, err)
			require.Equal(t, first.WinningBid.BidID, again.WinningBid.BidID)
		}
		require.Equal(t, 1, f.events.count(events.AuctionClosed))
	})

	t.Run("no_bids_expires", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		job := f.biddingJob(t, 24, nil)
		_, err := f.service.SubmitBid(ctx, job.JobID, "P1", 100, "")
		require.NoError(t, err)
		_, err = f.service.WithdrawBid(ctx, job.JobID, "P1")
		require.NoError(t, err)
		f.clock.Advance(24 * time.Hour)

		result, err := f.service.ResolveAuction(ctx, job.JobID)
		require.NoError(t, err)
		require.Equal(t, model.StatusExpiredNoBids, result.Status)
		require.Nil(t, result.WinningBid)
		require.Zero(t, f.events.count(events.JobAwarded))

		again, err := f.service.ResolveAuction(ctx, job.JobID)
		require.NoError(t, err)
		require.Equal(t, model.StatusExpiredNoBids, again.Status)
	})

	t.Run("never_auctioned", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.service.ResolveAuction(ctx, f.auctionJob(t).JobID)
		require.ErrorIs(t, err, auctionerrors.ErrInvalidState)
	})
}

func TestAuctionService_LazyExpiryOnRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	job := f.biddingJob(t, 2, nil)
	_, err := f.service.SubmitBid(ctx, job.JobID, "P1", 120, "")
	require.NoError(t, err)

	summary, err := f.service.GetAuctionSummary(ctx, job.JobID, "P1")
	require.NoError(t, err)
	require.Equal(t, 2*time.Hour, summary.TimeRemaining)

	f.clock.Advance(3 * time.Hour)
	jobs, err := f.service.ListJobs(ctx, model.StatusBidding)
	require.NoError(t, err)
	require.Empty(t, jobs)

	job, err = f.service.GetJob(ctx, job.JobID)
	require.NoError(t, err)
	require.Equal(t, model.StatusAwarded, job.Status)
	require.Nil(t, job.BiddingEndTime)

	summary, err = f.service.GetAuctionSummary(ctx, job.JobID, "P1")
	require.NoError(t, err)
	require.Zero(t, summary.TimeRemaining)
	require.Equal(t, model.BidAccepted, summary.UserBid.Status)

	// nothing left for the sweeper
	n, err := f.service.SweepExpired(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestAuctionService_LazyExpiryOnFilteredReads(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("list_by_closed_status", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		awarded := f.biddingJob(t, 2, nil)
		_, err := f.service.SubmitBid(ctx, awarded.JobID, "P1", 120, "")
		require.NoError(t, err)
		unsold := f.biddingJob(t, 2, nil)
		open := f.biddingJob(t, 5, nil)

		f.clock.Advance(3 * time.Hour)

		jobs, err := f.service.ListJobs(ctx, model.StatusAwarded)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		require.Equal(t, awarded.JobID, jobs[0].JobID)
		require.Equal(t, model.StatusAwarded, jobs[0].Status)

		jobs, err = f.service.ListJobs(ctx, model.StatusExpiredNoBids)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		require.Equal(t, unsold.JobID, jobs[0].JobID)

		jobs, err = f.service.ListJobs(ctx, model.StatusBidding)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		require.Equal(t, open.JobID, jobs[0].JobID)
	})

	t.Run("provider_jobs", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		job := f.biddingJob(t, 2, nil)
		_, err := f.service.SubmitBid(ctx, job.JobID, "P1", 120, "")
		require.NoError(t, err)

		f.clock.Advance(3 * time.Hour)

		jobs, err := f.service.GetJobsByProvider(ctx, "P1")
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		require.Equal(t, model.StatusAwarded, jobs[0].Status)
		require.Nil(t, jobs[0].BiddingEndTime)

		stored, err := f.repo.GetJob(ctx, job.JobID)
		require.NoError(t, err)
		require.Equal(t, model.StatusAwarded, stored.Status)
	})
}

func TestAuctionService_Lifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	job := f.biddingJob(t, 1, nil)
	_, err := f.service.SubmitBid(ctx, job.JobID, "P1", 150, "")
	require.NoError(t, err)
	_, err = f.service.SubmitBid(ctx, job.JobID, "P2", 140, "")
	require.NoError(t, err)
	f.clock.Advance(time.Hour)

	_, err = f.service.AssignProvider(ctx, job.JobID, "P1")
	require.ErrorIs(t, err, auctionerrors.ErrInvalidTransition)

	job, err = f.service.AssignProvider(ctx, job.JobID, "")
	require.NoError(t, err)
	require.Equal(t, model.StatusAssigned, job.Status)
	require.Equal(t, "P2", job.AssignedProviderID)

	_, err = f.service.MakeBiddable(ctx, job.JobID, 24, nil)
	require.ErrorIs(t, err, auctionerrors.ErrInvalidTransition)

	job, err = f.service.MarkInTransit(ctx, job.JobID)
	require.NoError(t, err)
	require.Equal(t, model.StatusInTransit, job.Status)

	job, err = f.service.MarkCompleted(ctx, job.JobID)
	require.NoError(t, err)
	require.Equal(t, model.StatusCompleted, job.Status)

	_, err = f.service.CancelJob(ctx, job.JobID)
	require.ErrorIs(t, err, auctionerrors.ErrInvalidTransition)

	jobs, err := f.service.GetJobsByProvider(ctx, "P1")
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	t.Run("instant_assignment_needs_provider", func(t *testing.T) {
		instant, err := f.service.CreateJob(ctx, NewJob{RequestType: model.RequestInstant, BasePrice: 75})
		require.NoError(t, err)
		_, err = f.service.AssignProvider(ctx, instant.JobID, "")
		require.ErrorIs(t, err, auctionerrors.ErrInvalidInput)
		_, err = f.service.MarkInTransit(ctx, instant.JobID)
		require.ErrorIs(t, err, auctionerrors.ErrInvalidTransition)
	})
}

func TestAuctionService_CancelDuringBidding(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	job := f.biddingJob(t, 24, nil)
	bid, err := f.service.SubmitBid(ctx, job.JobID, "P1", 150, "")
	require.NoError(t, err)

	job, err = f.service.CancelJob(ctx, job.JobID)
	require.NoError(t, err)
	require.Equal(t, model.StatusCancelled, job.Status)
	require.Nil(t, job.BiddingEndTime)

	stored, err := f.repo.GetBid(ctx, bid.BidID)
	require.NoError(t, err)
	require.Equal(t, model.BidRejected, stored.Status)

	_, err = f.service.SubmitBid(ctx, job.JobID, "P2", 120, "")
	require.ErrorIs(t, err, auctionerrors.ErrInvalidState)
}

func TestAuctionService_ConcurrentBids(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	job := f.biddingJob(t, 24, nil)

	var wg sync.WaitGroup
	providers := 50
	for i := 0; i < providers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// every provider bids twice; the second bid revises the first
			_, err := f.service.SubmitBid(ctx, job.JobID, fmt.Sprintf("P%d", i), int64(1000+i), "")
			require.NoError(t, err)
			_, err = f.service.SubmitBid(ctx, job.JobID, fmt.Sprintf("P%d", i), int64(500+i), "")
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	bids, err := f.service.ListBids(ctx, job.JobID)
	require.NoError(t, err)
	require.Len(t, bids, providers)
	require.Equal(t, int64(500), bids[0].Amount)
	require.Equal(t, "P0", bids[0].ProviderID)
}

func TestAuctionService_ConcurrentResolutionAwardsOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	job := f.biddingJob(t, 1, nil)
	for i := 0; i < 5; i++ {
		_, err := f.service.SubmitBid(ctx, job.JobID, fmt.Sprintf("P%d", i), int64(200-i), "")
		require.NoError(t, err)
	}
	f.clock.Advance(time.Hour)

	var wg sync.WaitGroup
	winners := make(chan string, 20)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			result, err := f.service.ResolveAuction(ctx, job.JobID)
			require.NoError(t, err)
			winners <- result.WinningBid.ProviderID
		}()
		go func() {
			defer wg.Done()
			_, err := f.service.SubmitBid(ctx, job.JobID, "late", 1, "")
			require.ErrorIs(t, err, auctionerrors.ErrWindowClosed)
		}()
	}
	wg.Wait()
	close(winners)

	for w := range winners {
		require.Equal(t, "P4", w)
	}
	require.Equal(t, 1, f.events.count(events.AuctionClosed))
	require.Equal(t, 1, f.events.count(events.JobAwarded))
}

func TestAuctionService_RunSweeper(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	job := f.biddingJob(t, 1, nil)
	f.clock.Advance(2 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.service.RunSweeper(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		stored, err := f.repo.GetJob(context.Background(), job.JobID)
		return err == nil && stored.Status == model.StatusExpiredNoBids
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestAuctionService_InvalidInput(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	checks := map[string]error{}
	_, checks["get_job"] = f.service.GetJob(ctx, "")
	_, checks["list_jobs_bad_status"] = f.service.ListJobs(ctx, "sleeping")
	_, checks["make_biddable"] = f.service.MakeBiddable(ctx, "", 1, nil)
	_, checks["make_instant"] = f.service.MakeInstant(ctx, "")
	_, checks["assign"] = f.service.AssignProvider(ctx, "", "P1")
	_, checks["withdraw"] = f.service.WithdrawBid(ctx, "job", "")
	_, checks["list_bids"] = f.service.ListBids(ctx, "")
	_, checks["summary"] = f.service.GetAuctionSummary(ctx, "", "")
	_, checks["resolve"] = f.service.ResolveAuction(ctx, "")
	_, checks["audit"] = f.service.GetAuditTrail(ctx, "")
	_, checks["provider_jobs"] = f.service.GetJobsByProvider(ctx, "")

	for name, err := range checks {
		require.True(t, errors.Is(err, auctionerrors.ErrInvalidInput), "%s: expected invalid input, got %v", name, err)
	}
}
