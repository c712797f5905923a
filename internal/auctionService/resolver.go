package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"job-auction/internal/auctionerrors"
	"job-auction/internal/clock"
	"job-auction/internal/events"
	"job-auction/internal/models"
	"job-auction/internal/ranking"
	"job-auction/internal/statemachine"
	"job-auction/utils"
)

// closeAuction resolves the current round of a job whose window has elapsed.
// The lowest pending bid wins; with no pending bids the job expires.
// Callers must hold the job lock.
func (s *AuctionService) closeAuction(ctx context.Context, job models.Job, actor string) (models.Job, models.AwardResult, error) {
	bids, err := s.repo.GetBidsByJob(ctx, job.JobID, job.AuctionRound)
	if err != nil {
		return models.Job{}, models.AwardResult{}, fmt.Errorf("service: failed to load bids for job %s: %w", job.JobID, err)
	}

	winner, ok := ranking.Lowest(bids)
	next := models.StatusExpiredNoBids
	if ok {
		next = models.StatusAwarded
	}
	if err := statemachine.Transition(job.Status, next); err != nil {
		return models.Job{}, models.AwardResult{}, fmt.Errorf("service: cannot close auction for job %s: %w", job.JobID, err)
	}

	now := s.clock.Now()
	from := job.Status
	job.Status = next
	job.BiddingEndTime = nil
	job.Window.ClosedAt = &now
	job.UpdatedAt = now
	detail := fmt.Sprintf("round %d closed with no bids", job.AuctionRound)
	if ok {
		job.WinningBidID = winner.BidID
		detail = fmt.Sprintf("round %d awarded to %s at %d", job.AuctionRound, winner.ProviderID, winner.Amount)
	}

	closed, err := s.repo.CloseAuction(ctx, job, job.WinningBidID,
		s.newAudit(job.JobID, job.WinningBidID, models.AuditAuctionClosed, actor, detail))
	if err != nil {
		return models.Job{}, models.AwardResult{}, fmt.Errorf("service: failed to close auction for job %s: %w", job.JobID, err)
	}

	result := models.AwardResult{JobID: closed.JobID, Status: closed.Status}
	payload := map[string]any{
		"round":      closed.AuctionRound,
		"status":     closed.Status,
		"total_bids": len(ranking.Pending(bids)),
	}
	if ok {
		winner.Status = models.BidAccepted
		winner.UpdatedAt = now
		result.WinningBid = &winner
		payload["winning_bid_id"] = winner.BidID
		payload["amount"] = winner.Amount
	}

	utils.Info("auction closed", map[string]any{
		"job_id": closed.JobID,
		"status": closed.Status,
		"round":  closed.AuctionRound,
		"actor":  actor,
	})
	s.publish(closed.JobID, events.AuctionClosed, payload)
	if ok {
		s.publish(closed.JobID, events.JobAwarded, map[string]any{
			"bid_id":      winner.BidID,
			"provider_id": winner.ProviderID,
			"amount":      winner.Amount,
		})
	}
	s.publishStatusChange(closed, from)

	return closed, result, nil
}

// ResolveAuction runs the award resolver for a job whose window has elapsed.
// Resolving an already resolved job returns the recorded outcome without mutating anything.
func (s *AuctionService) ResolveAuction(ctx context.Context, jobID string) (models.AwardResult, error) {
	if jobID == "" {
		return models.AwardResult{}, fmt.Errorf("service: %w - empty job ID", auctionerrors.ErrInvalidInput)
	}

	var result models.AwardResult
	err := s.mutateJob(ctx, jobID, func(ctx context.Context) error {
		job, err := s.repo.GetJob(ctx, jobID)
		if err != nil {
			return fmt.Errorf("service: failed to get job %s: %w", jobID, err)
		}

		if s.isDue(job) {
			_, result, err = s.closeAuction(ctx, job, actorAdmin)
			return err
		}

		switch {
		case job.Status == models.StatusBidding:
			return fmt.Errorf("service: %w - bidding window for job %s is still open", auctionerrors.ErrInvalidState, jobID)
		case job.WinningBidID != "":
			winner, err := s.repo.GetBid(ctx, job.WinningBidID)
			if err != nil {
				return fmt.Errorf("service: failed to get winning bid %s: %w", job.WinningBidID, err)
			}
			result = models.AwardResult{JobID: job.JobID, Status: job.Status, WinningBid: &winner}
			return nil
		case job.Status == models.StatusExpiredNoBids:
			result = models.AwardResult{JobID: job.JobID, Status: job.Status}
			return nil
		default:
			return fmt.Errorf("service: %w - job %s has no auction to resolve (status %s)", auctionerrors.ErrInvalidState, jobID, job.Status)
		}
	})
	if err != nil {
		return models.AwardResult{}, err
	}
	return result, nil
}

// SweepExpired closes every auction whose window has elapsed and returns how many it closed.
// A failure on one job does not stop the sweep; all failures are returned joined.
func (s *AuctionService) SweepExpired(ctx context.Context) (int, error) {
	ids, err := s.repo.ListExpiredAuctions(ctx, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("service: failed to list expired auctions: %w", err)
	}

	closed := 0
	var errs []error
	for _, jobID := range ids {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		err := s.mutateJob(ctx, jobID, func(ctx context.Context) error {
			job, err := s.repo.GetJob(ctx, jobID)
			if err != nil {
				return fmt.Errorf("service: failed to get job %s: %w", jobID, err)
			}
			// closed by a request or another node since the listing
			if !s.isDue(job) {
				return nil
			}
			if _, _, err := s.closeAuction(ctx, job, actorSystem); err != nil {
				return err
			}
			closed++
			return nil
		})
		if err != nil {
			utils.Error("failed to close expired auction", map[string]any{
				"job_id": jobID,
				"error":  err.Error(),
			})
			errs = append(errs, err)
		}
	}

	return closed, errors.Join(errs...)
}

// RunSweeper sweeps expired auctions every interval until ctx is cancelled
func (s *AuctionService) RunSweeper(ctx context.Context, interval time.Duration) {
	utils.Info("expiry sweeper started", map[string]any{"interval": interval.String()})

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.Info("expiry sweeper stopped", nil)
			return
		case <-ticker.C:
			n, err := s.SweepExpired(ctx)
			if err != nil && ctx.Err() == nil {
				utils.Warn("expiry sweep finished with errors", map[string]any{"closed": n, "error": err.Error()})
				continue
			}
			if n > 0 {
				utils.Info("expiry sweep closed auctions", map[string]any{"closed": n})
			}
		}
	}
}

// timeRemaining is zero outside of bidding
func (s *AuctionService) timeRemaining(job models.Job) time.Duration {
	if job.Status != models.StatusBidding || job.Window == nil {
		return 0
	}
	return clock.TimeRemaining(*job.Window, s.clock.Now())
}
