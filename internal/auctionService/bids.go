package auction

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"unicode/utf8"

	"job-auction/internal/auctionerrors"
	"job-auction/internal/events"
	"job-auction/internal/models"
	"job-auction/internal/ranking"
	"job-auction/internal/statemachine"
	"job-auction/utils"
)

// SubmitBid places or revises the provider's bid on a job.
// A provider holds at most one pending bid per job; submitting again overwrites
// its amount and message. The returned bid carries its current rank.
func (s *AuctionService) SubmitBid(ctx context.Context, jobID, providerID string, amount int64, message string) (models.RankedBid, error) {
	if jobID == "" || providerID == "" {
		return models.RankedBid{}, fmt.Errorf("service: %w - missing jobID or providerID", auctionerrors.ErrInvalidInput)
	}
	if utf8.RuneCountInString(message) > s.maxMessageLength {
		return models.RankedBid{}, fmt.Errorf("service: %w - message longer than %d characters", auctionerrors.ErrInvalidInput, s.maxMessageLength)
	}

	var result models.RankedBid
	var revised bool
	err := s.mutateJob(ctx, jobID, func(ctx context.Context) error {
		job, err := s.loadJob(ctx, jobID)
		if err != nil {
			return err
		}
		if err := s.checkAcceptsBids(job); err != nil {
			return err
		}
		if err := validateAmount(job, amount); err != nil {
			return err
		}

		now := s.clock.Now()
		bid, err := s.repo.GetPendingBid(ctx, jobID, providerID)
		switch {
		case err == nil:
			revised = true
			bid.Amount = amount
			bid.Message = message
			bid.UpdatedAt = now
		case errors.Is(err, auctionerrors.ErrNotFound):
			revised = false
			bid = models.Bid{
				BidID:      utils.GenerateID(),
				JobID:      jobID,
				ProviderID: providerID,
				Amount:     amount,
				Message:    message,
				Status:     models.BidPending,
				Round:      job.AuctionRound,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
		default:
			return fmt.Errorf("service: failed to look up pending bid: %w", err)
		}

		action := models.AuditBidSubmitted
		if revised {
			action = models.AuditBidRevised
		}
		saved, err := s.repo.SaveBid(ctx, bid, job.Version,
			s.newAudit(jobID, bid.BidID, action, providerID, fmt.Sprintf("amount %d", amount)))
		if err != nil {
			return fmt.Errorf("service: failed to record bid for job %s by provider %s: %w", jobID, providerID, err)
		}

		bids, err := s.repo.GetBidsByJob(ctx, jobID, job.AuctionRound)
		if err != nil {
			return fmt.Errorf("service: failed to rank bid %s: %w", saved.BidID, err)
		}
		result = models.RankedBid{Bid: saved, Rank: ranking.Rank(bids, saved.BidID)}
		return nil
	})
	if err != nil {
		return models.RankedBid{}, err
	}

	utils.Info("bid recorded", map[string]any{
		"job_id":      jobID,
		"provider_id": providerID,
		"bid_id":      result.BidID,
		"amount":      amount,
		"rank":        result.Rank,
		"revised":     revised,
	})
	s.publish(jobID, events.BidSubmitted, map[string]any{
		"bid_id":      result.BidID,
		"provider_id": providerID,
		"amount":      amount,
		"rank":        result.Rank,
		"revised":     revised,
	})
	return result, nil
}

// WithdrawBid withdraws the provider's pending bid while the auction is open
func (s *AuctionService) WithdrawBid(ctx context.Context, jobID, providerID string) (models.Bid, error) {
	if jobID == "" || providerID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - missing jobID or providerID", auctionerrors.ErrInvalidInput)
	}

	var withdrawn models.Bid
	err := s.mutateJob(ctx, jobID, func(ctx context.Context) error {
		job, err := s.loadJob(ctx, jobID)
		if err != nil {
			return err
		}
		if !statemachine.AcceptsBids(job.Status) {
			return fmt.Errorf("service: %w - job %s is %s, bids can no longer be withdrawn", auctionerrors.ErrInvalidState, jobID, job.Status)
		}

		bid, err := s.repo.GetPendingBid(ctx, jobID, providerID)
		if err != nil {
			return fmt.Errorf("service: no pending bid on job %s by provider %s: %w", jobID, providerID, err)
		}
		bid.Status = models.BidWithdrawn
		bid.UpdatedAt = s.clock.Now()

		withdrawn, err = s.repo.SaveBid(ctx, bid, job.Version,
			s.newAudit(jobID, bid.BidID, models.AuditBidWithdrawn, providerID, ""))
		if err != nil {
			return fmt.Errorf("service: failed to withdraw bid %s: %w", bid.BidID, err)
		}
		return nil
	})
	if err != nil {
		return models.Bid{}, err
	}

	utils.Info("bid withdrawn", map[string]any{"job_id": jobID, "provider_id": providerID, "bid_id": withdrawn.BidID})
	s.publish(jobID, events.BidWithdrawn, map[string]any{
		"bid_id":      withdrawn.BidID,
		"provider_id": providerID,
	})
	return withdrawn, nil
}

// ListBids returns the competing bids of the job's current round, lowest price first.
// Withdrawn bids are left out; they stay visible in the audit trail.
func (s *AuctionService) ListBids(ctx context.Context, jobID string) ([]models.RankedBid, error) {
	bids, err := s.currentBids(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return ranking.Ranked(bids), nil
}

// IterBids is the lazy form of ListBids. Each range over the returned sequence
// reads the ledger again.
func (s *AuctionService) IterBids(ctx context.Context, jobID string) iter.Seq2[models.Bid, error] {
	return ranking.Seq(func() ([]models.Bid, error) {
		return s.currentBids(ctx, jobID)
	})
}

func (s *AuctionService) currentBids(ctx context.Context, jobID string) ([]models.Bid, error) {
	if jobID == "" {
		return nil, fmt.Errorf("service: %w - empty job ID", auctionerrors.ErrInvalidInput)
	}
	job, err := s.freshJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	bids, err := s.repo.GetBidsByJob(ctx, jobID, job.AuctionRound)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for job %s: %w", jobID, err)
	}
	return ranking.Competing(bids), nil
}

// checkAcceptsBids separates "too late" from every other refusal
func (s *AuctionService) checkAcceptsBids(job models.Job) error {
	switch {
	case statemachine.AcceptsBids(job.Status):
		return nil
	case statemachine.IsAuctionClosed(job.Status):
		return fmt.Errorf("service: %w - auction for job %s closed (%s)", auctionerrors.ErrWindowClosed, job.JobID, job.Status)
	default:
		return fmt.Errorf("service: %w - job %s is %s, not open for bidding", auctionerrors.ErrInvalidState, job.JobID, job.Status)
	}
}

func validateAmount(job models.Job, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("service: %w - amount must be positive", auctionerrors.ErrInvalidAmount)
	}
	if job.Window != nil && job.Window.MinimumBid != nil && amount < *job.Window.MinimumBid {
		return fmt.Errorf("service: %w - amount %d is below the minimum bid %d", auctionerrors.ErrInvalidAmount, amount, *job.Window.MinimumBid)
	}
	return nil
}
