package auction

import (
	"context"
	"fmt"

	"job-auction/internal/auctionerrors"
	"job-auction/internal/models"
	"job-auction/internal/ranking"
)

// GetAuctionSummary projects the ledger and the clock into what a bidding page shows.
// providerID is optional; when set, the provider's own bid and rank are included.
func (s *AuctionService) GetAuctionSummary(ctx context.Context, jobID, providerID string) (models.AuctionSummary, error) {
	if jobID == "" {
		return models.AuctionSummary{}, fmt.Errorf("service: %w - empty job ID", auctionerrors.ErrInvalidInput)
	}

	job, err := s.freshJob(ctx, jobID)
	if err != nil {
		return models.AuctionSummary{}, err
	}
	bids, err := s.repo.GetBidsByJob(ctx, jobID, job.AuctionRound)
	if err != nil {
		return models.AuctionSummary{}, fmt.Errorf("service: failed to get bids for job %s: %w", jobID, err)
	}

	ranked := ranking.Ranked(ranking.Competing(bids))
	summary := models.AuctionSummary{
		JobID:         job.JobID,
		Status:        job.Status,
		TotalBids:     len(ranked),
		TimeRemaining: s.timeRemaining(job),
	}
	if job.Window != nil {
		end := job.Window.EndTime
		summary.EndTime = &end
	}
	if len(ranked) > 0 {
		lowest := ranked[0].Amount
		summary.CurrentLowestBid = &lowest
	}
	if providerID != "" {
		for _, rb := range ranked {
			if rb.ProviderID == providerID {
				own := rb
				summary.UserBid = &own
				break
			}
		}
	}
	return summary, nil
}
