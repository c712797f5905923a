package auction

import (
	"context"
	"fmt"

	"job-auction/internal/auctionerrors"
	"job-auction/internal/clock"
	"job-auction/internal/events"
	"job-auction/internal/models"
	"job-auction/internal/statemachine"
	"job-auction/utils"
)

// NewJob is the intake payload handed over by the order subsystem
type NewJob struct {
	TrackingNumber  string
	RequestType     models.RequestType
	BasePrice       int64
	PickupAddress   string
	DeliveryAddress string
}

// CreateJob registers a job. Auction requests start as draft until an admin opens bidding,
// every other request type goes straight to instant_pending.
func (s *AuctionService) CreateJob(ctx context.Context, in NewJob) (models.Job, error) {
	if !models.ValidRequestType(in.RequestType) {
		return models.Job{}, fmt.Errorf("service: %w - unknown request type %q", auctionerrors.ErrInvalidInput, in.RequestType)
	}
	if in.BasePrice <= 0 {
		return models.Job{}, fmt.Errorf("service: %w - base price must be positive", auctionerrors.ErrInvalidInput)
	}

	now := s.clock.Now()
	job := models.Job{
		JobID:           utils.GenerateID(),
		TrackingNumber:  in.TrackingNumber,
		RequestType:     in.RequestType,
		Status:          models.StatusDraft,
		BasePrice:       in.BasePrice,
		PickupAddress:   in.PickupAddress,
		DeliveryAddress: in.DeliveryAddress,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if job.TrackingNumber == "" {
		job.TrackingNumber = utils.GenerateTrackingNumber()
	}

	detail := "created as draft"
	if in.RequestType != models.RequestAuction {
		if err := statemachine.Transition(job.Status, models.StatusInstantPending); err != nil {
			return models.Job{}, fmt.Errorf("service: %w", err)
		}
		job.Status = models.StatusInstantPending
		detail = "created as instant_pending"
	}

	if err := s.repo.CreateJob(ctx, job, s.newAudit(job.JobID, "", models.AuditJobCreated, actorAdmin, detail)); err != nil {
		return models.Job{}, fmt.Errorf("service: failed to create job %s: %w", job.TrackingNumber, err)
	}

	utils.Info("job created", map[string]any{
		"job_id":       job.JobID,
		"request_type": job.RequestType,
		"status":       job.Status,
	})
	return job, nil
}

// GetJob returns a job, closing its auction first if the window has elapsed
func (s *AuctionService) GetJob(ctx context.Context, jobID string) (models.Job, error) {
	if jobID == "" {
		return models.Job{}, fmt.Errorf("service: %w - empty job ID", auctionerrors.ErrInvalidInput)
	}
	return s.freshJob(ctx, jobID)
}

// ListJobs returns all jobs, or those in status when it is not empty
func (s *AuctionService) ListJobs(ctx context.Context, status models.JobStatus) ([]models.Job, error) {
	if status != "" && !models.ValidJobStatus(status) {
		return nil, fmt.Errorf("service: %w - unknown status %q", auctionerrors.ErrInvalidInput, status)
	}

	// a due auction is still stored as bidding but reads as awarded or expired_no_bids
	query := status
	if status == models.StatusAwarded || status == models.StatusExpiredNoBids {
		query = ""
	}
	jobs, err := s.repo.ListJobs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list jobs: %w", err)
	}

	out := make([]models.Job, 0, len(jobs))
	for _, job := range jobs {
		if s.isDue(job) {
			if job, err = s.freshJob(ctx, job.JobID); err != nil {
				return nil, err
			}
		}
		if status != "" && job.Status != status {
			continue
		}
		out = append(out, job)
	}
	return out, nil
}

// MakeBiddable opens a new auction round of durationHours on the job.
// minimumBid is an optional price floor.
func (s *AuctionService) MakeBiddable(ctx context.Context, jobID string, durationHours int, minimumBid *int64) (models.Job, error) {
	if jobID == "" {
		return models.Job{}, fmt.Errorf("service: %w - empty job ID", auctionerrors.ErrInvalidInput)
	}
	if durationHours > s.maxAuctionHours {
		return models.Job{}, fmt.Errorf("service: %w - duration %d exceeds %d hours", auctionerrors.ErrInvalidInput, durationHours, s.maxAuctionHours)
	}

	var updated models.Job
	var from models.JobStatus
	err := s.mutateJob(ctx, jobID, func(ctx context.Context) error {
		job, err := s.loadJob(ctx, jobID)
		if err != nil {
			return err
		}
		if err := statemachine.CanBeMadeBiddable(job); err != nil {
			return fmt.Errorf("service: %w", err)
		}

		now := s.clock.Now()
		window, err := clock.NewWindow(now, durationHours, minimumBid)
		if err != nil {
			return fmt.Errorf("service: %w", err)
		}

		from = job.Status
		end := window.EndTime
		job.Status = models.StatusBidding
		job.RequestType = models.RequestAuction
		job.Window = &window
		job.BiddingEndTime = &end
		job.AuctionRound++
		job.WinningBidID = ""
		job.UpdatedAt = now

		detail := fmt.Sprintf("%s -> bidding, round %d ends %s", from, job.AuctionRound, end.Format("2006-01-02T15:04:05Z07:00"))
		updated, err = s.repo.UpdateJob(ctx, job, s.newAudit(jobID, "", models.AuditStatusChanged, actorAdmin, detail))
		if err != nil {
			return fmt.Errorf("service: failed to make job %s biddable: %w", jobID, err)
		}
		return nil
	})
	if err != nil {
		return models.Job{}, err
	}

	utils.Info("job made biddable", map[string]any{
		"job_id":   jobID,
		"round":    updated.AuctionRound,
		"end_time": updated.Window.EndTime,
	})
	s.publish(jobID, events.AuctionStarted, map[string]any{
		"round":       updated.AuctionRound,
		"start_time":  updated.Window.StartTime,
		"end_time":    updated.Window.EndTime,
		"minimum_bid": updated.Window.MinimumBid,
	})
	s.publishStatusChange(updated, from)
	return updated, nil
}

// MakeInstant converts a job back to direct assignment. Pending bids of an open
// round are rejected and the window is frozen.
func (s *AuctionService) MakeInstant(ctx context.Context, jobID string) (models.Job, error) {
	if jobID == "" {
		return models.Job{}, fmt.Errorf("service: %w - empty job ID", auctionerrors.ErrInvalidInput)
	}

	var updated models.Job
	var from models.JobStatus
	err := s.mutateJob(ctx, jobID, func(ctx context.Context) error {
		job, err := s.loadJob(ctx, jobID)
		if err != nil {
			return err
		}
		if err := statemachine.CanBeMadeInstant(job); err != nil {
			return fmt.Errorf("service: %w", err)
		}

		from = job.Status
		job.RequestType = models.RequestInstant
		updated, err = s.leaveStatus(ctx, job, models.StatusInstantPending, actorAdmin)
		if err != nil {
			return fmt.Errorf("service: failed to make job %s instant: %w", jobID, err)
		}
		return nil
	})
	if err != nil {
		return models.Job{}, err
	}

	utils.Info("job made instant", map[string]any{"job_id": jobID, "from": from})
	s.publishStatusChange(updated, from)
	return updated, nil
}

// AssignProvider hands the job to a provider. An awarded job can only go to the
// auction winner, who is used when providerID is empty.
func (s *AuctionService) AssignProvider(ctx context.Context, jobID, providerID string) (models.Job, error) {
	if jobID == "" {
		return models.Job{}, fmt.Errorf("service: %w - empty job ID", auctionerrors.ErrInvalidInput)
	}

	var updated models.Job
	var from models.JobStatus
	err := s.mutateJob(ctx, jobID, func(ctx context.Context) error {
		job, err := s.loadJob(ctx, jobID)
		if err != nil {
			return err
		}
		if err := statemachine.CanBeAssigned(job); err != nil {
			return fmt.Errorf("service: %w", err)
		}

		assignee := providerID
		if job.Status == models.StatusAwarded {
			winner, err := s.repo.GetBid(ctx, job.WinningBidID)
			if err != nil {
				return fmt.Errorf("service: failed to get winning bid %s: %w", job.WinningBidID, err)
			}
			if assignee == "" {
				assignee = winner.ProviderID
			}
			if assignee != winner.ProviderID {
				return fmt.Errorf("service: %w - job %s was awarded to %s, not %s",
					auctionerrors.ErrInvalidTransition, jobID, winner.ProviderID, assignee)
			}
		}
		if assignee == "" {
			return fmt.Errorf("service: %w - provider ID is required", auctionerrors.ErrInvalidInput)
		}

		from = job.Status
		job.AssignedProviderID = assignee
		updated, err = s.leaveStatus(ctx, job, models.StatusAssigned, actorAdmin)
		if err != nil {
			return fmt.Errorf("service: failed to assign job %s: %w", jobID, err)
		}
		return nil
	})
	if err != nil {
		return models.Job{}, err
	}

	utils.Info("job assigned", map[string]any{"job_id": jobID, "provider_id": updated.AssignedProviderID})
	s.publishStatusChange(updated, from)
	return updated, nil
}

// MarkInTransit records that the assigned provider picked the job up
func (s *AuctionService) MarkInTransit(ctx context.Context, jobID string) (models.Job, error) {
	return s.advance(ctx, jobID, models.StatusInTransit)
}

// MarkCompleted records delivery of the job
func (s *AuctionService) MarkCompleted(ctx context.Context, jobID string) (models.Job, error) {
	return s.advance(ctx, jobID, models.StatusCompleted)
}

// CancelJob cancels a job from any non-terminal status
func (s *AuctionService) CancelJob(ctx context.Context, jobID string) (models.Job, error) {
	return s.advance(ctx, jobID, models.StatusCancelled)
}

func (s *AuctionService) advance(ctx context.Context, jobID string, to models.JobStatus) (models.Job, error) {
	if jobID == "" {
		return models.Job{}, fmt.Errorf("service: %w - empty job ID", auctionerrors.ErrInvalidInput)
	}

	var updated models.Job
	var from models.JobStatus
	err := s.mutateJob(ctx, jobID, func(ctx context.Context) error {
		job, err := s.loadJob(ctx, jobID)
		if err != nil {
			return err
		}
		if err := statemachine.Transition(job.Status, to); err != nil {
			return fmt.Errorf("service: job %s: %w", jobID, err)
		}

		from = job.Status
		updated, err = s.leaveStatus(ctx, job, to, actorAdmin)
		if err != nil {
			return fmt.Errorf("service: failed to move job %s to %s: %w", jobID, to, err)
		}
		return nil
	})
	if err != nil {
		return models.Job{}, err
	}

	utils.Info("job status changed", map[string]any{"job_id": jobID, "from": from, "to": to})
	s.publishStatusChange(updated, from)
	return updated, nil
}

// leaveStatus stores job in status to. Leaving bidding freezes the window and
// rejects the pending bids of the round.
func (s *AuctionService) leaveStatus(ctx context.Context, job models.Job, to models.JobStatus, actor string) (models.Job, error) {
	now := s.clock.Now()
	from := job.Status
	job.Status = to
	job.UpdatedAt = now
	entry := s.newAudit(job.JobID, "", models.AuditStatusChanged, actor, fmt.Sprintf("%s -> %s", from, to))

	if from != models.StatusBidding {
		return s.repo.UpdateJob(ctx, job, entry)
	}

	job.BiddingEndTime = nil
	if job.Window != nil {
		job.Window.ClosedAt = &now
	}
	return s.repo.CloseAuction(ctx, job, "", entry)
}

// GetAuditTrail returns the append-only mutation history of a job
func (s *AuctionService) GetAuditTrail(ctx context.Context, jobID string) ([]models.AuditEntry, error) {
	if jobID == "" {
		return nil, fmt.Errorf("service: %w - empty job ID", auctionerrors.ErrInvalidInput)
	}
	entries, err := s.repo.GetAuditTrail(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get audit trail for job %s: %w", jobID, err)
	}
	return entries, nil
}

// GetJobsByProvider returns all jobs a provider has bid on
func (s *AuctionService) GetJobsByProvider(ctx context.Context, providerID string) ([]models.Job, error) {
	if providerID == "" {
		return nil, fmt.Errorf("service: %w - empty provider ID", auctionerrors.ErrInvalidInput)
	}
	jobs, err := s.repo.GetJobsByProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get jobs for provider %s: %w", providerID, err)
	}
	for i, job := range jobs {
		if !s.isDue(job) {
			continue
		}
		if jobs[i], err = s.freshJob(ctx, job.JobID); err != nil {
			return nil, err
		}
	}
	return jobs, nil
}
