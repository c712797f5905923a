package statemachine

import (
	"fmt"

	"job-auction/internal/auctionerrors"
	"job-auction/internal/models"
)

// transitions lists every allowed edge of the job state machine
var transitions = map[models.JobStatus][]models.JobStatus{
	models.StatusDraft:          {models.StatusInstantPending, models.StatusBidding, models.StatusCancelled},
	models.StatusInstantPending: {models.StatusBidding, models.StatusAssigned, models.StatusCancelled},
	models.StatusBidding:        {models.StatusInstantPending, models.StatusAwarded, models.StatusExpiredNoBids, models.StatusCancelled},
	models.StatusAwarded:        {models.StatusAssigned, models.StatusCancelled},
	models.StatusExpiredNoBids:  {models.StatusInstantPending, models.StatusCancelled},
	models.StatusAssigned:       {models.StatusInTransit, models.StatusCancelled},
	models.StatusInTransit:      {models.StatusCompleted, models.StatusCancelled},
	models.StatusCompleted:      {},
	models.StatusCancelled:      {},
}

// conversionLocked are statuses in which the admin can no longer switch between
// instant and auction modes.
var conversionLocked = map[models.JobStatus]bool{
	models.StatusAwarded:   true,
	models.StatusAssigned:  true,
	models.StatusInTransit: true,
	models.StatusCompleted: true,
	models.StatusCancelled: true,
}

// CanTransition reports whether from -> to is an edge of the state machine
func CanTransition(from, to models.JobStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates from -> to and returns ErrInvalidTransition when it is not allowed
func Transition(from, to models.JobStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("statemachine: %w - %s -> %s", auctionerrors.ErrInvalidTransition, from, to)
	}
	return nil
}

// CanBeMadeBiddable is the guard of the make_biddable admin action
func CanBeMadeBiddable(job models.Job) error {
	if conversionLocked[job.Status] {
		return fmt.Errorf("statemachine: %w - job %s is %s", auctionerrors.ErrInvalidTransition, job.JobID, job.Status)
	}
	if job.Status == models.StatusBidding {
		return fmt.Errorf("statemachine: %w - job %s is already biddable", auctionerrors.ErrInvalidTransition, job.JobID)
	}
	return Transition(job.Status, models.StatusBidding)
}

// CanBeMadeInstant is the guard of the make_instant admin action
func CanBeMadeInstant(job models.Job) error {
	if conversionLocked[job.Status] {
		return fmt.Errorf("statemachine: %w - job %s is %s", auctionerrors.ErrInvalidTransition, job.JobID, job.Status)
	}
	if job.RequestType == models.RequestInstant {
		return fmt.Errorf("statemachine: %w - job %s is already instant", auctionerrors.ErrInvalidTransition, job.JobID)
	}
	return Transition(job.Status, models.StatusInstantPending)
}

// CanBeAssigned is the guard of direct provider assignment
func CanBeAssigned(job models.Job) error {
	return Transition(job.Status, models.StatusAssigned)
}

// CanBeCancelled allows cancellation from every non-terminal status
func CanBeCancelled(job models.Job) error {
	return Transition(job.Status, models.StatusCancelled)
}

// IsTerminal reports whether no transition leaves status
func IsTerminal(status models.JobStatus) bool {
	return len(transitions[status]) == 0
}

// AcceptsBids reports whether bids may be placed or withdrawn in status
func AcceptsBids(status models.JobStatus) bool {
	return status == models.StatusBidding
}

// IsAuctionClosed reports whether status is the outcome of an elapsed bidding window
func IsAuctionClosed(status models.JobStatus) bool {
	return status == models.StatusAwarded || status == models.StatusExpiredNoBids
}
