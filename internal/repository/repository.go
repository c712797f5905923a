package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"job-auction/internal/auctionerrors"
	model "job-auction/internal/models"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// AuctionDB defines the job and bid storage interface for the auction engine.
//
// Every mutation is conditional on the job version the caller read, so two writers
// racing on the same job cannot both commit; the loser gets ErrConflict.
type AuctionDB interface {
	CreateJob(ctx context.Context, job model.Job, entry model.AuditEntry) error
	GetJob(ctx context.Context, jobID string) (model.Job, error)
	ListJobs(ctx context.Context, status model.JobStatus) ([]model.Job, error)
	// UpdateJob stores job if its Version still matches and returns it with the bumped version
	UpdateJob(ctx context.Context, job model.Job, entry model.AuditEntry) (model.Job, error)
	// CloseAuction stores job and decides every pending bid of its current round:
	// winningBidID becomes accepted, the rest rejected. An empty winningBidID rejects all.
	CloseAuction(ctx context.Context, job model.Job, winningBidID string, entry model.AuditEntry) (model.Job, error)
	ListExpiredAuctions(ctx context.Context, now time.Time) ([]string, error)

	// SaveBid inserts or updates bid (matched by BidID) provided the job is still at jobVersion.
	// It bumps the job version, so a close decided on an older bid set conflicts.
	SaveBid(ctx context.Context, bid model.Bid, jobVersion int, entry model.AuditEntry) (model.Bid, error)
	GetBid(ctx context.Context, bidID string) (model.Bid, error)
	GetPendingBid(ctx context.Context, jobID, providerID string) (model.Bid, error)
	// GetBidsByJob returns the bids of one auction round, or of every round when round is 0
	GetBidsByJob(ctx context.Context, jobID string, round int) ([]model.Bid, error)
	GetJobsByProvider(ctx context.Context, providerID string) ([]model.Job, error)
	GetAuditTrail(ctx context.Context, jobID string) ([]model.AuditEntry, error)
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB
type MemoryRepo struct {
	mu           sync.RWMutex
	jobs         map[string]model.Job          // key: jobID -> value: job
	bids         map[string][]model.Bid        // key: jobID -> value: bids in submission order
	audit        map[string][]model.AuditEntry // key: jobID -> value: audit trail
	providerJobs map[string][]string           // key: providerID -> value: list of jobIDs provider has bid on
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		jobs:         make(map[string]model.Job),
		bids:         make(map[string][]model.Bid),
		audit:        make(map[string][]model.AuditEntry),
		providerJobs: make(map[string][]string),
	}
}

func (r *MemoryRepo) CreateJob(ctx context.Context, job model.Job, entry model.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job.JobID == "" {
		return fmt.Errorf("create job: %w - empty job ID", auctionerrors.ErrInvalidInput)
	}
	if _, ok := r.jobs[job.JobID]; ok {
		return fmt.Errorf("create job %s: %w - already exists", job.JobID, auctionerrors.ErrConflict)
	}
	if job.Version == 0 {
		job.Version = 1
	}
	r.jobs[job.JobID] = cloneJob(job)
	r.appendAudit(entry)
	return nil
}

func (r *MemoryRepo) GetJob(ctx context.Context, jobID string) (model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return model.Job{}, fmt.Errorf("get job %s: %w", jobID, auctionerrors.ErrNotFound)
	}
	return cloneJob(job), nil
}

// ListJobs returns jobs ordered by creation time, filtered by status unless it is empty
func (r *MemoryRepo) ListJobs(ctx context.Context, status model.JobStatus) ([]model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]model.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		if status != "" && job.Status != status {
			continue
		}
		jobs = append(jobs, cloneJob(job))
	}
	sortJobs(jobs)
	return jobs, nil
}

func (r *MemoryRepo) UpdateJob(ctx context.Context, job model.Job, entry model.AuditEntry) (model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkVersion(job.JobID, job.Version); err != nil {
		return model.Job{}, fmt.Errorf("update job: %w", err)
	}
	job.Version++
	r.jobs[job.JobID] = cloneJob(job)
	r.appendAudit(entry)
	return cloneJob(job), nil
}

func (r *MemoryRepo) CloseAuction(ctx context.Context, job model.Job, winningBidID string, entry model.AuditEntry) (model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkVersion(job.JobID, job.Version); err != nil {
		return model.Job{}, fmt.Errorf("close auction: %w", err)
	}

	bids := r.bids[job.JobID]
	if winningBidID != "" {
		found := false
		for _, b := range bids {
			if b.BidID == winningBidID && b.Status == model.BidPending && b.Round == job.AuctionRound {
				found = true
				break
			}
		}
		if !found {
			return model.Job{}, fmt.Errorf("close auction for job %s: %w - winning bid %s is no longer pending", job.JobID, auctionerrors.ErrConflict, winningBidID)
		}
	}

	for i := range bids {
		if bids[i].Round != job.AuctionRound || bids[i].Status != model.BidPending {
			continue
		}
		if bids[i].BidID == winningBidID {
			bids[i].Status = model.BidAccepted
		} else {
			bids[i].Status = model.BidRejected
		}
		bids[i].UpdatedAt = job.UpdatedAt
	}

	job.Version++
	r.jobs[job.JobID] = cloneJob(job)
	r.appendAudit(entry)
	return cloneJob(job), nil
}

// ListExpiredAuctions returns IDs of jobs still bidding whose window ended at or before now
func (r *MemoryRepo) ListExpiredAuctions(ctx context.Context, now time.Time) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var expired []model.Job
	for _, job := range r.jobs {
		if job.Status != model.StatusBidding || job.Window == nil {
			continue
		}
		if !now.Before(job.Window.EndTime) {
			expired = append(expired, job)
		}
	}
	sortJobs(expired)

	ids := make([]string, 0, len(expired))
	for _, job := range expired {
		ids = append(ids, job.JobID)
	}
	return ids, nil
}

func (r *MemoryRepo) SaveBid(ctx context.Context, bid model.Bid, jobVersion int, entry model.AuditEntry) (model.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkVersion(bid.JobID, jobVersion); err != nil {
		return model.Bid{}, fmt.Errorf("save bid: %w", err)
	}

	bids := r.bids[bid.JobID]
	for i := range bids {
		if bids[i].BidID == bid.BidID {
			bids[i].Amount = bid.Amount
			bids[i].Message = bid.Message
			bids[i].Status = bid.Status
			bids[i].UpdatedAt = bid.UpdatedAt
			r.bumpVersion(bid.JobID)
			r.appendAudit(entry)
			return bids[i], nil
		}
	}

	if bid.Status == model.BidPending {
		for _, b := range bids {
			if b.ProviderID == bid.ProviderID && b.Status == model.BidPending {
				return model.Bid{}, fmt.Errorf("save bid for job %s by provider %s: %w - pending bid already exists", bid.JobID, bid.ProviderID, auctionerrors.ErrConflict)
			}
		}
	}

	r.bids[bid.JobID] = append(bids, bid)
	r.bumpVersion(bid.JobID)
	r.appendAudit(entry)

	for _, id := range r.providerJobs[bid.ProviderID] {
		if id == bid.JobID {
			return bid, nil
		}
	}
	r.providerJobs[bid.ProviderID] = append(r.providerJobs[bid.ProviderID], bid.JobID)

	return bid, nil
}

func (r *MemoryRepo) GetBid(ctx context.Context, bidID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, bids := range r.bids {
		for _, b := range bids {
			if b.BidID == bidID {
				return b, nil
			}
		}
	}
	return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, auctionerrors.ErrNotFound)
}

func (r *MemoryRepo) GetPendingBid(ctx context.Context, jobID, providerID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bids[jobID] {
		if b.ProviderID == providerID && b.Status == model.BidPending {
			return b, nil
		}
	}
	return model.Bid{}, fmt.Errorf("get pending bid for job %s by provider %s: %w", jobID, providerID, auctionerrors.ErrNotFound)
}

func (r *MemoryRepo) GetBidsByJob(ctx context.Context, jobID string, round int) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.jobs[jobID]; !ok {
		return nil, fmt.Errorf("get bids for job %s: %w", jobID, auctionerrors.ErrNotFound)
	}

	bids := make([]model.Bid, 0, len(r.bids[jobID]))
	for _, b := range r.bids[jobID] {
		if round == 0 || b.Round == round {
			bids = append(bids, b)
		}
	}
	return bids, nil
}

// GetJobsByProvider returns all jobs a provider has bid on
func (r *MemoryRepo) GetJobsByProvider(ctx context.Context, providerID string) ([]model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobIDs := r.providerJobs[providerID]
	jobs := make([]model.Job, 0, len(jobIDs))
	for _, id := range jobIDs {
		if job, exists := r.jobs[id]; exists {
			jobs = append(jobs, cloneJob(job))
		}
	}
	return jobs, nil
}

func (r *MemoryRepo) GetAuditTrail(ctx context.Context, jobID string) ([]model.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.jobs[jobID]; !ok {
		return nil, fmt.Errorf("get audit trail for job %s: %w", jobID, auctionerrors.ErrNotFound)
	}
	return append([]model.AuditEntry(nil), r.audit[jobID]...), nil
}

// AddJob adds a job to the repository without an audit entry. This method is intended for tests and seeding only.
func (r *MemoryRepo) AddJob(job model.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.Version == 0 {
		job.Version = 1
	}
	r.jobs[job.JobID] = cloneJob(job)
}

// checkVersion must be called with r.mu held
func (r *MemoryRepo) checkVersion(jobID string, version int) error {
	stored, ok := r.jobs[jobID]
	if !ok {
		return fmt.Errorf("job %s: %w", jobID, auctionerrors.ErrNotFound)
	}
	if stored.Version != version {
		return fmt.Errorf("job %s at version %d, expected %d: %w", jobID, stored.Version, version, auctionerrors.ErrConflict)
	}
	return nil
}

// bumpVersion must be called with r.mu held
func (r *MemoryRepo) bumpVersion(jobID string) {
	job := r.jobs[jobID]
	job.Version++
	r.jobs[jobID] = job
}

// appendAudit must be called with r.mu held
func (r *MemoryRepo) appendAudit(entry model.AuditEntry) {
	if entry.JobID == "" {
		return
	}
	r.audit[entry.JobID] = append(r.audit[entry.JobID], entry)
}

// cloneJob deep copies pointer fields so callers never share state with the store
func cloneJob(job model.Job) model.Job {
	if job.BiddingEndTime != nil {
		end := *job.BiddingEndTime
		job.BiddingEndTime = &end
	}
	if job.Window != nil {
		w := *job.Window
		if w.MinimumBid != nil {
			floor := *w.MinimumBid
			w.MinimumBid = &floor
		}
		if w.ClosedAt != nil {
			closed := *w.ClosedAt
			w.ClosedAt = &closed
		}
		job.Window = &w
	}
	return job
}

func sortJobs(jobs []model.Job) {
	sort.Slice(jobs, func(i, j int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
		}
		return jobs[i].JobID < jobs[j].JobID
	})
}
