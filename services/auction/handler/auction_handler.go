package handler

import (
	"context"
	"io"
	"net/http"

	auction "job-auction/internal/auctionService"
	"job-auction/internal/events"
	model "job-auction/internal/models"
	"job-auction/services/auction/helpers"
	"job-auction/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -source=auction_handler.go -destination=mock_auction_service.go -package=handler

type AuctionServiceInterface interface {
	CreateJob(ctx context.Context, in auction.NewJob) (model.Job, error)
	GetJob(ctx context.Context, jobID string) (model.Job, error)
	ListJobs(ctx context.Context, status model.JobStatus) ([]model.Job, error)
	MakeBiddable(ctx context.Context, jobID string, durationHours int, minimumBid *int64) (model.Job, error)
	MakeInstant(ctx context.Context, jobID string) (model.Job, error)
	AssignProvider(ctx context.Context, jobID, providerID string) (model.Job, error)
	MarkInTransit(ctx context.Context, jobID string) (model.Job, error)
	MarkCompleted(ctx context.Context, jobID string) (model.Job, error)
	CancelJob(ctx context.Context, jobID string) (model.Job, error)
	SubmitBid(ctx context.Context, jobID, providerID string, amount int64, message string) (model.RankedBid, error)
	WithdrawBid(ctx context.Context, jobID, providerID string) (model.Bid, error)
	ListBids(ctx context.Context, jobID string) ([]model.RankedBid, error)
	GetAuctionSummary(ctx context.Context, jobID, providerID string) (model.AuctionSummary, error)
	ResolveAuction(ctx context.Context, jobID string) (model.AwardResult, error)
	GetAuditTrail(ctx context.Context, jobID string) ([]model.AuditEntry, error)
	GetJobsByProvider(ctx context.Context, providerID string) ([]model.Job, error)
}

// EventSubscriber is the part of the event broker the stream endpoint needs
type EventSubscriber interface {
	Subscribe(jobID string) (<-chan events.Event, func())
}

type AuctionHandler struct {
	service AuctionServiceInterface
	events  EventSubscriber
}

func NewAuctionHandler(service AuctionServiceInterface, subscriber EventSubscriber) *AuctionHandler {
	return &AuctionHandler{service: service, events: subscriber}
}

// CreateJobHandler handles POST /jobs
func (h *AuctionHandler) CreateJobHandler(c *gin.Context) {
	var req helpers.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateJobHandler", err)
		return
	}

	job, err := h.service.CreateJob(c.Request.Context(), auction.NewJob{
		TrackingNumber:  req.TrackingNumber,
		RequestType:     model.RequestType(req.RequestType),
		BasePrice:       req.BasePrice,
		PickupAddress:   req.PickupAddress,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		helpers.HandleServiceError(c, "CreateJobHandler", err, map[string]any{"request_type": req.RequestType})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewJobResponse(job), "job created successfully")
	helpers.LogSuccess("CreateJobHandler", "job created successfully", map[string]any{
		"job_id": job.JobID,
		"status": job.Status,
	})
}

// ListJobsHandler handles GET /jobs?status=
func (h *AuctionHandler) ListJobsHandler(c *gin.Context) {
	status := c.Query("status")
	jobs, err := h.service.ListJobs(c.Request.Context(), model.JobStatus(status))
	if err != nil {
		helpers.HandleServiceError(c, "ListJobsHandler", err, map[string]any{"status": status})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewJobResponses(jobs), "jobs retrieved successfully")
	helpers.LogSuccess("ListJobsHandler", "jobs retrieved successfully", map[string]any{
		"status": status,
		"count":  len(jobs),
	})
}

// GetJobHandler handles GET /jobs/:job_id
func (h *AuctionHandler) GetJobHandler(c *gin.Context) {
	jobID := c.Param("job_id")
	job, err := h.service.GetJob(c.Request.Context(), jobID)
	if err != nil {
		helpers.HandleServiceError(c, "GetJobHandler", err, map[string]any{"job_id": jobID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, helpers.NewJobResponse(job), "job retrieved successfully")
}

// MakeBiddableHandler handles POST /jobs/:job_id/make_biddable
func (h *AuctionHandler) MakeBiddableHandler(c *gin.Context) {
	jobID := c.Param("job_id")
	var req helpers.MakeBiddableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "MakeBiddableHandler", err)
		return
	}

	job, err := h.service.MakeBiddable(c.Request.Context(), jobID, req.DurationHours, req.MinimumBid)
	if err != nil {
		helpers.HandleServiceError(c, "MakeBiddableHandler", err, map[string]any{
			"job_id":         jobID,
			"duration_hours": req.DurationHours,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewJobResponse(job), "job is open for bidding")
	helpers.LogSuccess("MakeBiddableHandler", "job is open for bidding", map[string]any{
		"job_id": jobID,
		"round":  job.AuctionRound,
	})
}

// MakeInstantHandler handles POST /jobs/:job_id/make_instant
func (h *AuctionHandler) MakeInstantHandler(c *gin.Context) {
	h.transition(c, "MakeInstantHandler", "job converted to instant", h.service.MakeInstant)
}

// AssignHandler handles POST /jobs/:job_id/assign
func (h *AuctionHandler) AssignHandler(c *gin.Context) {
	jobID := c.Param("job_id")
	var req helpers.AssignRequest
	// the body is optional for awarded jobs
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			helpers.HandleBindError(c, "AssignHandler", err)
			return
		}
	}

	job, err := h.service.AssignProvider(c.Request.Context(), jobID, req.ProviderID)
	if err != nil {
		helpers.HandleServiceError(c, "AssignHandler", err, map[string]any{
			"job_id":      jobID,
			"provider_id": req.ProviderID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewJobResponse(job), "job assigned")
	helpers.LogSuccess("AssignHandler", "job assigned", map[string]any{
		"job_id":      jobID,
		"provider_id": job.AssignedProviderID,
	})
}

// InTransitHandler handles POST /jobs/:job_id/in_transit
func (h *AuctionHandler) InTransitHandler(c *gin.Context) {
	h.transition(c, "InTransitHandler", "job in transit", h.service.MarkInTransit)
}

// CompleteHandler handles POST /jobs/:job_id/complete
func (h *AuctionHandler) CompleteHandler(c *gin.Context) {
	h.transition(c, "CompleteHandler", "job completed", h.service.MarkCompleted)
}

// CancelHandler handles POST /jobs/:job_id/cancel
func (h *AuctionHandler) CancelHandler(c *gin.Context) {
	h.transition(c, "CancelHandler", "job cancelled", h.service.CancelJob)
}

func (h *AuctionHandler) transition(c *gin.Context, handlerName, message string, apply func(context.Context, string) (model.Job, error)) {
	jobID := c.Param("job_id")
	job, err := apply(c.Request.Context(), jobID)
	if err != nil {
		helpers.HandleServiceError(c, handlerName, err, map[string]any{"job_id": jobID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewJobResponse(job), message)
	helpers.LogSuccess(handlerName, message, map[string]any{
		"job_id": jobID,
		"status": job.Status,
	})
}

// SubmitBidHandler handles POST /jobs/:job_id/bids
func (h *AuctionHandler) SubmitBidHandler(c *gin.Context) {
	jobID := c.Param("job_id")
	providerID, ok := helpers.ProviderID(c, "SubmitBidHandler")
	if !ok {
		return
	}
	var req helpers.SubmitBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SubmitBidHandler", err)
		return
	}

	bid, err := h.service.SubmitBid(c.Request.Context(), jobID, providerID, *req.Amount, req.Message)
	if err != nil {
		helpers.HandleServiceError(c, "SubmitBidHandler", err, map[string]any{
			"job_id":      jobID,
			"provider_id": providerID,
			"amount":      *req.Amount,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid.Bid, bid.Rank), "bid recorded successfully")
	helpers.LogSuccess("SubmitBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":      bid.BidID,
		"job_id":      jobID,
		"provider_id": providerID,
		"amount":      bid.Amount,
		"rank":        bid.Rank,
	})
}

// WithdrawBidHandler handles DELETE /jobs/:job_id/bids/mine
func (h *AuctionHandler) WithdrawBidHandler(c *gin.Context) {
	jobID := c.Param("job_id")
	providerID, ok := helpers.ProviderID(c, "WithdrawBidHandler")
	if !ok {
		return
	}

	bid, err := h.service.WithdrawBid(c.Request.Context(), jobID, providerID)
	if err != nil {
		helpers.HandleServiceError(c, "WithdrawBidHandler", err, map[string]any{
			"job_id":      jobID,
			"provider_id": providerID,
		})
		return
	}

	c.Status(http.StatusNoContent)
	helpers.LogSuccess("WithdrawBidHandler", "bid withdrawn", map[string]any{
		"bid_id":      bid.BidID,
		"job_id":      jobID,
		"provider_id": providerID,
	})
}

// ListBidsHandler handles GET /jobs/:job_id/bids
func (h *AuctionHandler) ListBidsHandler(c *gin.Context) {
	jobID := c.Param("job_id")
	bids, err := h.service.ListBids(c.Request.Context(), jobID)
	if err != nil {
		helpers.HandleServiceError(c, "ListBidsHandler", err, map[string]any{"job_id": jobID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewRankedBidResponses(bids), "bids retrieved successfully")
	helpers.LogSuccess("ListBidsHandler", "bids retrieved successfully", map[string]any{
		"job_id": jobID,
		"count":  len(bids),
	})
}

// AuctionSummaryHandler handles GET /jobs/:job_id/auction-summary.
// The provider header is optional here and adds the caller's own bid.
func (h *AuctionHandler) AuctionSummaryHandler(c *gin.Context) {
	jobID := c.Param("job_id")
	providerID := c.GetHeader(helpers.ProviderHeader)

	summary, err := h.service.GetAuctionSummary(c.Request.Context(), jobID, providerID)
	if err != nil {
		helpers.HandleServiceError(c, "AuctionSummaryHandler", err, map[string]any{"job_id": jobID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, helpers.NewAuctionSummaryResponse(summary), "auction summary retrieved successfully")
}

// ResolveHandler handles POST /jobs/:job_id/resolve
func (h *AuctionHandler) ResolveHandler(c *gin.Context) {
	jobID := c.Param("job_id")
	result, err := h.service.ResolveAuction(c.Request.Context(), jobID)
	if err != nil {
		helpers.HandleServiceError(c, "ResolveHandler", err, map[string]any{"job_id": jobID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewAwardResponse(result), "auction resolved")
	helpers.LogSuccess("ResolveHandler", "auction resolved", map[string]any{
		"job_id": jobID,
		"status": result.Status,
	})
}

// AuditTrailHandler handles GET /jobs/:job_id/audit
func (h *AuctionHandler) AuditTrailHandler(c *gin.Context) {
	jobID := c.Param("job_id")
	entries, err := h.service.GetAuditTrail(c.Request.Context(), jobID)
	if err != nil {
		helpers.HandleServiceError(c, "AuditTrailHandler", err, map[string]any{"job_id": jobID})
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	utils.JSONResponse(c, http.StatusOK, entries, "audit trail retrieved successfully")
}

// ProviderJobsHandler handles GET /providers/:provider_id/jobs
func (h *AuctionHandler) ProviderJobsHandler(c *gin.Context) {
	providerID := c.Param("provider_id")
	jobs, err := h.service.GetJobsByProvider(c.Request.Context(), providerID)
	if err != nil {
		helpers.HandleServiceError(c, "ProviderJobsHandler", err, map[string]any{"provider_id": providerID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewJobResponses(jobs), "jobs retrieved successfully")
	helpers.LogSuccess("ProviderJobsHandler", "jobs retrieved successfully", map[string]any{
		"provider_id": providerID,
		"count":       len(jobs),
	})
}

// StreamEventsHandler handles GET /jobs/:job_id/events as a Server-Sent Events stream
func (h *AuctionHandler) StreamEventsHandler(c *gin.Context) {
	jobID := c.Param("job_id")
	ctx := c.Request.Context()
	if _, err := h.service.GetJob(ctx, jobID); err != nil {
		helpers.HandleServiceError(c, "StreamEventsHandler", err, map[string]any{"job_id": jobID})
		return
	}

	stream, cancel := h.events.Subscribe(jobID)
	defer cancel()
	helpers.LogSuccess("StreamEventsHandler", "event stream opened", map[string]any{"job_id": jobID})

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-stream:
			if !ok {
				return false
			}
			c.SSEvent(string(event.EventType), event)
			return true
		}
	})
}
