package helpers

import (
	"time"

	model "job-auction/internal/models"

	"github.com/shopspring/decimal"
)

// ProviderHeader carries the calling provider's identity on bid endpoints
const ProviderHeader = "X-Provider-ID"

// Request DTOs. Amounts are integers in currency minor units.
type CreateJobRequest struct {
	TrackingNumber  string `json:"tracking_number"`
	RequestType     string `json:"request_type" binding:"required,oneof=instant auction journey"`
	BasePrice       int64  `json:"base_price" binding:"required,gt=0"`
	PickupAddress   string `json:"pickup_address"`
	DeliveryAddress string `json:"delivery_address"`
}

type MakeBiddableRequest struct {
	DurationHours int    `json:"duration_hours" binding:"required"`
	MinimumBid    *int64 `json:"minimum_bid"`
}

// SubmitBidRequest leaves amount range checks to the service so that
// a non-positive amount is reported as an invalid amount, not a malformed payload.
type SubmitBidRequest struct {
	Amount  *int64 `json:"amount" binding:"required"`
	Message string `json:"message"`
}

type AssignRequest struct {
	ProviderID string `json:"provider_id"`
}

// Response DTOs
type WindowResponse struct {
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	MinimumBid *int64  `json:"minimum_bid,omitempty"`
	ClosedAt   *string `json:"closed_at,omitempty"`
}

type JobResponse struct {
	JobID              string          `json:"job_id"`
	TrackingNumber     string          `json:"tracking_number"`
	RequestType        string          `json:"request_type"`
	Status             string          `json:"status"`
	BasePrice          int64           `json:"base_price"`
	BasePriceDisplay   string          `json:"base_price_display"`
	PickupAddress      string          `json:"pickup_address,omitempty"`
	DeliveryAddress    string          `json:"delivery_address,omitempty"`
	BiddingEndTime     *string         `json:"bidding_end_time"`
	Window             *WindowResponse `json:"window,omitempty"`
	AuctionRound       int             `json:"auction_round"`
	AssignedProviderID string          `json:"assigned_provider_id,omitempty"`
	WinningBidID       string          `json:"winning_bid_id,omitempty"`
	Version            int             `json:"version"`
	CreatedAt          string          `json:"created_at"`
	UpdatedAt          string          `json:"updated_at"`
}

type BidResponse struct {
	BidID         string `json:"bid_id"`
	JobID         string `json:"job_id"`
	ProviderID    string `json:"provider_id"`
	Amount        int64  `json:"amount"`
	AmountDisplay string `json:"amount_display"`
	Message       string `json:"message,omitempty"`
	Status        string `json:"status"`
	Round         int    `json:"round"`
	Rank          int    `json:"rank,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type AuctionSummaryResponse struct {
	JobID                   string       `json:"job_id"`
	Status                  string       `json:"status"`
	TotalBids               int          `json:"total_bids"`
	CurrentLowestBid        *int64       `json:"current_lowest_bid"`
	CurrentLowestBidDisplay *string      `json:"current_lowest_bid_display"`
	TimeRemainingSeconds    int64        `json:"time_remaining_seconds"`
	EndTime                 *string      `json:"end_time"`
	UserBid                 *BidResponse `json:"user_bid,omitempty"`
}

type AwardResponse struct {
	JobID      string       `json:"job_id"`
	Status     string       `json:"status"`
	WinningBid *BidResponse `json:"winning_bid"`
}

// FormatMinor renders minor units as a fixed two-decimal amount, e.g. 34050 -> "340.50"
func FormatMinor(amount int64) string {
	return decimal.New(amount, -2).StringFixed(2)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func NewJobResponse(job model.Job) JobResponse {
	resp := JobResponse{
		JobID:              job.JobID,
		TrackingNumber:     job.TrackingNumber,
		RequestType:        string(job.RequestType),
		Status:             string(job.Status),
		BasePrice:          job.BasePrice,
		BasePriceDisplay:   FormatMinor(job.BasePrice),
		PickupAddress:      job.PickupAddress,
		DeliveryAddress:    job.DeliveryAddress,
		BiddingEndTime:     formatTimePtr(job.BiddingEndTime),
		AuctionRound:       job.AuctionRound,
		AssignedProviderID: job.AssignedProviderID,
		WinningBidID:       job.WinningBidID,
		Version:            job.Version,
		CreatedAt:          formatTime(job.CreatedAt),
		UpdatedAt:          formatTime(job.UpdatedAt),
	}
	if w := job.Window; w != nil {
		resp.Window = &WindowResponse{
			StartTime:  formatTime(w.StartTime),
			EndTime:    formatTime(w.EndTime),
			MinimumBid: w.MinimumBid,
			ClosedAt:   formatTimePtr(w.ClosedAt),
		}
	}
	return resp
}

func NewJobResponses(jobs []model.Job) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, NewJobResponse(job))
	}
	return out
}

// NewBidResponse converts a bid; rank 0 is omitted from the payload
func NewBidResponse(bid model.Bid, rank int) BidResponse {
	return BidResponse{
		BidID:         bid.BidID,
		JobID:         bid.JobID,
		ProviderID:    bid.ProviderID,
		Amount:        bid.Amount,
		AmountDisplay: FormatMinor(bid.Amount),
		Message:       bid.Message,
		Status:        string(bid.Status),
		Round:         bid.Round,
		Rank:          rank,
		CreatedAt:     formatTime(bid.CreatedAt),
		UpdatedAt:     formatTime(bid.UpdatedAt),
	}
}

func NewRankedBidResponses(bids []model.RankedBid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, NewBidResponse(b.Bid, b.Rank))
	}
	return out
}

func NewAuctionSummaryResponse(s model.AuctionSummary) AuctionSummaryResponse {
	resp := AuctionSummaryResponse{
		JobID:                s.JobID,
		Status:               string(s.Status),
		TotalBids:            s.TotalBids,
		CurrentLowestBid:     s.CurrentLowestBid,
		TimeRemainingSeconds: int64(s.TimeRemaining / time.Second),
		EndTime:              formatTimePtr(s.EndTime),
	}
	if s.CurrentLowestBid != nil {
		display := FormatMinor(*s.CurrentLowestBid)
		resp.CurrentLowestBidDisplay = &display
	}
	if s.UserBid != nil {
		own := NewBidResponse(s.UserBid.Bid, s.UserBid.Rank)
		resp.UserBid = &own
	}
	return resp
}

func NewAwardResponse(r model.AwardResult) AwardResponse {
	resp := AwardResponse{JobID: r.JobID, Status: string(r.Status)}
	if r.WinningBid != nil {
		winner := NewBidResponse(*r.WinningBid, 1)
		resp.WinningBid = &winner
	}
	return resp
}
