package models

import "time"

// RequestType tells how a job finds its provider
type RequestType string

const (
	RequestInstant RequestType = "instant"
	RequestAuction RequestType = "auction"
	RequestJourney RequestType = "journey"
)

func ValidRequestType(t RequestType) bool {
	switch t {
	case RequestInstant, RequestAuction, RequestJourney:
		return true
	default:
		return false
	}
}

// JobStatus is a state of the auction state machine
type JobStatus string

const (
	StatusDraft          JobStatus = "draft"
	StatusInstantPending JobStatus = "instant_pending"
	StatusBidding        JobStatus = "bidding"
	StatusAwarded        JobStatus = "awarded"
	StatusExpiredNoBids  JobStatus = "expired_no_bids"
	StatusAssigned       JobStatus = "assigned"
	StatusInTransit      JobStatus = "in_transit"
	StatusCompleted      JobStatus = "completed"
	StatusCancelled      JobStatus = "cancelled"
)

func ValidJobStatus(s JobStatus) bool {
	switch s {
	case StatusDraft, StatusInstantPending, StatusBidding, StatusAwarded, StatusExpiredNoBids,
		StatusAssigned, StatusInTransit, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// BidStatus is the lifecycle state of a single bid
type BidStatus string

const (
	BidPending   BidStatus = "pending"
	BidAccepted  BidStatus = "accepted"
	BidRejected  BidStatus = "rejected"
	BidWithdrawn BidStatus = "withdrawn"
)

// AuctionWindow is the bidding period of one auction round.
// It is frozen once the job leaves bidding.
type AuctionWindow struct {
	StartTime  time.Time  `json:"start_time"`
	EndTime    time.Time  `json:"end_time"`
	MinimumBid *int64     `json:"minimum_bid,omitempty"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
}

// Job represents a moving/waste job that can be assigned directly or auctioned.
// Amounts are in currency minor units.
type Job struct {
	JobID              string         `json:"job_id"`
	TrackingNumber     string         `json:"tracking_number"`
	RequestType        RequestType    `json:"request_type"`
	Status             JobStatus      `json:"status"`
	BasePrice          int64          `json:"base_price"`
	PickupAddress      string         `json:"pickup_address,omitempty"`
	DeliveryAddress    string         `json:"delivery_address,omitempty"`
	BiddingEndTime     *time.Time     `json:"bidding_end_time"`
	Window             *AuctionWindow `json:"window,omitempty"`
	AuctionRound       int            `json:"auction_round"`
	AssignedProviderID string         `json:"assigned_provider_id,omitempty"`
	WinningBidID       string         `json:"winning_bid_id,omitempty"`
	Version            int            `json:"version"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Bid represents a provider's price offer on a job
type Bid struct {
	BidID      string    `json:"bid_id"`
	JobID      string    `json:"job_id"`
	ProviderID string    `json:"provider_id"`
	Amount     int64     `json:"amount"`
	Message    string    `json:"message,omitempty"`
	Status     BidStatus `json:"status"`
	Round      int       `json:"round"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RankedBid is a bid together with its computed position, 1 being the lowest price
type RankedBid struct {
	Bid
	Rank int `json:"rank"`
}

type AuditAction string

const (
	AuditJobCreated    AuditAction = "job_created"
	AuditStatusChanged AuditAction = "status_changed"
	AuditBidSubmitted  AuditAction = "bid_submitted"
	AuditBidRevised    AuditAction = "bid_revised"
	AuditBidWithdrawn  AuditAction = "bid_withdrawn"
	AuditAuctionClosed AuditAction = "auction_closed"
)

// AuditEntry is one append-only record of a mutation
type AuditEntry struct {
	EntryID   string      `json:"entry_id"`
	JobID     string      `json:"job_id"`
	BidID     string      `json:"bid_id,omitempty"`
	Action    AuditAction `json:"action"`
	Actor     string      `json:"actor,omitempty"`
	Detail    string      `json:"detail,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// AuctionSummary is the read-side projection consumed by bidding pages
type AuctionSummary struct {
	JobID            string        `json:"job_id"`
	Status           JobStatus     `json:"status"`
	TotalBids        int           `json:"total_bids"`
	CurrentLowestBid *int64        `json:"current_lowest_bid"`
	TimeRemaining    time.Duration `json:"time_remaining"`
	EndTime          *time.Time    `json:"end_time"`
	UserBid          *RankedBid    `json:"user_bid,omitempty"`
}

// AwardResult is the outcome of resolving an auction round
type AwardResult struct {
	JobID      string    `json:"job_id"`
	Status     JobStatus `json:"status"`
	WinningBid *Bid      `json:"winning_bid,omitempty"`
}
