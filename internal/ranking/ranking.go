package ranking

import (
	"iter"
	"sort"

	"job-auction/internal/models"
)

// Less is the total order of bids within a job: lowest amount first,
// then earliest submission, then lowest bid ID.
func Less(a, b models.Bid) bool {
	if a.Amount != b.Amount {
		return a.Amount < b.Amount
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.BidID < b.BidID
}

// SortBids returns a sorted copy of bids
func SortBids(bids []models.Bid) []models.Bid {
	sorted := append([]models.Bid(nil), bids...)
	sort.Slice(sorted, func(i, j int) bool {
		return Less(sorted[i], sorted[j])
	})
	return sorted
}

// Competing returns the bids that still take part in the auction (pending or already decided)
func Competing(bids []models.Bid) []models.Bid {
	out := make([]models.Bid, 0, len(bids))
	for _, b := range bids {
		if b.Status != models.BidWithdrawn {
			out = append(out, b)
		}
	}
	return out
}

// Pending returns the bids still awaiting a decision
func Pending(bids []models.Bid) []models.Bid {
	out := make([]models.Bid, 0, len(bids))
	for _, b := range bids {
		if b.Status == models.BidPending {
			out = append(out, b)
		}
	}
	return out
}

// Lowest selects the winning bid among pending bids. ok is false when there are none.
func Lowest(bids []models.Bid) (winner models.Bid, ok bool) {
	for _, b := range bids {
		if b.Status != models.BidPending {
			continue
		}
		if !ok || Less(b, winner) {
			winner = b
			ok = true
		}
	}
	return winner, ok
}

// Rank returns the 1-based position of bidID among competing bids, 0 if absent
func Rank(bids []models.Bid, bidID string) int {
	for i, b := range SortBids(Competing(bids)) {
		if b.BidID == bidID {
			return i + 1
		}
	}
	return 0
}

// Ranked sorts bids and numbers the competing ones; withdrawn bids get rank 0
func Ranked(bids []models.Bid) []models.RankedBid {
	sorted := SortBids(bids)
	out := make([]models.RankedBid, 0, len(sorted))
	rank := 0
	for _, b := range sorted {
		r := 0
		if b.Status != models.BidWithdrawn {
			rank++
			r = rank
		}
		out = append(out, models.RankedBid{Bid: b, Rank: r})
	}
	return out
}

// Seq yields the bids produced by load in ranking order.
// load runs on every iteration, so the sequence can be ranged over again for fresh data.
func Seq(load func() ([]models.Bid, error)) iter.Seq2[models.Bid, error] {
	return func(yield func(models.Bid, error) bool) {
		bids, err := load()
		if err != nil {
			yield(models.Bid{}, err)
			return
		}
		for _, b := range SortBids(bids) {
			if !yield(b, nil) {
				return
			}
		}
	}
}
