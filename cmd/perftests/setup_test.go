package perftests

import (
	"context"
	"fmt"
	"testing"

	auction "job-auction/internal/auctionService"
	model "job-auction/internal/models"
	"job-auction/internal/repository"
	"job-auction/utils"
)

func init() {
	// benchmarks would otherwise be dominated by request logging
	if err := utils.SetLevel("error"); err != nil {
		panic(err)
	}
}

// setupAuctions creates a service over the memory repo with numJobs open auctions
func setupAuctions(tb testing.TB, numJobs int) (*auction.AuctionService, []string) {
	tb.Helper()
	svc := auction.NewAuctionService(repository.NewMemoryRepo())
	ctx := context.Background()

	jobIDs := make([]string, 0, numJobs)
	for i := 0; i < numJobs; i++ {
		job, err := svc.CreateJob(ctx, auction.NewJob{
			TrackingNumber: fmt.Sprintf("PERF-%d", i),
			RequestType:    model.RequestAuction,
			BasePrice:      100000,
		})
		if err != nil {
			tb.Fatalf("failed to create job: %v", err)
		}
		if _, err := svc.MakeBiddable(ctx, job.JobID, auction.DefaultMaxAuctionHours, nil); err != nil {
			tb.Fatalf("failed to open bidding: %v", err)
		}
		jobIDs = append(jobIDs, job.JobID)
	}
	return svc, jobIDs
}
