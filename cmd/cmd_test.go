package cmd

import (
	"context"
	"testing"

	auction "job-auction/internal/auctionService"
	"job-auction/internal/config"
	"job-auction/internal/events"
	model "job-auction/internal/models"
	"job-auction/internal/repository"

	"github.com/stretchr/testify/require"
)

func TestRootCmd_SweepOnSQLite(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"sweep", "--storage", "sqlite3", "--database-url", "file::memory:", "--log-level", "warn"})
	require.NoError(t, root.Execute())
}

func TestRootCmd_SweepOnMemory(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"sweep", "--storage", "memory"})
	require.NoError(t, root.Execute())
}

func TestRootCmd_MigrateNeedsDatabase(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"migrate", "up", "--storage", "memory"})
	require.Error(t, root.Execute())
}

func TestRootCmd_RejectsInvalidFlags(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"sweep", "--storage", "postgres"})
	err := root.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "DATABASE_URL")
}

func TestSeedDemoJobs(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	svc := auction.NewAuctionService(repo)
	require.NoError(t, seedDemoJobs(context.Background(), svc))

	jobs, err := svc.ListJobs(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	counts := map[model.JobStatus]int{}
	for _, job := range jobs {
		counts[job.Status]++
	}
	require.Equal(t, map[model.JobStatus]int{
		model.StatusInstantPending: 1,
		model.StatusDraft:          1,
		model.StatusBidding:        1,
	}, counts)
}

func TestApp_NewServiceUsesConfig(t *testing.T) {
	t.Parallel()

	cfg, err := config.NewConfig(func(c *config.Config) {
		c.Driver = config.StorageMemory
		c.MaxAuctionHours = 2
	})
	require.NoError(t, err)
	a := &app{cfg: cfg}

	repo, release, err := a.openRepository()
	require.NoError(t, err)
	defer release()

	svc := a.newService(repo, events.Nop{})
	job, err := svc.CreateJob(context.Background(), auction.NewJob{RequestType: model.RequestAuction, BasePrice: 100})
	require.NoError(t, err)
	_, err = svc.MakeBiddable(context.Background(), job.JobID, 3, nil)
	require.Error(t, err)
}
