package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auction "job-auction/internal/auctionService"
	"job-auction/internal/events"
	model "job-auction/internal/models"
	"job-auction/internal/server"
	"job-auction/utils"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func ServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the auction expiry sweeper",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	repo, release, err := a.openRepository()
	if err != nil {
		return err
	}
	defer release()

	broker := events.NewBroker()
	svc := a.newService(repo, broker)

	if a.cfg.SeedDemo {
		if err := seedDemoJobs(ctx, svc); err != nil {
			return err
		}
	}

	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		svc.RunSweeper(ctx, a.cfg.SweepInterval)
	}()

	// no write timeout: event streams stay open until the client or the server leaves
	httpServer := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           server.SetupRouter(svc, broker),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	utils.Info("auction server started", map[string]any{
		"addr":    a.cfg.Addr(),
		"storage": a.cfg.Driver,
	})

	select {
	case <-ctx.Done():
		utils.Info("shutdown signal received", nil)
	case err := <-serveErr:
		if err != nil {
			utils.Error("http server error", map[string]any{"error": err.Error()})
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	utils.Info("shutting down http server", nil)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		utils.Warn("http server shutdown incomplete", map[string]any{"error": err.Error()})
	}

	<-sweeperDone
	utils.Info("exiting", nil)
	return nil
}

// seedDemoJobs adds sample jobs covering the instant, draft and open auction paths
func seedDemoJobs(ctx context.Context, svc *auction.AuctionService) error {
	demo := []auction.NewJob{
		{RequestType: model.RequestInstant, BasePrice: 25000, PickupAddress: "12 Harbour Rd", DeliveryAddress: "4 Mill Lane"},
		{RequestType: model.RequestAuction, BasePrice: 38000, PickupAddress: "7 Station St", DeliveryAddress: "90 Park Ave"},
		{RequestType: model.RequestAuction, BasePrice: 52000, PickupAddress: "1 Dock Yard", DeliveryAddress: "33 High St"},
	}

	for i, in := range demo {
		job, err := svc.CreateJob(ctx, in)
		if err != nil {
			return err
		}
		// leave the first auction in draft so both auction states are visible
		if in.RequestType == model.RequestAuction && i == len(demo)-1 {
			if job, err = svc.MakeBiddable(ctx, job.JobID, 24, nil); err != nil {
				return err
			}
		}
		utils.Info("seeded demo job", map[string]any{
			"job_id":          job.JobID,
			"tracking_number": job.TrackingNumber,
			"status":          job.Status,
		})
	}
	return nil
}
