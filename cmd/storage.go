package cmd

import (
	"fmt"

	auction "job-auction/internal/auctionService"
	"job-auction/internal/config"
	"job-auction/internal/events"
	"job-auction/internal/repository"
	"job-auction/utils"

	"github.com/jmoiron/sqlx"
)

// openRepository returns the configured store and a func that releases it
func (a *app) openRepository() (repository.AuctionDB, func(), error) {
	if a.cfg.Driver == config.StorageMemory {
		utils.Info("using in-memory storage", nil)
		return repository.NewMemoryRepo(), func() {}, nil
	}

	db, err := a.openDB()
	if err != nil {
		return nil, nil, err
	}
	if a.cfg.AutoMigrate {
		if err := repository.MigrateUp(db.DB, a.cfg.Driver); err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	repo := repository.NewSQLRepo(db)
	release := func() {
		utils.Info("closing repository", nil)
		if err := repo.Close(); err != nil {
			utils.Error("repository closing error", map[string]any{"error": err.Error()})
		}
	}
	return repo, release, nil
}

func (a *app) openDB() (*sqlx.DB, error) {
	if a.cfg.Driver == config.StorageMemory {
		return nil, fmt.Errorf("storage driver %q has no database, use --storage postgres or sqlite3", a.cfg.Driver)
	}
	db, err := repository.OpenSQL(a.cfg.Driver, a.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	utils.Info("connected to database", map[string]any{"driver": a.cfg.Driver})
	return db, nil
}

func (a *app) newService(repo repository.AuctionDB, publisher events.Publisher) *auction.AuctionService {
	return auction.NewAuctionService(repo,
		auction.WithPublisher(publisher),
		auction.WithConflictRetries(a.cfg.ConflictRetries),
		auction.WithConflictBackoff(a.cfg.ConflictBackoff),
		auction.WithMaxMessageLength(a.cfg.MaxBidMessageLength),
		auction.WithMaxAuctionHours(a.cfg.MaxAuctionHours),
	)
}
