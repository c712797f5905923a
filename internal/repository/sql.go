package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"job-auction/internal/auctionerrors"
	model "job-auction/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

const jobColumns = `id, tracking_number, request_type, status, base_price, pickup_address, delivery_address,
	bidding_end_time, window_start, window_end, minimum_bid, window_closed_at, auction_round,
	assigned_provider_id, winning_bid_id, version, created_at, updated_at`

const bidColumns = `id, job_id, provider_id, amount, message, status, auction_round, created_at, updated_at`

// SQLRepo implements AuctionDB on Postgres or SQLite through sqlx.
// Every job or bid write runs in a transaction that takes the job row lock (Postgres),
// re-checks the job version and bumps it. A writer holding an older version,
// including a close decided on bids read before another instance's bid, gets ErrConflict.
type SQLRepo struct {
	db     *sqlx.DB
	driver string
}

func NewSQLRepo(db *sqlx.DB) *SQLRepo {
	return &SQLRepo{db: db, driver: db.DriverName()}
}

// OpenSQL connects to driver/dsn. SQLite is pinned to one connection: an in-memory
// database exists per connection, and a file database admits a single writer anyway.
// File DSNs also begin transactions IMMEDIATE so a second process waits on the busy
// timeout instead of failing a lock upgrade.
func OpenSQL(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("repository: unsupported driver %q", driver)
	}

	if driver == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("repository: connect %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			db.Close()
			return nil, fmt.Errorf("repository: enable foreign keys: %w", err)
		}
	}
	return db, nil
}

// sqliteDSN adds the busy timeout and immediate transactions to file DSNs unless set
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return dsn
	}
	var params []string
	if !strings.Contains(dsn, "_timeout") {
		params = append(params, "_busy_timeout=5000")
	}
	if !strings.Contains(dsn, "_txlock") {
		params = append(params, "_txlock=immediate")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

func (r *SQLRepo) Close() error {
	return r.db.Close()
}

// DB exposes the underlying handle for migrations
func (r *SQLRepo) DB() *sqlx.DB {
	return r.db
}

type jobRow struct {
	ID                 string        `db:"id"`
	TrackingNumber     string        `db:"tracking_number"`
	RequestType        string        `db:"request_type"`
	Status             string        `db:"status"`
	BasePrice          int64         `db:"base_price"`
	PickupAddress      string        `db:"pickup_address"`
	DeliveryAddress    string        `db:"delivery_address"`
	BiddingEndTime     sql.NullTime  `db:"bidding_end_time"`
	WindowStart        sql.NullTime  `db:"window_start"`
	WindowEnd          sql.NullTime  `db:"window_end"`
	MinimumBid         sql.NullInt64 `db:"minimum_bid"`
	WindowClosedAt     sql.NullTime  `db:"window_closed_at"`
	AuctionRound       int           `db:"auction_round"`
	AssignedProviderID string        `db:"assigned_provider_id"`
	WinningBidID       string        `db:"winning_bid_id"`
	Version            int           `db:"version"`
	CreatedAt          time.Time     `db:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at"`
}

func toJobRow(job model.Job) jobRow {
	row := jobRow{
		ID:                 job.JobID,
		TrackingNumber:     job.TrackingNumber,
		RequestType:        string(job.RequestType),
		Status:             string(job.Status),
		BasePrice:          job.BasePrice,
		PickupAddress:      job.PickupAddress,
		DeliveryAddress:    job.DeliveryAddress,
		AuctionRound:       job.AuctionRound,
		AssignedProviderID: job.AssignedProviderID,
		WinningBidID:       job.WinningBidID,
		Version:            job.Version,
		CreatedAt:          job.CreatedAt.UTC(),
		UpdatedAt:          job.UpdatedAt.UTC(),
	}
	row.BiddingEndTime = nullTime(job.BiddingEndTime)
	if w := job.Window; w != nil {
		row.WindowStart = sql.NullTime{Time: w.StartTime.UTC(), Valid: true}
		row.WindowEnd = sql.NullTime{Time: w.EndTime.UTC(), Valid: true}
		row.WindowClosedAt = nullTime(w.ClosedAt)
		if w.MinimumBid != nil {
			row.MinimumBid = sql.NullInt64{Int64: *w.MinimumBid, Valid: true}
		}
	}
	return row
}

func (row jobRow) toModel() model.Job {
	job := model.Job{
		JobID:              row.ID,
		TrackingNumber:     row.TrackingNumber,
		RequestType:        model.RequestType(row.RequestType),
		Status:             model.JobStatus(row.Status),
		BasePrice:          row.BasePrice,
		PickupAddress:      row.PickupAddress,
		DeliveryAddress:    row.DeliveryAddress,
		BiddingEndTime:     timePtr(row.BiddingEndTime),
		AuctionRound:       row.AuctionRound,
		AssignedProviderID: row.AssignedProviderID,
		WinningBidID:       row.WinningBidID,
		Version:            row.Version,
		CreatedAt:          row.CreatedAt.UTC(),
		UpdatedAt:          row.UpdatedAt.UTC(),
	}
	if row.WindowStart.Valid && row.WindowEnd.Valid {
		w := &model.AuctionWindow{
			StartTime: row.WindowStart.Time.UTC(),
			EndTime:   row.WindowEnd.Time.UTC(),
			ClosedAt:  timePtr(row.WindowClosedAt),
		}
		if row.MinimumBid.Valid {
			floor := row.MinimumBid.Int64
			w.MinimumBid = &floor
		}
		job.Window = w
	}
	return job
}

type bidRow struct {
	ID           string    `db:"id"`
	JobID        string    `db:"job_id"`
	ProviderID   string    `db:"provider_id"`
	Amount       int64     `db:"amount"`
	Message      string    `db:"message"`
	Status       string    `db:"status"`
	AuctionRound int       `db:"auction_round"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row bidRow) toModel() model.Bid {
	return model.Bid{
		BidID:      row.ID,
		JobID:      row.JobID,
		ProviderID: row.ProviderID,
		Amount:     row.Amount,
		Message:    row.Message,
		Status:     model.BidStatus(row.Status),
		Round:      row.AuctionRound,
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
}

type auditRow struct {
	ID        string    `db:"id"`
	JobID     string    `db:"job_id"`
	BidID     string    `db:"bid_id"`
	Action    string    `db:"action"`
	Actor     string    `db:"actor"`
	Detail    string    `db:"detail"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *SQLRepo) CreateJob(ctx context.Context, job model.Job, entry model.AuditEntry) error {
	if job.Version == 0 {
		job.Version = 1
	}
	query := `INSERT INTO jobs (` + jobColumns + `) VALUES (
		:id, :tracking_number, :request_type, :status, :base_price, :pickup_address, :delivery_address,
		:bidding_end_time, :window_start, :window_end, :minimum_bid, :window_closed_at, :auction_round,
		:assigned_provider_id, :winning_bid_id, :version, :created_at, :updated_at)`

	return r.inTx(ctx, "create job", func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, query, toJobRow(job)); err != nil {
			return err
		}
		return r.insertAudit(ctx, tx, entry)
	})
}

func (r *SQLRepo) GetJob(ctx context.Context, jobID string) (model.Job, error) {
	var row jobRow
	query := r.db.Rebind(`SELECT ` + jobColumns + ` FROM jobs WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, jobID); err != nil {
		return model.Job{}, mapSQLError(fmt.Sprintf("get job %s", jobID), err)
	}
	return row.toModel(), nil
}

func (r *SQLRepo) ListJobs(ctx context.Context, status model.JobStatus) ([]model.Job, error) {
	rows := []jobRow{}
	query := `SELECT ` + jobColumns + ` FROM jobs`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at ASC, id ASC`

	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, mapSQLError("list jobs", err)
	}
	return jobsFromRows(rows), nil
}

func (r *SQLRepo) UpdateJob(ctx context.Context, job model.Job, entry model.AuditEntry) (model.Job, error) {
	err := r.inTx(ctx, "update job", func(tx *sqlx.Tx) error {
		if err := r.updateJobTx(ctx, tx, job); err != nil {
			return err
		}
		return r.insertAudit(ctx, tx, entry)
	})
	if err != nil {
		return model.Job{}, err
	}
	return r.GetJob(ctx, job.JobID)
}

func (r *SQLRepo) CloseAuction(ctx context.Context, job model.Job, winningBidID string, entry model.AuditEntry) (model.Job, error) {
	err := r.inTx(ctx, "close auction", func(tx *sqlx.Tx) error {
		if err := r.updateJobTx(ctx, tx, job); err != nil {
			return err
		}

		if winningBidID != "" {
			var pending int
			check := tx.Rebind(`SELECT COUNT(1) FROM bids WHERE id = ? AND job_id = ? AND auction_round = ? AND status = ?`)
			if err := tx.GetContext(ctx, &pending, check, winningBidID, job.JobID, job.AuctionRound, string(model.BidPending)); err != nil {
				return err
			}
			if pending == 0 {
				return fmt.Errorf("%w - winning bid %s is no longer pending", auctionerrors.ErrConflict, winningBidID)
			}
		}

		decide := tx.Rebind(`UPDATE bids
			SET status = CASE WHEN id = ? THEN ? ELSE ? END, updated_at = ?
			WHERE job_id = ? AND auction_round = ? AND status = ?`)
		if _, err := tx.ExecContext(ctx, decide,
			winningBidID, string(model.BidAccepted), string(model.BidRejected), job.UpdatedAt.UTC(),
			job.JobID, job.AuctionRound, string(model.BidPending)); err != nil {
			return err
		}
		return r.insertAudit(ctx, tx, entry)
	})
	if err != nil {
		return model.Job{}, err
	}
	return r.GetJob(ctx, job.JobID)
}

// ListExpiredAuctions filters in Go so the comparison does not depend on how each
// driver stores timestamps.
func (r *SQLRepo) ListExpiredAuctions(ctx context.Context, now time.Time) ([]string, error) {
	var rows []struct {
		ID        string       `db:"id"`
		WindowEnd sql.NullTime `db:"window_end"`
	}
	query := r.db.Rebind(`SELECT id, window_end FROM jobs WHERE status = ? ORDER BY created_at ASC, id ASC`)
	if err := r.db.SelectContext(ctx, &rows, query, string(model.StatusBidding)); err != nil {
		return nil, mapSQLError("list expired auctions", err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.WindowEnd.Valid && !now.Before(row.WindowEnd.Time) {
			ids = append(ids, row.ID)
		}
	}
	return ids, nil
}

func (r *SQLRepo) SaveBid(ctx context.Context, bid model.Bid, jobVersion int, entry model.AuditEntry) (model.Bid, error) {
	err := r.inTx(ctx, "save bid", func(tx *sqlx.Tx) error {
		if err := r.lockJob(ctx, tx, bid.JobID, jobVersion); err != nil {
			return err
		}
		if err := r.bumpVersionTx(ctx, tx, bid.JobID, jobVersion); err != nil {
			return err
		}

		update := tx.Rebind(`UPDATE bids SET amount = ?, message = ?, status = ?, updated_at = ? WHERE id = ? AND job_id = ?`)
		res, err := tx.ExecContext(ctx, update, bid.Amount, bid.Message, string(bid.Status), bid.UpdatedAt.UTC(), bid.BidID, bid.JobID)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}

		if affected == 0 {
			insert := tx.Rebind(`INSERT INTO bids (` + bidColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
			if _, err := tx.ExecContext(ctx, insert,
				bid.BidID, bid.JobID, bid.ProviderID, bid.Amount, bid.Message, string(bid.Status),
				bid.Round, bid.CreatedAt.UTC(), bid.UpdatedAt.UTC()); err != nil {
				return err
			}
		}
		return r.insertAudit(ctx, tx, entry)
	})
	if err != nil {
		return model.Bid{}, err
	}
	return r.GetBid(ctx, bid.BidID)
}

func (r *SQLRepo) GetBid(ctx context.Context, bidID string) (model.Bid, error) {
	var row bidRow
	query := r.db.Rebind(`SELECT ` + bidColumns + ` FROM bids WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, bidID); err != nil {
		return model.Bid{}, mapSQLError(fmt.Sprintf("get bid %s", bidID), err)
	}
	return row.toModel(), nil
}

func (r *SQLRepo) GetPendingBid(ctx context.Context, jobID, providerID string) (model.Bid, error) {
	var row bidRow
	query := r.db.Rebind(`SELECT ` + bidColumns + ` FROM bids WHERE job_id = ? AND provider_id = ? AND status = ?`)
	if err := r.db.GetContext(ctx, &row, query, jobID, providerID, string(model.BidPending)); err != nil {
		return model.Bid{}, mapSQLError(fmt.Sprintf("get pending bid for job %s by provider %s", jobID, providerID), err)
	}
	return row.toModel(), nil
}

func (r *SQLRepo) GetBidsByJob(ctx context.Context, jobID string, round int) ([]model.Bid, error) {
	if _, err := r.GetJob(ctx, jobID); err != nil {
		return nil, err
	}

	rows := []bidRow{}
	query := `SELECT ` + bidColumns + ` FROM bids WHERE job_id = ?`
	args := []any{jobID}
	if round != 0 {
		query += ` AND auction_round = ?`
		args = append(args, round)
	}
	query += ` ORDER BY amount ASC, created_at ASC, id ASC`

	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, mapSQLError(fmt.Sprintf("get bids for job %s", jobID), err)
	}

	bids := make([]model.Bid, 0, len(rows))
	for _, row := range rows {
		bids = append(bids, row.toModel())
	}
	return bids, nil
}

func (r *SQLRepo) GetJobsByProvider(ctx context.Context, providerID string) ([]model.Job, error) {
	rows := []jobRow{}
	query := r.db.Rebind(`SELECT ` + jobColumns + ` FROM jobs
		WHERE id IN (SELECT job_id FROM bids WHERE provider_id = ?)
		ORDER BY created_at ASC, id ASC`)
	if err := r.db.SelectContext(ctx, &rows, query, providerID); err != nil {
		return nil, mapSQLError(fmt.Sprintf("get jobs for provider %s", providerID), err)
	}
	return jobsFromRows(rows), nil
}

func (r *SQLRepo) GetAuditTrail(ctx context.Context, jobID string) ([]model.AuditEntry, error) {
	if _, err := r.GetJob(ctx, jobID); err != nil {
		return nil, err
	}

	rows := []auditRow{}
	query := r.db.Rebind(`SELECT id, job_id, bid_id, action, actor, detail, created_at
		FROM audit_entries WHERE job_id = ? ORDER BY seq ASC`)
	if err := r.db.SelectContext(ctx, &rows, query, jobID); err != nil {
		return nil, mapSQLError(fmt.Sprintf("get audit trail for job %s", jobID), err)
	}

	entries := make([]model.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, model.AuditEntry{
			EntryID:   row.ID,
			JobID:     row.JobID,
			BidID:     row.BidID,
			Action:    model.AuditAction(row.Action),
			Actor:     row.Actor,
			Detail:    row.Detail,
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return entries, nil
}

// lockJob takes the job row lock and verifies the caller still sees the current version
func (r *SQLRepo) lockJob(ctx context.Context, tx *sqlx.Tx, jobID string, version int) error {
	var current int
	query := `SELECT version FROM jobs WHERE id = ?`
	if r.driver == DriverPostgres {
		query += ` FOR UPDATE`
	}
	if err := tx.GetContext(ctx, &current, tx.Rebind(query), jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("job %s: %w", jobID, auctionerrors.ErrNotFound)
		}
		return err
	}
	if current != version {
		return fmt.Errorf("job %s at version %d, expected %d: %w", jobID, current, version, auctionerrors.ErrConflict)
	}
	return nil
}

// updateJobTx writes job conditionally on its version and bumps the version
func (r *SQLRepo) updateJobTx(ctx context.Context, tx *sqlx.Tx, job model.Job) error {
	if err := r.lockJob(ctx, tx, job.JobID, job.Version); err != nil {
		return err
	}
	query := `UPDATE jobs SET
		request_type = :request_type, status = :status, base_price = :base_price,
		pickup_address = :pickup_address, delivery_address = :delivery_address,
		bidding_end_time = :bidding_end_time, window_start = :window_start, window_end = :window_end,
		minimum_bid = :minimum_bid, window_closed_at = :window_closed_at, auction_round = :auction_round,
		assigned_provider_id = :assigned_provider_id, winning_bid_id = :winning_bid_id,
		version = :version + 1, updated_at = :updated_at
		WHERE id = :id AND version = :version`
	res, err := tx.NamedExecContext(ctx, query, toJobRow(job))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("job %s changed concurrently: %w", job.JobID, auctionerrors.ErrConflict)
	}
	return nil
}

// bumpVersionTx moves the job past version without touching its other columns
func (r *SQLRepo) bumpVersionTx(ctx context.Context, tx *sqlx.Tx, jobID string, version int) error {
	query := tx.Rebind(`UPDATE jobs SET version = version + 1 WHERE id = ? AND version = ?`)
	res, err := tx.ExecContext(ctx, query, jobID, version)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("job %s changed concurrently: %w", jobID, auctionerrors.ErrConflict)
	}
	return nil
}

func (r *SQLRepo) insertAudit(ctx context.Context, tx *sqlx.Tx, entry model.AuditEntry) error {
	if entry.JobID == "" {
		return nil
	}
	query := tx.Rebind(`INSERT INTO audit_entries (id, job_id, seq, bid_id, action, actor, detail, created_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM audit_entries WHERE job_id = ?), ?, ?, ?, ?, ?)`)
	_, err := tx.ExecContext(ctx, query,
		entry.EntryID, entry.JobID, entry.JobID, entry.BidID, string(entry.Action), entry.Actor, entry.Detail, entry.CreatedAt.UTC())
	return err
}

// inTx runs fn in a transaction, rolling back on error and translating driver errors
func (r *SQLRepo) inTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return mapSQLError(op+": begin", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return mapSQLError(op, err)
	}
	if err := tx.Commit(); err != nil {
		return mapSQLError(op+": commit", err)
	}
	return nil
}

// mapSQLError converts driver errors into the auction error taxonomy
func mapSQLError(op string, err error) error {
	switch {
	case errors.Is(err, auctionerrors.ErrNotFound), errors.Is(err, auctionerrors.ErrConflict):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, auctionerrors.ErrNotFound)
	case isUniqueViolation(err), isContention(err):
		return fmt.Errorf("%s: %w: %v", op, auctionerrors.ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, auctionerrors.ErrInternal, err)
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// isContention reports lock contention the caller may retry: a busy or locked
// SQLite database, or a Postgres serialization failure or deadlock.
func isContention(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}

func jobsFromRows(rows []jobRow) []model.Job {
	jobs := make([]model.Job, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, row.toModel())
	}
	return jobs
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
