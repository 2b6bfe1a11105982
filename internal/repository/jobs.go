package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/contact-extractor/api/internal/entity"
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

var _ pgxPool = (*pgxpool.Pool)(nil)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const uniqueViolation = "23505"

// PGXJobStore implements JobStore on PostgreSQL using pgx.
type PGXJobStore struct {
	pool pgxPool
}

// NewPGXJobStore wires a pgx backed job store.
func NewPGXJobStore(pool *pgxpool.Pool) *PGXJobStore {
	return &PGXJobStore{pool: pool}
}

var _ JobStore = (*PGXJobStore)(nil)

// Create inserts the job row and one result row per URL in a single transaction.
func (r *PGXJobStore) Create(ctx context.Context, job entity.Job) error {
	if job.ID == "" {
		return fmt.Errorf("job id must not be empty")
	}
	if len(job.URLs) == 0 {
		return fmt.Errorf("job %s has no urls", job.ID)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("start create job tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := psql.Insert("jobs").
		Columns("id", "owner", "status", "message", "urls", "created_at", "updated_at").
		Values(job.ID, job.Owner, string(job.Status), job.Message, job.URLs, job.CreatedAt, job.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert job: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateJob
		}
		return fmt.Errorf("insert job: %w", err)
	}

	insert := psql.Insert("job_results").
		Columns("job_id", "url", "position", "emails", "facebook", "instagram", "tiktok", "screenshot_ref", "status", "message", "updated_at")
	for i, u := range job.URLs {
		rec, ok := job.Results[u]
		if !ok {
			rec = entity.NewPendingRecord(u, job.CreatedAt)
		}
		insert = insert.Values(job.ID, u, i,
			stringSliceOrEmpty(rec.Emails),
			stringSliceOrEmpty(rec.Facebook),
			stringSliceOrEmpty(rec.Instagram),
			stringSliceOrEmpty(rec.TikTok),
			rec.ScreenshotRef,
			string(rec.Status),
			rec.Message,
			rec.Timestamp,
		)
	}
	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("build insert results: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert job results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create job tx: %w", err)
	}
	return nil
}

// Get loads the job and its records ordered by submission position.
func (r *PGXJobStore) Get(ctx context.Context, jobID string) (*entity.Job, error) {
	query, args, err := psql.Select("id", "owner", "status", "message", "urls", "created_at", "updated_at", "completed_at").
		From("jobs").
		Where(sq.Eq{"id": jobID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select job: %w", err)
	}

	var (
		job       entity.Job
		status    string
		completed sql.NullTime
	)
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&job.ID,
		&job.Owner,
		&status,
		&job.Message,
		&job.URLs,
		&job.CreatedAt,
		&job.UpdatedAt,
		&completed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("fetch job: %w", err)
	}
	job.Status = entity.JobStatus(status)
	if completed.Valid {
		ts := completed.Time
		job.CompletedAt = &ts
	}

	query, args, err = psql.Select("url", "emails", "facebook", "instagram", "tiktok", "screenshot_ref", "status", "message", "updated_at").
		From("job_results").
		Where(sq.Eq{"job_id": jobID}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select results: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list job results: %w", err)
	}
	defer rows.Close()

	job.Results, err = scanResults(rows)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateResult overwrites a single (job, url) row.
func (r *PGXJobStore) UpdateResult(ctx context.Context, jobID, url string, record entity.ResultRecord) error {
	query, args, err := psql.Update("job_results").
		Set("emails", stringSliceOrEmpty(record.Emails)).
		Set("facebook", stringSliceOrEmpty(record.Facebook)).
		Set("instagram", stringSliceOrEmpty(record.Instagram)).
		Set("tiktok", stringSliceOrEmpty(record.TikTok)).
		Set("screenshot_ref", record.ScreenshotRef).
		Set("status", string(record.Status)).
		Set("message", record.Message).
		Set("updated_at", record.Timestamp).
		Where(sq.Eq{"job_id": jobID, "url": url}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update result: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		exists, err := r.jobExists(ctx, jobID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrJobNotFound
		}
		return ErrResultNotFound
	}

	if _, err := r.pool.Exec(ctx, `UPDATE jobs SET updated_at = NOW() WHERE id = $1`, jobID); err != nil {
		return fmt.Errorf("touch job: %w", err)
	}
	return nil
}

// SetJobStatus records the overall status, stamping completed_at on terminal states.
func (r *PGXJobStore) SetJobStatus(ctx context.Context, jobID string, status entity.JobStatus, message string) error {
	query, args, err := psql.Update("jobs").
		Set("status", string(status)).
		Set("message", message).
		Set("updated_at", sq.Expr("NOW()")).
		Set("completed_at", sq.Expr("CASE WHEN ? THEN COALESCE(completed_at, NOW()) ELSE completed_at END", status.IsTerminal())).
		Where(sq.Eq{"id": jobID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update job status: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

// ListStale returns ids of jobs in status not updated since before.
func (r *PGXJobStore) ListStale(ctx context.Context, status entity.JobStatus, before time.Time) ([]string, error) {
	query, args, err := psql.Select("id").
		From("jobs").
		Where(sq.Eq{"status": string(status)}).
		Where(sq.Lt{"updated_at": before}).
		OrderBy("updated_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list stale: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stale jobs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan stale job: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stale jobs: %w", err)
	}
	return ids, nil
}

// DeleteCreatedBefore removes old jobs; result rows go with them via ON DELETE CASCADE.
func (r *PGXJobStore) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	query, args, err := psql.Delete("jobs").Where(sq.Lt{"created_at": cutoff}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete jobs: %w", err)
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete jobs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *PGXJobStore) jobExists(ctx context.Context, jobID string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`, jobID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check job exists: %w", err)
	}
	return exists, nil
}

func scanResults(rows pgx.Rows) (map[string]entity.ResultRecord, error) {
	results := make(map[string]entity.ResultRecord)
	for rows.Next() {
		var (
			rec        entity.ResultRecord
			status     string
			screenshot sql.NullString
		)
		err := rows.Scan(
			&rec.URL,
			&rec.Emails,
			&rec.Facebook,
			&rec.Instagram,
			&rec.TikTok,
			&screenshot,
			&status,
			&rec.Message,
			&rec.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan job result: %w", err)
		}
		rec.Status = entity.RecordStatus(status)
		if screenshot.Valid {
			val := screenshot.String
			rec.ScreenshotRef = &val
		}
		rec.Emails = stringSliceOrEmpty(rec.Emails)
		rec.Facebook = stringSliceOrEmpty(rec.Facebook)
		rec.Instagram = stringSliceOrEmpty(rec.Instagram)
		rec.TikTok = stringSliceOrEmpty(rec.TikTok)
		results[rec.URL] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job results: %w", err)
	}
	return results, nil
}

func stringSliceOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
