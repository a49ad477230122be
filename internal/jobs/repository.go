package jobs

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Repository interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	List(ctx context.Context, limit int) ([]*Job, error)
	Finish(ctx context.Context, id, status, output, errorMsg string) error
}

const defaultListLimit = 50

// Fixed-width so timestamps sort lexically in SQL.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const jobColumns = `id, kind, status, source_id, output, error, created_at, updated_at`

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Create(ctx context.Context, j *Job) error {
	now := r.now().UTC()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	j.UpdatedAt = j.CreatedAt
	if j.Status == "" {
		j.Status = StatusRunning
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, j.ID, j.Kind, j.Status, nullString(j.SourceID), nullString(j.Output), nullString(j.Error),
		formatTime(j.CreatedAt), formatTime(j.UpdatedAt))
	return err
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return j, err
}

// List returns the most recent jobs first.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM jobs ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []*Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// Finish moves a job to a terminal status.
func (r *SQLiteRepository) Finish(ctx context.Context, id, status, output, errorMsg string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, output = ?, error = ?, updated_at = ? WHERE id = ?
	`, status, nullString(output), nullString(errorMsg), formatTime(r.now().UTC()), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*Job, error) {
	var j Job
	var sourceID, output, errMsg sql.NullString
	var createdAt, updatedAt string

	if err := s.Scan(&j.ID, &j.Kind, &j.Status, &sourceID, &output, &errMsg, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	j.SourceID = sourceID.String
	j.Output = output.String
	j.Error = errMsg.String
	j.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	j.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return &j, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
