// Package journal records the progress of each order submission so a partial
// failure leaves an inspectable trail of which steps completed. There is no
// compensation here: the journal observes the saga, it does not drive it.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusPartial    Status = "partial"
	StatusFailed     Status = "failed"
)

type Submission struct {
	ID        string
	UserID    int64
	CartID    int64
	OrderID   *int64
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

type StepRecord struct {
	Step        string
	CompletedAt time.Time
}

var ErrSubmissionNotFound = errors.New("submission not found")

type Journal interface {
	Create(ctx context.Context, sub *Submission) error
	SetOrderID(ctx context.Context, id string, orderID int64) error
	RecordStep(ctx context.Context, id string, step string) error
	Finish(ctx context.Context, id string, status Status) error
	Get(ctx context.Context, id string) (*Submission, []StepRecord, error)
	Close() error
}

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(5)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) Create(ctx context.Context, sub *Submission) error {
	const q = `
		INSERT INTO submissions (id, user_id, cart_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())`

	_, err := r.db.ExecContext(ctx, q, sub.ID, sub.UserID, sub.CartID, StatusInProgress)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

func (r *Repository) SetOrderID(ctx context.Context, id string, orderID int64) error {
	const q = `
		UPDATE submissions SET order_id = $2, updated_at = NOW()
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, q, id, orderID)
	if err != nil {
		return fmt.Errorf("failed to set order id: %w", err)
	}
	return checkAffected(res)
}

func (r *Repository) RecordStep(ctx context.Context, id string, step string) error {
	const q = `
		INSERT INTO submission_steps (submission_id, step, completed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (submission_id, step) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, q, id, step); err != nil {
		return fmt.Errorf("failed to record step: %w", err)
	}
	return nil
}

func (r *Repository) Finish(ctx context.Context, id string, status Status) error {
	const q = `
		UPDATE submissions SET status = $2, updated_at = NOW()
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return fmt.Errorf("failed to finish submission: %w", err)
	}
	return checkAffected(res)
}

func (r *Repository) Get(ctx context.Context, id string) (*Submission, []StepRecord, error) {
	const q = `
		SELECT id, user_id, cart_id, order_id, status, created_at, updated_at
		FROM submissions WHERE id = $1`

	var sub Submission
	var orderID sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&sub.ID, &sub.UserID, &sub.CartID, &orderID, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if orderID.Valid {
		sub.OrderID = &orderID.Int64
	}

	const qs = `
		SELECT step, completed_at FROM submission_steps
		WHERE submission_id = $1 ORDER BY completed_at`

	rows, err := r.db.QueryContext(ctx, qs, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get submission steps: %w", err)
	}
	defer rows.Close()

	var steps []StepRecord
	for rows.Next() {
		var s StepRecord
		if err := rows.Scan(&s.Step, &s.CompletedAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan step: %w", err)
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate steps: %w", err)
	}

	return &sub, steps, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}
