package journal

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "./migrations",
	}

	repo, err := NewRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func TestCreateAndGet(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	id := uuid.New().String()

	err := repo.Create(ctx, &Submission{ID: id, UserID: 5, CartID: 42})
	require.NoError(t, err)

	sub, steps, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, sub.Status)
	assert.Equal(t, int64(5), sub.UserID)
	assert.Equal(t, int64(42), sub.CartID)
	assert.Nil(t, sub.OrderID)
	assert.Empty(t, steps)
}

func TestGet_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, _, err := repo.Get(context.Background(), uuid.New().String())
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestRecordStepsAndFinish(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	id := uuid.New().String()
	require.NoError(t, repo.Create(ctx, &Submission{ID: id, UserID: 5, CartID: 42}))

	require.NoError(t, repo.SetOrderID(ctx, id, 101))
	require.NoError(t, repo.RecordStep(ctx, id, "create_order"))
	require.NoError(t, repo.RecordStep(ctx, id, "create_payment"))
	// recording the same step twice is a no-op
	require.NoError(t, repo.RecordStep(ctx, id, "create_order"))
	require.NoError(t, repo.Finish(ctx, id, StatusCompleted))

	sub, steps, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, sub.Status)
	require.NotNil(t, sub.OrderID)
	assert.Equal(t, int64(101), *sub.OrderID)
	require.Len(t, steps, 2)
	assert.Equal(t, "create_order", steps[0].Step)
	assert.Equal(t, "create_payment", steps[1].Step)
}

func TestFinish_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.Finish(context.Background(), uuid.New().String(), StatusFailed)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}
