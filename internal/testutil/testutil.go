// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/exercisetracker/exercisetracker/internal/model"
	"github.com/exercisetracker/exercisetracker/migrations"
)

const (
	postgresImage = "postgres:16-alpine"
	redisImage    = "redis:7-alpine"

	postgresUser     = "test"
	postgresPassword = "test"
	postgresDB       = "exercisetracker"
)

// DatabaseURL returns DATABASE_URL when set. Otherwise it starts a disposable
// PostgreSQL container for the duration of the test, skipping the test when
// no container runtime is reachable.
func DatabaseURL(t testing.TB) string {
	t.Helper()
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	ctx := context.Background()
	container := startContainer(t, ctx, testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_DB":       postgresDB,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	})

	host, port := containerEndpoint(t, ctx, container, "5432/tcp")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, host, port, postgresDB)
}

// RedisURL returns REDIS_URL when set, otherwise starts a Redis container.
func RedisURL(t testing.TB) string {
	t.Helper()
	if url := os.Getenv("REDIS_URL"); url != "" {
		return url
	}

	ctx := context.Background()
	container := startContainer(t, ctx, testcontainers.ContainerRequest{
		Image:        redisImage,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(time.Minute),
	})

	host, port := containerEndpoint(t, ctx, container, "6379/tcp")
	return fmt.Sprintf("redis://%s:%s/0", host, port)
}

func startContainer(t testing.TB, ctx context.Context, req testcontainers.ContainerRequest) testcontainers.Container {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("container runtime unavailable for %s: %v", req.Image, err)
	}

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	return container
}

func containerEndpoint(t testing.TB, ctx context.Context, container testcontainers.Container, port nat.Port) (string, string) {
	t.Helper()

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}

	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	return host, mapped.Port()
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops every table and re-applies the up migrations.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	down, err := migrations.Down()
	if err != nil {
		return err
	}
	for _, sql := range down {
		if _, err := pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("apply down migration: %w", err)
		}
	}

	up, err := migrations.Up()
	if err != nil {
		return err
	}
	for _, sql := range up {
		if _, err := pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("apply up migration: %w", err)
		}
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with a fresh ID.
func NewTestUser(t testing.TB, username string) *model.User {
	t.Helper()
	return &model.User{
		ID:        ulid.Make().String(),
		Username:  username,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestExercise creates an exercise entry for userID on the given YYYY-MM-DD date.
func NewTestExercise(t testing.TB, userID, date string) *model.Exercise {
	t.Helper()
	d, err := model.ParseCalendarDate(date)
	if err != nil {
		t.Fatalf("invalid test date %q: %v", date, err)
	}
	return &model.Exercise{
		ID:          ulid.Make().String(),
		UserID:      userID,
		Description: "run",
		Duration:    30,
		Date:        d,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

// UniqueUsername generates a username that will not collide across tests.
func UniqueUsername(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
