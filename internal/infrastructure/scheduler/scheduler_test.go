package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

// funcExecutor adapts a function to JobExecutor
type funcExecutor func(ctx context.Context, job *Job) error

func (f funcExecutor) Execute(ctx context.Context, job *Job) error { return f(ctx, job) }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func startScheduler(t *testing.T, cfg Config, exec JobExecutor) *Scheduler {
	t.Helper()
	s, err := NewScheduler(cfg, exec, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	return s
}

func stop(t *testing.T, s *Scheduler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func waitFor(t *testing.T, ch <-chan uuid.UUID, n int) []uuid.UUID {
	t.Helper()
	var got []uuid.UUID
	for len(got) < n {
		select {
		case id := <-ch:
			got = append(got, id)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out after %d of %d jobs", len(got), n)
		}
	}
	return got
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{"default", func(*Config) {}, true},
		{"no workers", func(c *Config) { c.Workers = 0 }, false},
		{"no queue", func(c *Config) { c.QueueSize = 0 }, false},
		{"no timeout", func(c *Config) { c.JobTimeout = 0 }, false},
		{"negative retries", func(c *Config) { c.RetryAttempts = -1 }, false},
		{"zero retries", func(c *Config) { c.RetryAttempts = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}

	_, err := NewScheduler(Config{}, nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestScheduler_RunsSubmittedJobs(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	done := make(chan uuid.UUID, 3)
	s := startScheduler(t, testConfig(), funcExecutor(func(_ context.Context, job *Job) error {
		done <- job.TenantID
		return nil
	}))

	want := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range want {
		require.NoError(t, s.Submit(NewJob(id, nil, 0)))
	}

	assert.ElementsMatch(t, want, waitFor(t, done, len(want)))
	stop(t, s)
}

func TestScheduler_RetriesFailedJobs(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var attempts atomic.Int32
	done := make(chan uuid.UUID, 1)
	s := startScheduler(t, testConfig(), funcExecutor(func(_ context.Context, job *Job) error {
		if attempts.Add(1) < 3 {
			return errors.New("database unavailable")
		}
		done <- job.TenantID
		return nil
	}))

	tenant := uuid.New()
	require.NoError(t, s.Submit(NewJob(tenant, nil, 2)))

	assert.Equal(t, []uuid.UUID{tenant}, waitFor(t, done, 1))
	assert.Equal(t, int32(3), attempts.Load())
	stop(t, s)
}

func TestScheduler_GivesUpAfterMaxRetries(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var attempts atomic.Int32
	s := startScheduler(t, testConfig(), funcExecutor(func(context.Context, *Job) error {
		attempts.Add(1)
		return errors.New("boom")
	}))

	require.NoError(t, s.Submit(NewJob(uuid.New(), nil, 1)))
	assert.Eventually(t, func() bool { return attempts.Load() == 2 }, 5*time.Second, time.Millisecond)

	stop(t, s)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestScheduler_JobTimeout(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cfg := testConfig()
	cfg.JobTimeout = 10 * time.Millisecond
	errs := make(chan error, 1)
	s := startScheduler(t, cfg, funcExecutor(func(ctx context.Context, _ *Job) error {
		<-ctx.Done()
		errs <- ctx.Err()
		return ctx.Err()
	}))

	require.NoError(t, s.Submit(NewJob(uuid.New(), nil, 0)))
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("job was not cancelled")
	}
	stop(t, s)
}

func TestScheduler_SubmitErrors(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	release := make(chan struct{})
	var once sync.Once
	cfg := testConfig()
	cfg.Workers = 1
	cfg.QueueSize = 1

	s, err := NewScheduler(cfg, funcExecutor(func(ctx context.Context, _ *Job) error {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}), zap.NewNop())
	require.NoError(t, err)

	assert.ErrorIs(t, s.Submit(NewJob(uuid.New(), nil, 0)), ErrSchedulerNotRunning)

	require.NoError(t, s.Start(context.Background()))
	var submitErr error
	for i := 0; i < 3 && submitErr == nil; i++ {
		submitErr = s.Submit(NewJob(uuid.New(), nil, 0))
	}
	assert.ErrorIs(t, submitErr, ErrJobQueueFull)

	once.Do(func() { close(release) })
	stop(t, s)

	assert.ErrorIs(t, s.Submit(NewJob(uuid.New(), nil, 0)), ErrSchedulerNotRunning)
	// stopping twice is a no-op
	stop(t, s)
}

func TestJob_Lifecycle(t *testing.T) {
	job := NewJob(uuid.New(), []string{"churn"}, 1)
	assert.Equal(t, JobStatusPending, job.Status)

	job.Start()
	assert.Equal(t, JobStatusRunning, job.Status)
	assert.NotNil(t, job.StartedAt)

	job.Fail("boom")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "boom", job.Error)
	assert.True(t, job.ShouldRetry())

	job.RetryCount++
	assert.False(t, job.ShouldRetry())

	job.Start()
	assert.Empty(t, job.Error)
	job.Complete()
	assert.Equal(t, JobStatusSuccess, job.Status)
	assert.NotNil(t, job.CompletedAt)
}
