package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	name string
	runs atomic.Int64
	err  error
}

func (j *fakeJob) Run() error {
	j.runs.Add(1)
	return j.err
}

func (j *fakeJob) Name() string { return j.name }

func TestAddJobValidSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.AddJob("0 30 6 * * MON-FRI", &fakeJob{name: "price_sync"})
	assert.NoError(t, err)

	err = s.AddJob("@hourly", &fakeJob{name: "cleanup"})
	assert.NoError(t, err)
}

func TestAddJobInvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.AddJob("not a schedule", &fakeJob{name: "broken"})
	assert.Error(t, err)
}

func TestRunNow(t *testing.T) {
	s := New(zerolog.Nop())

	job := &fakeJob{name: "manual"}
	require.NoError(t, s.RunNow(job))
	assert.Equal(t, int64(1), job.runs.Load())
}

func TestRunNowPropagatesError(t *testing.T) {
	s := New(zerolog.Nop())

	job := &fakeJob{name: "failing", err: errors.New("boom")}
	assert.Error(t, s.RunNow(job))
}

func TestScheduledJobRuns(t *testing.T) {
	s := New(zerolog.Nop())

	job := &fakeJob{name: "frequent"}
	require.NoError(t, s.AddJob("@every 100ms", job))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return job.runs.Load() >= 1
	}, 2*time.Second, 50*time.Millisecond)
}
