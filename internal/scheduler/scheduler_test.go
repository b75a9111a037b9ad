package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sweeper struct {
	completed atomic.Int32
	expired   atomic.Int32
	err       error
}

func (s *sweeper) CompleteDue(ctx context.Context) (int64, error) {
	s.completed.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("missing deadline")
	}
	return 2, s.err
}

func (s *sweeper) ExpireUnpaid(context.Context) (int64, error) {
	s.expired.Add(1)
	return 1, s.err
}

func TestAdd_RejectsBadSpec(t *testing.T) {
	s := New(nil)
	err := s.Add(Job{Name: "broken", Spec: "every tuesday", Run: func(context.Context) (int64, error) { return 0, nil }})
	assert.Error(t, err)
	assert.Error(t, s.RunNow("broken"))
}

func TestMarketplaceJobs(t *testing.T) {
	sw := &sweeper{}
	s := New(time.FixedZone("IST", 5*3600+1800))
	for _, job := range MarketplaceJobs(sw, nil, 30) {
		require.NoError(t, s.Add(job))
	}
	assert.Len(t, s.cron.Entries(), 3)

	require.NoError(t, s.RunNow(JobCompleteBookings))
	require.NoError(t, s.RunNow(JobExpireUnpaid))
	assert.Equal(t, int32(1), sw.completed.Load())
	assert.Equal(t, int32(1), sw.expired.Load())

	sw.err = errors.New("db down")
	assert.ErrorIs(t, s.RunNow(JobExpireUnpaid), sw.err)
}

func TestStartStop(t *testing.T) {
	var runs atomic.Int32
	s := New(nil)
	require.NoError(t, s.Add(Job{Name: "tick", Spec: "@every 1s", Run: func(context.Context) (int64, error) {
		runs.Add(1)
		return 0, nil
	}}))

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
