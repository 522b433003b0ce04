package enhance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLimits = LimitConfig{
	PostLimit:         2,
	PostWindowSeconds: 300,
	DailyLimit:        30,
}

func newTestLimiter(clock *fakeClock) (*Limiter, *fakeKV) {
	kv := newFakeKV(clock.Now)
	l := NewLimiter(kv)
	l.now = clock.Now
	return l, kv
}

func attempt(t *testing.T, l *Limiter, userID, refID string) error {
	t.Helper()
	ctx := context.Background()
	err := l.TryAcquire(ctx, userID, refID, testLimits)
	if err != nil {
		return err
	}
	require.NoError(t, l.Record(ctx, userID, refID, testLimits))
	return nil
}

func TestLimiter_PostWindow(t *testing.T) {
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	l, _ := newTestLimiter(clock)

	require.NoError(t, attempt(t, l, "user1", "post1"))
	require.NoError(t, attempt(t, l, "user1", "post1"))

	// Third attempt inside the window is rejected.
	err := attempt(t, l, "user1", "post1")
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindRateLimited, e.Kind)
	assert.Greater(t, e.RetryAfter, 0)
	assert.LessOrEqual(t, e.RetryAfter, 300)

	// A different post is unaffected.
	require.NoError(t, attempt(t, l, "user1", "post2"))

	// A different user is unaffected.
	require.NoError(t, attempt(t, l, "user2", "post1"))
}

func TestLimiter_PostWindowSlides(t *testing.T) {
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	l, _ := newTestLimiter(clock)

	require.NoError(t, attempt(t, l, "user1", "post1"))
	clock.Advance(100 * time.Second)
	require.NoError(t, attempt(t, l, "user1", "post1"))

	clock.Advance(150 * time.Second)
	// First attempt is now 250s old, still inside the 300s window.
	err := attempt(t, l, "user1", "post1")
	require.Error(t, err)

	clock.Advance(60 * time.Second)
	// First attempt aged out at 310s; one slot free again.
	require.NoError(t, attempt(t, l, "user1", "post1"))
}

func TestLimiter_DailyQuota(t *testing.T) {
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	l, _ := newTestLimiter(clock)

	// Spread attempts over distinct posts so the post window never trips.
	for i := 0; i < 30; i++ {
		refID := string(rune('a'+i%26)) + string(rune('0'+i/26))
		require.NoError(t, attempt(t, l, "user1", refID), "attempt %d", i)
		clock.Advance(time.Second)
	}

	err := attempt(t, l, "user1", "zz")
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindRateLimited, e.Kind)
	assert.Greater(t, e.RetryAfter, 0)

	// The window is fixed, so the quota resets a day after the first attempt.
	clock.Advance(24 * time.Hour)
	require.NoError(t, attempt(t, l, "user1", "zz"))
}

func TestLimiter_RecordChargesFailedAttempts(t *testing.T) {
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	l, _ := newTestLimiter(clock)
	ctx := context.Background()

	// Record without checking, as the service does after a provider error.
	require.NoError(t, l.Record(ctx, "user1", "post1", testLimits))
	require.NoError(t, l.Record(ctx, "user1", "post1", testLimits))

	err := l.TryAcquire(ctx, "user1", "post1", testLimits)
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindRateLimited, e.Kind)
}

func TestLimiter_CorruptStateBehavesLikeEmpty(t *testing.T) {
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	l, kv := newTestLimiter(clock)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, postKey("user1", "post1"), "not json", 0))
	require.NoError(t, kv.Set(ctx, dailyKey("user1"), "{broken", 0))

	assert.NoError(t, l.TryAcquire(ctx, "user1", "post1", testLimits))
	assert.NoError(t, l.Record(ctx, "user1", "post1", testLimits))
}
