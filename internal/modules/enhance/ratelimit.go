package enhance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const dailyWindowSeconds = 86400

// LimitConfig carries the per-resource and per-day quotas from the
// runtime config.
type LimitConfig struct {
	PostLimit         int
	PostWindowSeconds int
	DailyLimit        int
}

// Limiter enforces two quotas over the shared KV store: a short window
// per (user, article) pair and a fixed daily window per user. Every
// provider attempt counts against both, successful or not.
type Limiter struct {
	kv  KV
	now func() time.Time
}

func NewLimiter(kv KV) *Limiter {
	return &Limiter{kv: kv, now: time.Now}
}

type dailyWindow struct {
	Start int64 `json:"start"`
	Count int   `json:"count"`
}

func postKey(userID, refID string) string {
	return fmt.Sprintf("enhance:limit:post:%s:%s", userID, refID)
}

func dailyKey(userID string) string {
	return fmt.Sprintf("enhance:limit:daily:%s", userID)
}

// TryAcquire checks both quotas before a provider call. When a quota is
// exhausted it returns a rate-limited error carrying the seconds until
// the next attempt can succeed.
func (l *Limiter) TryAcquire(ctx context.Context, userID, refID string, cfg LimitConfig) error {
	now := l.now().Unix()
	window := int64(cfg.PostWindowSeconds)

	stamps, err := l.loadStamps(ctx, userID, refID)
	if err != nil {
		return err
	}
	live := pruneStamps(stamps, now, window)
	if cfg.PostLimit > 0 && len(live) >= cfg.PostLimit {
		retryAfter := live[0] + window - now
		if retryAfter < 1 {
			retryAfter = 1
		}
		return &Error{
			Kind:       KindRateLimited,
			Message:    "too many attempts for this content, slow down",
			RetryAfter: int(retryAfter),
		}
	}

	day, err := l.loadDaily(ctx, userID)
	if err != nil {
		return err
	}
	if day.Start > 0 && now-day.Start < dailyWindowSeconds && cfg.DailyLimit > 0 && day.Count >= cfg.DailyLimit {
		retryAfter := day.Start + dailyWindowSeconds - now
		if retryAfter < 1 {
			retryAfter = 1
		}
		return &Error{
			Kind:       KindRateLimited,
			Message:    "daily enhancement quota reached",
			RetryAfter: int(retryAfter),
		}
	}

	return nil
}

// Record charges one attempt against both quotas.
func (l *Limiter) Record(ctx context.Context, userID, refID string, cfg LimitConfig) error {
	now := l.now().Unix()
	window := int64(cfg.PostWindowSeconds)

	stamps, err := l.loadStamps(ctx, userID, refID)
	if err != nil {
		return err
	}
	live := append(pruneStamps(stamps, now, window), now)
	raw, err := json.Marshal(live)
	if err != nil {
		return err
	}
	if err := l.kv.Set(ctx, postKey(userID, refID), string(raw), time.Duration(window)*time.Second); err != nil {
		return err
	}

	day, err := l.loadDaily(ctx, userID)
	if err != nil {
		return err
	}
	if day.Start == 0 || now-day.Start >= dailyWindowSeconds {
		day = dailyWindow{Start: now, Count: 0}
	}
	day.Count++
	rawDay, err := json.Marshal(day)
	if err != nil {
		return err
	}
	remaining := day.Start + dailyWindowSeconds - now
	return l.kv.Set(ctx, dailyKey(userID), string(rawDay), time.Duration(remaining)*time.Second)
}

func (l *Limiter) loadStamps(ctx context.Context, userID, refID string) ([]int64, error) {
	raw, err := l.kv.Get(ctx, postKey(userID, refID))
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var stamps []int64
	if err := json.Unmarshal([]byte(raw), &stamps); err != nil {
		return nil, nil
	}
	return stamps, nil
}

func (l *Limiter) loadDaily(ctx context.Context, userID string) (dailyWindow, error) {
	raw, err := l.kv.Get(ctx, dailyKey(userID))
	if err != nil {
		return dailyWindow{}, err
	}
	if raw == "" {
		return dailyWindow{}, nil
	}
	var day dailyWindow
	if err := json.Unmarshal([]byte(raw), &day); err != nil {
		return dailyWindow{}, nil
	}
	return day, nil
}

// pruneStamps keeps timestamps still inside the window, oldest first.
func pruneStamps(stamps []int64, now, window int64) []int64 {
	out := make([]int64, 0, len(stamps))
	for _, ts := range stamps {
		if now-ts < window {
			out = append(out, ts)
		}
	}
	return out
}
