package core

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const loginFailuresPrefix = "login:failures:"

// LoginLimiter counts failed logins per (login, client address) in Redis.
// Failures from one address never lock the login out for other addresses.
// A nil *LoginLimiter never blocks.
type LoginLimiter struct {
	client      redis.Cmdable
	maxFailures int
	window      time.Duration
}

// NewLoginLimiter returns nil when throttling is disabled (no client or maxFailures <= 0).
func NewLoginLimiter(client redis.Cmdable, maxFailures int, window time.Duration) *LoginLimiter {
	if client == nil || maxFailures <= 0 {
		return nil
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginLimiter{client: client, maxFailures: maxFailures, window: window}
}

func loginFailuresKey(login, clientIP string) string {
	return loginFailuresPrefix + strings.ToLower(strings.TrimSpace(login)) + ":" + clientIP
}

// Blocked reports whether login, tried from clientIP, reached the failure limit within the window.
func (l *LoginLimiter) Blocked(ctx context.Context, login, clientIP string) (bool, error) {
	if l == nil {
		return false, nil
	}
	n, err := l.client.Get(ctx, loginFailuresKey(login, clientIP)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, errors.Wrap(err, "read login failures")
	}
	return n >= l.maxFailures, nil
}

// Check returns ErrLoginThrottled while login is locked out.
func (l *LoginLimiter) Check(ctx context.Context, login, clientIP string) error {
	blocked, err := l.Blocked(ctx, login, clientIP)
	if err != nil {
		return err
	}
	if blocked {
		return ErrLoginThrottled
	}
	return nil
}

// RecordFailure counts one failed attempt; the window starts at the first failure.
func (l *LoginLimiter) RecordFailure(ctx context.Context, login, clientIP string) error {
	if l == nil {
		return nil
	}
	key := loginFailuresKey(login, clientIP)
	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return errors.Wrap(err, "record login failure")
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return errors.Wrap(err, "expire login failures")
		}
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, login, clientIP string) error {
	if l == nil {
		return nil
	}
	return errors.Wrap(l.client.Del(ctx, loginFailuresKey(login, clientIP)).Err(), "reset login failures")
}
