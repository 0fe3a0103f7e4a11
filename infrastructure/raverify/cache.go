package raverify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/go-redis/redis/v8"
)

// ReplayCache remembers the report-data commitment of every successfully
// verified quote for its freshness window, so a captured-and-replayed
// certificate/report pair can be observed. This is observability, not
// enforcement: the policy decision belongs entirely to §4.3; a replay hit
// is logged, never substituted for a rejection.
type ReplayCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReplayCache wraps an existing Redis client. ttl should normally equal
// the Verifier's configured ReportValiditySecs.
func NewReplayCache(client *redis.Client, ttl time.Duration) *ReplayCache {
	return &ReplayCache{client: client, ttl: ttl}
}

func replayKey(reportData [64]byte) string {
	sum := sha256.Sum256(reportData[:])
	return "raverify:replay:" + hex.EncodeToString(sum[:])
}

// Observe records a verified report-data commitment and reports whether it
// had already been seen within the TTL window.
func (c *ReplayCache) Observe(ctx context.Context, reportData [64]byte) (seenBefore bool, err error) {
	key := replayKey(reportData)
	set, err := c.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), c.ttl).Result()
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Hook returns a Hooks.OnResult function that observes every successful
// verification's report-data commitment. Redis errors are swallowed for
// the same reason as AuditStore.Hook: an optional sink must never affect
// the verification result.
func (c *ReplayCache) Hook(logger interface{ Warn(args ...interface{}) }) func(now time.Time, result *CertVerifyResult, err error) {
	return func(_ time.Time, result *CertVerifyResult, err error) {
		if err != nil || result == nil {
			return
		}
		seen, obsErr := c.Observe(context.Background(), result.Quote.ReportBody.ReportData)
		if obsErr != nil {
			return
		}
		if seen && logger != nil {
			logger.Warn("raverify: replayed attestation report-data observed")
		}
	}
}
