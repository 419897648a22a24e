package kv

import (
	"fmt"
	"time"
)

// Key format constants. Hour buckets are unix-ms timestamps divided by
// 3600000 so they line up with the rollup windows the client reports in.
const (
	// Metrics related keys
	KeyMetricSample  = "metric:%d:%s"           // metric:{timestamp_ms}:{suffix}
	KeyHourlyRollup  = "hourly:%s:%d"           // hourly:{metric}:{hour_bucket}
	KeyRateLimit     = "rate_limit:%s:%d"       // rate_limit:{ip}:{hour_bucket}
	KeyBatchLimit    = "batch_rate_limit:%s:%d" // batch_rate_limit:{ip}:{hour_bucket}

	// Newsletter related keys
	KeySubscriber     = "subscriber:%s"          // subscriber:{email}
	KeySubscribeLimit = "subscribe_limit:%s:%d"  // subscribe_limit:{ip}:{hour_bucket}

	// Feedback related keys
	KeyFeedback      = "feedback:%s"           // feedback:{id}
	KeyFeedbackLimit = "feedback_limit:%s:%d"  // feedback_limit:{ip}:{minute_bucket}
)

// TTL constants
const (
	TTLMetricSample = 30 * 24 * time.Hour // raw samples kept 30 days
	TTLHourlyRollup = 30 * 24 * time.Hour // rollups expire 30 days after last write
	TTLRateLimit    = time.Hour           // rate-limit window
	TTLSubscriber   = 0                   // subscribers never expire
	TTLFeedback     = 90 * 24 * time.Hour
	TTLFeedbackWin  = time.Minute
)

// Rate limit caps
const (
	MaxMetricsPerHour      = 100  // single-sample ingestion
	MaxBatchMetricsPerHour = 1000 // batch ingestion
	MaxSubscribesPerHour   = 5
	MaxFeedbackPerMinute   = 3
)

// KeyBuilder provides environment-aware key building so staging and
// production can share one store
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with an environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}
	return &KeyBuilder{prefix: prefix}
}

// BuildKey constructs a store key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// HourBucket converts a unix-ms timestamp to its hourly bucket
func HourBucket(timestampMs int64) int64 {
	return timestampMs / 3600000
}

// MinuteBucket converts a unix-ms timestamp to its minute bucket
func MinuteBucket(timestampMs int64) int64 {
	return timestampMs / 60000
}

// Metrics key builders

func (kb *KeyBuilder) KeyMetricSample(timestampMs int64, suffix string) string {
	return kb.BuildKey(fmt.Sprintf(KeyMetricSample, timestampMs, suffix))
}

func (kb *KeyBuilder) KeyHourlyRollup(metric string, hourBucket int64) string {
	return kb.BuildKey(fmt.Sprintf(KeyHourlyRollup, metric, hourBucket))
}

func (kb *KeyBuilder) KeyRateLimit(clientIP string, hourBucket int64) string {
	return kb.BuildKey(fmt.Sprintf(KeyRateLimit, clientIP, hourBucket))
}

func (kb *KeyBuilder) KeyBatchLimit(clientIP string, hourBucket int64) string {
	return kb.BuildKey(fmt.Sprintf(KeyBatchLimit, clientIP, hourBucket))
}

// Newsletter key builders

func (kb *KeyBuilder) KeySubscriber(email string) string {
	return kb.BuildKey(fmt.Sprintf(KeySubscriber, email))
}

func (kb *KeyBuilder) KeySubscribeLimit(clientIP string, hourBucket int64) string {
	return kb.BuildKey(fmt.Sprintf(KeySubscribeLimit, clientIP, hourBucket))
}

// Feedback key builders

func (kb *KeyBuilder) KeyFeedback(id string) string {
	return kb.BuildKey(fmt.Sprintf(KeyFeedback, id))
}

func (kb *KeyBuilder) KeyFeedbackLimit(clientIP string, minuteBucket int64) string {
	return kb.BuildKey(fmt.Sprintf(KeyFeedbackLimit, clientIP, minuteBucket))
}
