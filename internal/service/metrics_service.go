package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"blog-edge/internal/domain"
	apperrors "blog-edge/pkg/errors"
	"blog-edge/pkg/kv"
	"blog-edge/pkg/logger"
)

const maxBatchSize = 50

// MetricsService ingests Web Vitals samples into the shared store and
// maintains hourly rollups per metric.
//
// The rollup update is a plain read-modify-write: two concurrent writers
// to the same bucket can race and the last put wins. That imprecision is
// accepted for performance analytics. The rate-limit counters use the
// store's atomic INCR, which removes the same race where the store can.
type MetricsService struct {
	store  *kv.Client
	logger *logger.Logger
	now    func() time.Time
}

// NewMetricsService creates a new metrics service
func NewMetricsService(store *kv.Client, logger *logger.Logger) *MetricsService {
	return &MetricsService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Ingest validates, rate-limits and persists one sample, then folds it
// into its hourly rollup. Returns an AppError for validation and
// rate-limit rejections.
func (s *MetricsService) Ingest(ctx context.Context, sample domain.MetricSample, clientIP string) error {
	if err := validateSample(sample); err != nil {
		return err
	}

	nowMs := s.now().UnixMilli()
	limitKey := s.store.KeyBuilder.KeyRateLimit(clientIP, kv.HourBucket(nowMs))

	count, err := s.counter(ctx, limitKey)
	if err != nil {
		return apperrors.NewInternalError("failed to check rate limit", err)
	}
	if count >= kv.MaxMetricsPerHour {
		return apperrors.NewRateLimitError("Rate limit exceeded")
	}

	if err := s.persistSample(ctx, sample, clientIP, false, nowMs); err != nil {
		return apperrors.NewInternalError("failed to store metric", err)
	}

	if err := s.bumpCounter(ctx, limitKey); err != nil {
		// The sample is already stored; losing one counter tick only
		// loosens an advisory limit
		s.logger.WithError(err).Warn("Failed to update rate limit counter")
	}

	return nil
}

// IngestBatch processes up to maxBatchSize samples from one request.
// Individual failures are counted, never fatal; partial success is the
// normal outcome. Total reports the submitted count including anything
// beyond the cap.
func (s *MetricsService) IngestBatch(ctx context.Context, samples []domain.MetricSample, clientIP string) (*domain.BatchResult, error) {
	if len(samples) == 0 {
		return nil, apperrors.NewValidationError("No metrics provided", nil)
	}

	nowMs := s.now().UnixMilli()
	limitKey := s.store.KeyBuilder.KeyBatchLimit(clientIP, kv.HourBucket(nowMs))

	count, err := s.counter(ctx, limitKey)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to check rate limit", err)
	}
	if count >= kv.MaxBatchMetricsPerHour {
		return nil, apperrors.NewRateLimitError("Batch rate limit exceeded")
	}

	result := &domain.BatchResult{Success: true, Total: len(samples)}

	batch := samples
	if len(batch) > maxBatchSize {
		batch = batch[:maxBatchSize]
	}

	for _, sample := range batch {
		if err := validateSample(sample); err != nil {
			result.Errors++
			continue
		}
		if err := s.persistSample(ctx, sample, clientIP, true, nowMs); err != nil {
			s.logger.WithError(err).Warn("Failed to process batch sample")
			result.Errors++
			continue
		}
		result.Processed++
	}

	if result.Processed > 0 {
		if _, err := s.store.IncrBy(ctx, limitKey, int64(result.Processed)); err != nil {
			s.logger.WithError(err).Warn("Failed to update batch rate limit counter")
		} else if err := s.store.Expire(ctx, limitKey, kv.TTLRateLimit); err != nil {
			s.logger.WithError(err).Warn("Failed to set TTL on batch rate limit counter")
		}
	}

	return result, nil
}

// Rollup returns the aggregate for one (metric, hour) bucket, used by
// tests and any future analytics read path
func (s *MetricsService) Rollup(ctx context.Context, metric string, hourBucket int64) (*domain.HourlyRollup, error) {
	raw, err := s.store.Get(ctx, s.store.KeyBuilder.KeyHourlyRollup(metric, hourBucket))
	if err == kv.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load rollup: %w", err)
	}
	var rollup domain.HourlyRollup
	if err := json.Unmarshal([]byte(raw), &rollup); err != nil {
		return nil, fmt.Errorf("parse rollup: %w", err)
	}
	return &rollup, nil
}

func validateSample(sample domain.MetricSample) error {
	missing := map[string]interface{}{}
	if sample.Metric == "" {
		missing["metric"] = "required"
	}
	if sample.Value == nil {
		missing["value"] = "required"
	}
	if sample.URL == "" {
		missing["url"] = "required"
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("Missing required fields", missing)
	}
	return nil
}

// persistSample stores the raw sample and applies the rollup
// read-modify-write
func (s *MetricsService) persistSample(ctx context.Context, sample domain.MetricSample, clientIP string, batch bool, nowMs int64) error {
	ts := sample.Timestamp
	if !plausibleTimestamp(ts, nowMs) {
		ts = nowMs
	}
	sample.Timestamp = ts

	stored := domain.StoredSample{
		MetricSample:   sample,
		ClientIP:       clientIP,
		Received:       nowMs,
		BatchProcessed: batch,
	}

	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}

	sampleKey := s.store.KeyBuilder.KeyMetricSample(ts, uuid.NewString()[:9])
	if err := s.store.Set(ctx, sampleKey, payload, kv.TTLMetricSample); err != nil {
		return fmt.Errorf("store sample: %w", err)
	}

	return s.updateRollup(ctx, sample, nowMs)
}

// updateRollup performs the non-atomic get/modify/put on the hourly
// bucket. Last write wins under concurrency.
func (s *MetricsService) updateRollup(ctx context.Context, sample domain.MetricSample, nowMs int64) error {
	key := s.store.KeyBuilder.KeyHourlyRollup(sample.Metric, kv.HourBucket(sample.Timestamp))

	var rollup domain.HourlyRollup
	raw, err := s.store.Get(ctx, key)
	if err != nil && err != kv.Nil {
		return fmt.Errorf("load rollup: %w", err)
	}
	if err == nil && raw != "" {
		if unmarshalErr := json.Unmarshal([]byte(raw), &rollup); unmarshalErr != nil {
			// Corrupt bucket: start over rather than fail ingestion
			s.logger.WithError(unmarshalErr).WithField("key_metric", sample.Metric).
				Warn("Corrupt hourly rollup, resetting bucket")
			rollup = domain.HourlyRollup{}
		}
	}

	rollup.Observe(*sample.Value, sample.Rating, nowMs)

	payload, err := json.Marshal(rollup)
	if err != nil {
		return fmt.Errorf("marshal rollup: %w", err)
	}
	if err := s.store.Set(ctx, key, payload, kv.TTLHourlyRollup); err != nil {
		return fmt.Errorf("store rollup: %w", err)
	}
	return nil
}

func (s *MetricsService) counter(ctx context.Context, key string) (int64, error) {
	raw, err := s.store.Get(ctx, key)
	if err == kv.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, parseErr := strconv.ParseInt(raw, 10, 64)
	if parseErr != nil {
		return 0, nil
	}
	return n, nil
}

func (s *MetricsService) bumpCounter(ctx context.Context, key string) error {
	n, err := s.store.Incr(ctx, key)
	if err != nil {
		return err
	}
	if n == 1 {
		return s.store.Expire(ctx, key, kv.TTLRateLimit)
	}
	return nil
}

// plausibleTimestamp accepts client timestamps within a generous window
// around receive time; anything else defaults to receive time
func plausibleTimestamp(ts, nowMs int64) bool {
	if ts <= 0 {
		return false
	}
	const (
		maxPast   = 30 * 24 * int64(time.Hour/time.Millisecond)
		maxFuture = 5 * int64(time.Minute/time.Millisecond)
	)
	return ts >= nowMs-maxPast && ts <= nowMs+maxFuture
}
