package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"blog-edge/internal/domain"
	"blog-edge/pkg/assets"
	"blog-edge/pkg/logger"
)

const snapshotPath = "/blog-metadata.json"

// MetadataService loads the pre-generated slug->metadata snapshot from
// the asset origin. The snapshot is immutable within one deploy cycle,
// so the parsed form is cached for the life of the process. Absence and
// fetch failure are both the normal "not found" outcome: callers fall
// back to serving the plain SPA, never an error page.
type MetadataService struct {
	fetcher assets.Fetcher
	logger  *logger.Logger

	mu    sync.RWMutex
	cache map[string]domain.PostMetadata
}

// NewMetadataService creates a new metadata service
func NewMetadataService(fetcher assets.Fetcher, logger *logger.Logger) *MetadataService {
	return &MetadataService{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Get returns the metadata for a slug, or false when the slug is unknown
// or the snapshot cannot be loaded
func (s *MetadataService) Get(ctx context.Context, slug string) (*domain.PostMetadata, bool) {
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Metadata snapshot unavailable, serving default")
		return nil, false
	}
	meta, ok := snapshot[slug]
	if !ok {
		return nil, false
	}
	return &meta, true
}

// All returns every snapshot entry. The order is unspecified; callers
// sort as needed. On failure the list is empty, not an error.
func (s *MetadataService) All(ctx context.Context) map[string]domain.PostMetadata {
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Metadata snapshot unavailable, returning empty post list")
		return map[string]domain.PostMetadata{}
	}
	return snapshot
}

func (s *MetadataService) snapshot(ctx context.Context) (map[string]domain.PostMetadata, error) {
	s.mu.RLock()
	cached := s.cache
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	resp, err := s.fetcher.Fetch(ctx, snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch snapshot: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var parsed map[string]domain.PostMetadata
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	s.mu.Lock()
	s.cache = parsed
	s.mu.Unlock()

	s.logger.WithField("posts", len(parsed)).Info("Blog metadata snapshot loaded")
	return parsed, nil
}
