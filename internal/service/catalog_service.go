package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"blog-edge/internal/domain"
	"blog-edge/internal/opengraph"
	"blog-edge/pkg/logger"
)

// CatalogService is the read side over the metadata snapshot: post
// listings, tag counts, search and recommendations. Everything here is a
// pure transform of the snapshot, recomputed per request.
type CatalogService struct {
	metadata *MetadataService
	site     opengraph.Site
	logger   *logger.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(metadata *MetadataService, site opengraph.Site, logger *logger.Logger) *CatalogService {
	return &CatalogService{
		metadata: metadata,
		site:     site,
		logger:   logger,
	}
}

// ListParams filters and paginates the post listing
type ListParams struct {
	Limit  int
	Offset int
	Tag    string
	Author string
}

// PostList is a page of posts plus its pagination envelope
type PostList struct {
	Posts      []domain.BlogPost `json:"posts"`
	Pagination Pagination        `json:"pagination"`
}

// Pagination describes one page of a listing
type Pagination struct {
	Total      int  `json:"total"`
	Offset     int  `json:"offset"`
	Limit      int  `json:"limit"`
	HasMore    bool `json:"hasMore"`
	NextOffset *int `json:"nextOffset"`
}

// TagInfo is one entry of the tag index
type TagInfo struct {
	Tag       string            `json:"tag"`
	Count     int               `json:"count"`
	Slug      string            `json:"slug"`
	URL       string            `json:"url"`
	SearchURL string            `json:"searchUrl"`
	Posts     []domain.BlogPost `json:"posts,omitempty"`
}

// SearchResult is one scored search hit
type SearchResult struct {
	domain.BlogPost
	Relevance float64 `json:"relevance"`
}

// Recommendation is one scored recommendation
type Recommendation struct {
	domain.BlogPost
	Priority       string  `json:"priority"`
	Reason         string  `json:"reason"`
	RelevanceScore float64 `json:"relevanceScore"`
}

// posts flattens the snapshot into BlogPost values, newest first
func (s *CatalogService) posts(ctx context.Context) []domain.BlogPost {
	snapshot := s.metadata.All(ctx)
	posts := make([]domain.BlogPost, 0, len(snapshot))
	for slug, meta := range snapshot {
		tags := meta.Tags
		if tags == nil {
			tags = []string{}
		}
		posts = append(posts, domain.BlogPost{
			Slug:        slug,
			Title:       meta.Title,
			Description: meta.Description,
			Author:      meta.Author,
			PubDate:     meta.PubDate,
			Tags:        tags,
			URL:         s.site.BaseURL + "/blog/" + slug,
			APIURL:      s.site.BaseURL + "/api/posts/" + slug,
		})
	}
	sort.Slice(posts, func(i, j int) bool {
		return parseDate(posts[i].PubDate).After(parseDate(posts[j].PubDate))
	})
	return posts
}

// List returns a filtered, paginated post listing
func (s *CatalogService) List(ctx context.Context, params ListParams) *PostList {
	posts := s.posts(ctx)

	if params.Tag != "" {
		posts = filterPosts(posts, func(p domain.BlogPost) bool {
			for _, t := range p.Tags {
				if strings.EqualFold(t, params.Tag) {
					return true
				}
			}
			return false
		})
	}
	if params.Author != "" {
		needle := strings.ToLower(params.Author)
		posts = filterPosts(posts, func(p domain.BlogPost) bool {
			return strings.Contains(strings.ToLower(p.Author), needle)
		})
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	total := len(posts)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := &PostList{
		Posts: posts[offset:end],
		Pagination: Pagination{
			Total:   total,
			Offset:  offset,
			Limit:   limit,
			HasMore: end < total,
		},
	}
	if page.Pagination.HasMore {
		next := end
		page.Pagination.NextOffset = &next
	}
	return page
}

// Tags returns the tag index. sortBy is "count" or "name"; tags below
// minCount are dropped; includePosts attaches up to five recent posts
// per tag.
func (s *CatalogService) Tags(ctx context.Context, sortBy string, minCount int, includePosts bool) []TagInfo {
	posts := s.posts(ctx)

	counts := map[string]int{}
	byTag := map[string][]domain.BlogPost{}
	for _, post := range posts {
		for _, tag := range post.Tags {
			counts[tag]++
			byTag[tag] = append(byTag[tag], post)
		}
	}
	if minCount < 1 {
		minCount = 1
	}

	tags := make([]TagInfo, 0, len(counts))
	for tag, count := range counts {
		if count < minCount {
			continue
		}
		slug := tagSlug(tag)
		info := TagInfo{
			Tag:       tag,
			Count:     count,
			Slug:      slug,
			URL:       s.site.BaseURL + "/tags/" + slug,
			SearchURL: s.site.BaseURL + "/api/search?tags=" + slug,
		}
		if includePosts {
			related := byTag[tag]
			if len(related) > 5 {
				related = related[:5]
			}
			info.Posts = related
		}
		tags = append(tags, info)
	}

	if sortBy == "name" {
		sort.Slice(tags, func(i, j int) bool { return tags[i].Tag < tags[j].Tag })
	} else {
		sort.Slice(tags, func(i, j int) bool {
			if tags[i].Count != tags[j].Count {
				return tags[i].Count > tags[j].Count
			}
			return tags[i].Tag < tags[j].Tag
		})
	}
	return tags
}

// Search scores posts against a query: title matches weigh most, then
// tags and description, with a recency bonus
func (s *CatalogService) Search(ctx context.Context, query string, limit int) []SearchResult {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []SearchResult{}
	}

	var results []SearchResult
	for _, post := range s.posts(ctx) {
		score := 0.0
		if strings.Contains(strings.ToLower(post.Title), q) {
			score += 10
		}
		if strings.Contains(strings.ToLower(strings.Join(post.Tags, " ")), q) {
			score += 8
		}
		if strings.Contains(strings.ToLower(post.Description), q) {
			score += 5
		}
		score += recencyBonus(post.PubDate, 7, 2)
		if score > 0 {
			results = append(results, SearchResult{BlogPost: post, Relevance: score})
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Relevance > results[j].Relevance })
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []SearchResult{}
	}
	return results
}

// Recommend scores posts against an optional role/topic/experience and
// returns the top matches with a human-readable reason
func (s *CatalogService) Recommend(ctx context.Context, role, topic, experience string, limit int) []Recommendation {
	if limit <= 0 {
		limit = 5
	}
	if limit > 10 {
		limit = 10
	}

	var recs []Recommendation
	for _, post := range s.posts(ctx) {
		score := 0.0
		var reasons []string

		if role != "" && containsTag(post.Tags, role) {
			score += 5
			reasons = append(reasons, "highly relevant for "+role+"s")
		}
		if topic != "" && tagOverlaps(post.Tags, topic) {
			score += 4
			reasons = append(reasons, "covers "+topic+" in depth")
		}
		if experience != "" && containsTag(post.Tags, experience) {
			score += 2
			reasons = append(reasons, "appropriate for "+experience+" level")
		}
		if role == "" && topic == "" && experience == "" {
			score += 3
			reasons = append(reasons, "essential reading for startup professionals")
		}
		score += recencyBonus(post.PubDate, 3, 1)

		if score <= 0 {
			continue
		}

		priority := "low"
		switch {
		case score >= 7:
			priority = "high"
		case score >= 4:
			priority = "medium"
		}

		reason := strings.Join(reasons, ", ")
		if reason == "" {
			reason = "covers important startup concepts"
		}

		recs = append(recs, Recommendation{
			BlogPost:       post,
			Priority:       priority,
			Reason:         reason,
			RelevanceScore: float64(int(score/10*100)) / 100,
		})
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].RelevanceScore > recs[j].RelevanceScore })
	if len(recs) > limit {
		recs = recs[:limit]
	}
	if recs == nil {
		recs = []Recommendation{}
	}
	return recs
}

func filterPosts(posts []domain.BlogPost, keep func(domain.BlogPost) bool) []domain.BlogPost {
	out := posts[:0:0]
	for _, p := range posts {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func tagOverlaps(tags []string, topic string) bool {
	topicLower := strings.ToLower(topic)
	for _, t := range tags {
		tl := strings.ToLower(t)
		if strings.Contains(tl, topicLower) || strings.Contains(topicLower, tl) {
			return true
		}
	}
	return false
}

// tagSlug reuses the image-name transform so tag URLs stay consistent
// with the rest of the site
func tagSlug(tag string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(tag) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

func recencyBonus(pubDate string, recent, moderate float64) float64 {
	published := parseDate(pubDate)
	if published.IsZero() {
		return 0
	}
	age := time.Since(published)
	switch {
	case age <= 30*24*time.Hour:
		return recent
	case age <= 90*24*time.Hour:
		return moderate
	default:
		return 0
	}
}

func parseDate(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
