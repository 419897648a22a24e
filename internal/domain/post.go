package domain

// PostMetadata is one entry of the pre-generated blog-metadata.json
// snapshot, keyed by slug
type PostMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Author      string   `json:"author"`
	PubDate     string   `json:"pubDate"`
	Tags        []string `json:"tags"`
}

// BlogPost is a snapshot entry flattened for the read APIs, with the slug
// and canonical URLs attached
type BlogPost struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Author      string   `json:"author"`
	PubDate     string   `json:"pubDate"`
	Tags        []string `json:"tags"`
	URL         string   `json:"url"`
	APIURL      string   `json:"apiUrl,omitempty"`
}

// RenderDecision is the per-request branch of the crawler pipeline.
// If IsCrawler is false no metadata fetch is attempted.
type RenderDecision struct {
	IsCrawler bool
	Slug      string
	Metadata  *PostMetadata
}
