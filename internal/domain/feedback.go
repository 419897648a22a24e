package domain

// Feedback type and category vocabularies
var (
	FeedbackTypes      = []string{"bug", "suggestion", "compliment", "question"}
	FeedbackCategories = []string{"api", "documentation", "performance", "features", "other"}
)

// Feedback is one persisted feedback submission
type Feedback struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	Endpoint  string `json:"endpoint,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	Contact   string `json:"contact,omitempty"`
	Severity  string `json:"severity,omitempty"`
	Timestamp string `json:"timestamp"`
	ClientIP  string `json:"clientIP,omitempty"`
}
