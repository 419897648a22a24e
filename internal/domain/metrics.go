package domain

// MetricSample is one Web Vitals observation posted by the client.
// Value is a pointer so a missing field can be told apart from zero
// (CLS legitimately reports 0).
type MetricSample struct {
	Type       string   `json:"type,omitempty"`
	Metric     string   `json:"metric"`
	Value      *float64 `json:"value"`
	Rating     string   `json:"rating"`
	URL        string   `json:"url"`
	Timestamp  int64    `json:"timestamp"`
	UserAgent  string   `json:"userAgent"`
	Connection string   `json:"connection"`
}

// StoredSample is the raw sample as persisted, with receive-side fields
type StoredSample struct {
	MetricSample
	ClientIP       string `json:"clientIP"`
	Received       int64  `json:"received"`
	BatchProcessed bool   `json:"batchProcessed,omitempty"`
}

// HourlyRollup is the running aggregate for one (metric, hour) bucket.
// Updated by non-atomic read-modify-write: concurrent writers may lose
// updates, which is accepted for approximate analytics.
type HourlyRollup struct {
	Count       int64            `json:"count"`
	Sum         float64          `json:"sum"`
	Min         float64          `json:"min"`
	Max         float64          `json:"max"`
	Ratings     map[string]int64 `json:"ratings"`
	LastUpdated int64            `json:"lastUpdated"`
}

// Observe folds one value into the rollup. The first observation seeds
// min and max so the struct never carries sentinel infinities, which
// JSON cannot represent.
func (r *HourlyRollup) Observe(value float64, rating string, now int64) {
	if r.Ratings == nil {
		r.Ratings = make(map[string]int64)
	}
	if r.Count == 0 {
		r.Min = value
		r.Max = value
	} else {
		if value < r.Min {
			r.Min = value
		}
		if value > r.Max {
			r.Max = value
		}
	}
	r.Count++
	r.Sum += value
	r.Ratings[rating]++
	r.LastUpdated = now
}

// BatchResult reports the outcome of a batch ingestion. Total is the
// number of samples submitted, including any beyond the processing cap.
type BatchResult struct {
	Success   bool `json:"success"`
	Processed int  `json:"processed"`
	Errors    int  `json:"errors"`
	Total     int  `json:"total"`
}
