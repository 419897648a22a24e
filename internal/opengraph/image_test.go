package opengraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageURL(t *testing.T) {
	const base = "https://haasonsaas.com"

	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{
			name:     "Simple title",
			title:    "Hello World",
			expected: base + "/generated/1200x630-hello-world.webp",
		},
		{
			name:     "Punctuation produces uncollapsed hyphens",
			title:    "The 100x Developer: What I Learned",
			expected: base + "/generated/1200x630-the-100x-developer--what-i-learned.webp",
		},
		{
			name:     "Uppercase is lowered",
			title:    "SaaS Metrics",
			expected: base + "/generated/1200x630-saas-metrics.webp",
		},
		{
			name:     "Digits survive",
			title:    "2024 in review",
			expected: base + "/generated/1200x630-2024-in-review.webp",
		},
		{
			name:     "Empty title",
			title:    "",
			expected: base + "/generated/1200x630-.webp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ImageURL(tt.title, base))
		})
	}
}

func TestImageURL_Deterministic(t *testing.T) {
	// Preview tags and the post API must emit the exact same URL for the
	// same title
	first := ImageURL("Pricing & Packaging (Part 2)", "https://haasonsaas.com")
	second := ImageURL("Pricing & Packaging (Part 2)", "https://haasonsaas.com")
	assert.Equal(t, first, second)
	assert.Equal(t, "https://haasonsaas.com/generated/1200x630-pricing---packaging--part-2-.webp", first)
}
