package opengraph

import "strings"

// ImageURL derives the canonical social-preview image URL from a post
// title. The build pipeline names generated images with the same
// transform, so every call site must produce bit-for-bit identical
// output: lowercase, every rune outside [a-z0-9] becomes a single '-',
// consecutive replacements are not collapsed.
func ImageURL(title, baseURL string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return baseURL + "/generated/1200x630-" + b.String() + ".webp"
}
