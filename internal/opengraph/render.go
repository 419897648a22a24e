package opengraph

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"blog-edge/internal/domain"
)

// Site carries the fixed site-wide values interpolated into meta markup
type Site struct {
	BaseURL       string
	Name          string
	TwitterHandle string
	DefaultAuthor string
}

// applyDefaults fills the fallbacks required at render time: title and
// description never null-propagate into output, absent author and
// pubDate fall back to fixed defaults.
func applyDefaults(meta domain.PostMetadata, site Site) domain.PostMetadata {
	if meta.Title == "" {
		meta.Title = "Untitled Post"
	}
	if meta.Author == "" {
		meta.Author = site.DefaultAuthor
	}
	if meta.PubDate == "" {
		meta.PubDate = time.Now().UTC().Format(time.RFC3339)
	}
	return meta
}

// MetaTagBlock builds the OpenGraph/Twitter tag set for one post, with
// every interpolated value HTML-escaped. This is the block the head
// injector splices into an existing document.
func MetaTagBlock(slug string, meta domain.PostMetadata, site Site) string {
	meta = applyDefaults(meta, site)

	title := html.EscapeString(meta.Title)
	description := html.EscapeString(meta.Description)
	author := html.EscapeString(meta.Author)
	pubDate := html.EscapeString(meta.PubDate)
	imageURL := html.EscapeString(ImageURL(meta.Title, site.BaseURL))
	pageURL := html.EscapeString(site.BaseURL + "/blog/" + slug)
	siteName := html.EscapeString(site.Name)
	handle := html.EscapeString(site.TwitterHandle)

	var b strings.Builder

	fmt.Fprintf(&b, "    <meta property=\"og:type\" content=\"article\" />\n")
	fmt.Fprintf(&b, "    <meta property=\"og:url\" content=\"%s\" />\n", pageURL)
	fmt.Fprintf(&b, "    <meta property=\"og:title\" content=\"%s\" />\n", title)
	fmt.Fprintf(&b, "    <meta property=\"og:description\" content=\"%s\" />\n", description)
	fmt.Fprintf(&b, "    <meta property=\"og:image\" content=\"%s\" />\n", imageURL)
	fmt.Fprintf(&b, "    <meta property=\"og:image:width\" content=\"1200\" />\n")
	fmt.Fprintf(&b, "    <meta property=\"og:image:height\" content=\"630\" />\n")
	fmt.Fprintf(&b, "    <meta property=\"og:image:type\" content=\"image/webp\" />\n")
	fmt.Fprintf(&b, "    <meta property=\"og:site_name\" content=\"%s\" />\n", siteName)
	fmt.Fprintf(&b, "    <meta property=\"article:author\" content=\"%s\" />\n", author)
	fmt.Fprintf(&b, "    <meta property=\"article:published_time\" content=\"%s\" />\n", pubDate)
	for _, tag := range meta.Tags {
		fmt.Fprintf(&b, "    <meta property=\"article:tag\" content=\"%s\" />\n", html.EscapeString(tag))
	}

	fmt.Fprintf(&b, "    <meta name=\"twitter:card\" content=\"summary_large_image\" />\n")
	fmt.Fprintf(&b, "    <meta name=\"twitter:url\" content=\"%s\" />\n", pageURL)
	fmt.Fprintf(&b, "    <meta name=\"twitter:title\" content=\"%s\" />\n", title)
	fmt.Fprintf(&b, "    <meta name=\"twitter:description\" content=\"%s\" />\n", description)
	fmt.Fprintf(&b, "    <meta name=\"twitter:image\" content=\"%s\" />\n", imageURL)
	fmt.Fprintf(&b, "    <meta name=\"twitter:image:alt\" content=\"%s\" />\n", title)
	fmt.Fprintf(&b, "    <meta name=\"twitter:site\" content=\"%s\" />\n", handle)
	fmt.Fprintf(&b, "    <meta name=\"twitter:creator\" content=\"%s\" />\n", handle)

	fmt.Fprintf(&b, "    <meta name=\"description\" content=\"%s\" />\n", description)
	fmt.Fprintf(&b, "    <meta name=\"author\" content=\"%s\" />\n", author)

	return b.String()
}

// RenderDocument produces the complete HTML document served to crawlers
// on the dedicated blog route. The document stays a valid SPA entry
// point so a human following the shared link still boots the app.
func RenderDocument(slug string, meta domain.PostMetadata, site Site) string {
	meta = applyDefaults(meta, site)

	title := html.EscapeString(meta.Title)
	siteName := html.EscapeString(site.Name)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n  <head>\n")
	b.WriteString("    <meta charset=\"UTF-8\" />\n")
	b.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\" />\n")
	fmt.Fprintf(&b, "    <title>%s | %s</title>\n", title, siteName)
	fmt.Fprintf(&b, "    <meta name=\"title\" content=\"%s | %s\" />\n", title, siteName)

	b.WriteString(MetaTagBlock(slug, meta, site))

	b.WriteString("    <link rel=\"icon\" type=\"image/svg+xml\" href=\"/favicon.svg\" />\n")
	b.WriteString("    <link rel=\"icon\" type=\"image/x-icon\" href=\"/favicon.ico\" />\n")
	fmt.Fprintf(&b, "    <link rel=\"alternate\" type=\"application/rss+xml\" title=\"%s RSS Feed\" href=\"/rss.xml\" />\n", siteName)
	fmt.Fprintf(&b, "    <link rel=\"alternate\" type=\"application/atom+xml\" title=\"%s Atom Feed\" href=\"/atom.xml\" />\n", siteName)

	if ld, err := structuredData(slug, meta, site); err == nil {
		fmt.Fprintf(&b, "    <script type=\"application/ld+json\">%s</script>\n", ld)
	}

	b.WriteString("  </head>\n  <body>\n")
	b.WriteString("    <div id=\"root\"></div>\n")
	b.WriteString("    <script type=\"module\" src=\"/src/main.tsx\"></script>\n")
	b.WriteString("  </body>\n</html>\n")

	return b.String()
}

// structuredData renders the schema.org BlogPosting JSON-LD payload.
// json.Marshal escapes <, > and & by default, which keeps the script
// body safe inside HTML.
func structuredData(slug string, meta domain.PostMetadata, site Site) (string, error) {
	payload := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      meta.Title,
		"description":   meta.Description,
		"url":           site.BaseURL + "/blog/" + slug,
		"datePublished": meta.PubDate,
		"author": map[string]interface{}{
			"@type": "Person",
			"name":  meta.Author,
			"url":   site.BaseURL,
		},
		"publisher": map[string]interface{}{
			"@type": "Organization",
			"name":  site.Name,
			"url":   site.BaseURL,
		},
		"keywords": strings.Join(meta.Tags, ", "),
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
