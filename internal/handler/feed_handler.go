package handler

import (
	"encoding/xml"
	"net/http"
	"time"

	"blog-edge/internal/opengraph"
	"blog-edge/internal/service"
	"blog-edge/pkg/logger"
)

const feedItemLimit = 20

// FeedHandler serves RSS and Atom feeds generated from the metadata
// snapshot
type FeedHandler struct {
	catalog *service.CatalogService
	site    opengraph.Site
	logger  *logger.Logger
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(catalog *service.CatalogService, site opengraph.Site, logger *logger.Logger) *FeedHandler {
	return &FeedHandler{catalog: catalog, site: site, logger: logger}
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	XMLNS   string      `xml:"xmlns,attr"`
	Title   string      `xml:"title"`
	Link    atomLink    `xml:"link"`
	Updated string      `xml:"updated"`
	ID      string      `xml:"id"`
	Entries []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
}

type atomEntry struct {
	Title   string   `xml:"title"`
	Link    atomLink `xml:"link"`
	ID      string   `xml:"id"`
	Updated string   `xml:"updated,omitempty"`
	Summary string   `xml:"summary"`
}

// RSS handles GET /rss.xml
func (h *FeedHandler) RSS(w http.ResponseWriter, r *http.Request) {
	page := h.catalog.List(r.Context(), service.ListParams{Limit: feedItemLimit})

	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:       h.site.Name,
			Link:        h.site.BaseURL,
			Description: h.site.Name + " blog feed",
		},
	}
	for _, post := range page.Posts {
		item := rssItem{
			Title:       post.Title,
			Link:        post.URL,
			Description: post.Description,
			GUID:        post.URL,
		}
		if t := parseFeedDate(post.PubDate); !t.IsZero() {
			item.PubDate = t.Format(time.RFC1123Z)
		}
		feed.Channel.Items = append(feed.Channel.Items, item)
	}

	h.writeFeed(w, feed, "application/rss+xml; charset=utf-8")
}

// Atom handles GET /atom.xml
func (h *FeedHandler) Atom(w http.ResponseWriter, r *http.Request) {
	page := h.catalog.List(r.Context(), service.ListParams{Limit: feedItemLimit})

	feed := atomFeed{
		XMLNS:   "http://www.w3.org/2005/Atom",
		Title:   h.site.Name,
		Link:    atomLink{Href: h.site.BaseURL},
		Updated: time.Now().UTC().Format(time.RFC3339),
		ID:      h.site.BaseURL + "/",
	}
	for _, post := range page.Posts {
		entry := atomEntry{
			Title:   post.Title,
			Link:    atomLink{Href: post.URL},
			ID:      post.URL,
			Summary: post.Description,
		}
		if t := parseFeedDate(post.PubDate); !t.IsZero() {
			entry.Updated = t.UTC().Format(time.RFC3339)
		}
		feed.Entries = append(feed.Entries, entry)
	}

	h.writeFeed(w, feed, "application/atom+xml; charset=utf-8")
}

func (h *FeedHandler) writeFeed(w http.ResponseWriter, feed interface{}, contentType string) {
	out, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate feed")
		http.Error(w, "Error generating feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600, s-maxage=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(append([]byte(xml.Header), out...)); err != nil {
		h.logger.WithError(err).Debug("Failed to write feed response")
	}
}

func parseFeedDate(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
