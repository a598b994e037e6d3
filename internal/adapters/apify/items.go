package apify

import (
	"net/url"
	"strings"

	"trendpipe/internal/core/domain"
)

// datasetItem is the subset of a TikTok scraper result we read.
type datasetItem struct {
	ID          string `json:"id"`
	WebVideoURL string `json:"webVideoUrl"`
	AuthorMeta  struct {
		Name string `json:"name"`
	} `json:"authorMeta"`
}

// descriptor maps an item to a VideoDescriptor. Missing fields are recovered
// from webVideoUrl when possible; items without an ID are dropped.
func (it datasetItem) descriptor() (domain.VideoDescriptor, bool) {
	v := domain.VideoDescriptor{ID: it.ID, Author: it.AuthorMeta.Name}
	if v.ID == "" || v.Author == "" {
		author, id := parseVideoURL(it.WebVideoURL)
		if v.ID == "" {
			v.ID = id
		}
		if v.Author == "" {
			v.Author = author
		}
	}
	return v, v.ID != ""
}

// parseVideoURL splits https://www.tiktok.com/@<author>/video/<id>.
func parseVideoURL(raw string) (author, id string) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 3 || !strings.HasPrefix(parts[0], "@") || parts[1] != "video" {
		return "", ""
	}
	return strings.TrimPrefix(parts[0], "@"), parts[2]
}
