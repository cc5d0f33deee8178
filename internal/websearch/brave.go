package websearch

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/url"
	"strings"

	"hyperserp/internal/models"
)

// Brave reads Brave Search's RSS view, which works without API keys.
// Secondary source.
type Brave struct {
	client  *http.Client
	baseURL string
}

func NewBrave() *Brave {
	return &Brave{
		client:  &http.Client{Timeout: sourceTimeout},
		baseURL: "https://search.brave.com/search",
	}
}

func (b *Brave) Name() string { return "brave" }

type rssFeed struct {
	Channel struct {
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			Description string `xml:"description"`
		} `xml:"item"`
	} `xml:"channel"`
}

func (b *Brave) Search(ctx context.Context, query string, limit int) ([]models.WebHit, error) {
	params := url.Values{"q": {query}, "source": {"rss"}}
	body, err := httpGet(ctx, b.client, b.baseURL, params, "application/rss+xml")
	if err != nil {
		return nil, err
	}
	var feed rssFeed
	if err := xml.Unmarshal([]byte(body), &feed); err != nil {
		return nil, err
	}
	var hits []models.WebHit
	for _, item := range feed.Channel.Items {
		if len(hits) >= limit {
			break
		}
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}
		hits = append(hits, models.WebHit{
			Title:   strings.TrimSpace(item.Title),
			URL:     link,
			Snippet: cleanText(item.Description),
		})
	}
	return hits, nil
}
