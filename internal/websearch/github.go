package websearch

import (
	"context"
	"net/http"
	"os"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"hyperserp/internal/models"
)

// GitHub searches repositories by stars as the code-repository source.
// Anonymous access works at a low rate limit; HYPERSERP_GITHUB_TOKEN
// switches to an authenticated client. A proactive limiter keeps the
// unauthenticated quota from being burned by bursts of queries.
type GitHub struct {
	client  *gh.Client
	limiter *rate.Limiter
}

func NewGitHub() *GitHub {
	var hc *http.Client
	if tok := os.Getenv("HYPERSERP_GITHUB_TOKEN"); tok != "" {
		hc = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok}))
		hc.Timeout = sourceTimeout
	} else {
		hc = &http.Client{Timeout: sourceTimeout}
	}
	return &GitHub{
		client:  gh.NewClient(hc),
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (g *GitHub) Name() string { return "github" }

func (g *GitHub) Search(ctx context.Context, query string, limit int) ([]models.WebHit, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	res, _, err := g.client.Search.Repositories(ctx, query, &gh.SearchOptions{
		Sort:        "stars",
		ListOptions: gh.ListOptions{PerPage: limit},
	})
	if err != nil {
		return nil, err
	}
	var hits []models.WebHit
	for _, repo := range res.Repositories {
		if len(hits) >= limit {
			break
		}
		if repo.GetHTMLURL() == "" {
			continue
		}
		hits = append(hits, models.WebHit{
			Title:   repo.GetFullName(),
			URL:     repo.GetHTMLURL(),
			Snippet: repo.GetDescription(),
		})
	}
	return hits, nil
}
