package enrich

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/tshell/aidigest/internal/news"
)

const minExtractedLen = 200

// Enricher fetches full article text for the top-ranked candidates so the
// refinement stage sees more than a feed blurb. Failures leave the feed
// summary in place; enrichment is strictly best-effort.
type Enricher struct {
	client *http.Client
	topN   int
}

// New creates an enricher for the first topN ranked items.
func New(timeout time.Duration, topN int) *Enricher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Enricher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		topN: topN,
	}
}

// Enrich fills Content for up to topN items with a usable URL. Once a domain
// fails, remaining items from it are skipped for the run. Returns the number
// of items enriched.
func (e *Enricher) Enrich(items []news.ScoredItem) int {
	failedDomains := make(map[string]struct{})
	enriched := 0

	limit := e.topN
	if limit > len(items) {
		limit = len(items)
	}

	for i := 0; i < limit; i++ {
		if items[i].URL == "" {
			continue
		}

		domain := ""
		if u, err := url.Parse(items[i].URL); err == nil {
			domain = strings.ToLower(u.Host)
		}
		if _, failed := failedDomains[domain]; failed {
			continue
		}

		text, err := e.extract(items[i].URL)
		if err != nil {
			if domain != "" {
				failedDomains[domain] = struct{}{}
			}
			log.Printf("Enrich failed for %s, skipping remaining from %s", items[i].URL, domain)
			continue
		}
		if text == "" {
			log.Printf("No extractable content from %s", items[i].URL)
			continue
		}

		items[i].Content = text
		enriched++
	}

	if enriched > 0 {
		log.Printf("Enriched %d of top %d items", enriched, limit)
	}
	return enriched
}

func (e *Enricher) extract(articleURL string) (string, error) {
	req, err := http.NewRequest("GET", articleURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "aidigest/1.0 (news aggregator)")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	parsedURL, _ := url.Parse(articleURL)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) < minExtractedLen {
		return "", nil
	}
	return text, nil
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}
