package repository

import (
	"context"
	"github.com/olivere/elastic/v7"
	"go.uber.org/zap"
	"net/http"
	"time"
)

const (
	searchAttempts = 3
	searchTimeout  = 15 * time.Second
)

var searchBackoff = time.Second

// search retries a search rejected with 429, waiting a little longer after each attempt.
func search(ctx context.Context, searchService *elastic.SearchService) (*elastic.SearchResult, error) {
	var err error
	for attempt := 1; attempt <= searchAttempts; attempt++ {
		var result *elastic.SearchResult
		result, err = searchService.Do(ctx)
		if !elastic.IsStatusCode(err, http.StatusTooManyRequests) {
			return result, err
		}

		zap.L().With(zap.Int("attempt", attempt)).Warn("Elastic: 429 (Too Many Requests)")
		if attempt == searchAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * searchBackoff):
		}
	}

	return nil, err
}
