package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"tubecron/internal/config"
	"tubecron/internal/pipeline"
	"tubecron/internal/services"
)

const maxPageSize = 50

// LikedVideos pages through videos the user rated "like".
type LikedVideos struct {
	videos   *ytapi.VideosService
	pageSize int64
}

// NewLikedVideos builds a Data API client on top of an authorized HTTP
// client. cfg.APIBaseURL is the API root; the client appends youtube/v3.
func NewLikedVideos(ctx context.Context, client *http.Client, cfg config.YouTube) (*LikedVideos, error) {
	if client == nil {
		client = http.DefaultClient
	}
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if base := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/"); base != "" {
		opts = append(opts, option.WithEndpoint(base+"/"))
	}
	svc, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "discovery", "build youtube client", "", err)
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return &LikedVideos{videos: svc.Videos, pageSize: int64(pageSize)}, nil
}

// LikedPage fetches one page. An empty pageToken requests the first page.
func (l *LikedVideos) LikedPage(ctx context.Context, pageToken string) (pipeline.Page, error) {
	call := l.videos.List([]string{"snippet", "contentDetails"}).
		MyRating("like").
		MaxResults(l.pageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	resp, err := call.Do()
	if err != nil {
		return pipeline.Page{}, classifyAPIError(err)
	}

	page := pipeline.Page{NextPageToken: resp.NextPageToken}
	for _, item := range resp.Items {
		if item == nil {
			continue
		}
		candidate := pipeline.Candidate{ID: item.Id}
		if item.Snippet != nil {
			candidate.Title = item.Snippet.Title
		}
		page.Candidates = append(page.Candidates, candidate)
	}
	return page, nil
}

// classifyAPIError maps rejected credentials to a configuration error and
// everything else to a transient one.
func classifyAPIError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return services.Wrap(services.ErrTransient, "discovery", "list liked videos", "", err)
	}
	marker := services.ErrTransient
	if apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden {
		marker = services.ErrConfiguration
	}
	message := strings.TrimSpace(apiErr.Message)
	if message == "" {
		message = strings.TrimSpace(apiErr.Body)
	}
	return services.Wrap(marker, "discovery", "list liked videos",
		fmt.Sprintf("http %d: %s", apiErr.Code, message), nil)
}

// All collects every liked video across pages.
func (l *LikedVideos) All(ctx context.Context) ([]pipeline.Candidate, error) {
	var (
		all   []pipeline.Candidate
		token string
	)
	seen := map[string]struct{}{}
	for {
		page, err := l.LikedPage(ctx, token)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Candidates...)
		token = page.NextPageToken
		if token == "" {
			return all, nil
		}
		if _, ok := seen[token]; ok {
			return nil, fmt.Errorf("youtube: page token %q repeated", token)
		}
		seen[token] = struct{}{}
	}
}
