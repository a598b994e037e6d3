package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trendpipe/internal/config"
	"trendpipe/internal/core/domain"
	"trendpipe/internal/core/ports"
)

const (
	statusSucceeded = "SUCCEEDED"
	statusFailed    = "FAILED"
	statusAborted   = "ABORTED"
	statusTimedOut  = "TIMED-OUT"
)

// ApifyScraper implements ports.TrendSource using the Apify REST API and a
// TikTok scraper actor.
type ApifyScraper struct {
	apiToken     string
	baseURL      string
	actorID      string
	hashtag      string
	pageSize     int
	pollInterval time.Duration
	client       *http.Client
}

// NewApifyScraper creates a new ApifyScraper.
func NewApifyScraper(cfg config.ApifyConfig) *ApifyScraper {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	return &ApifyScraper{
		apiToken:     cfg.Token,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		actorID:      cfg.ActorID,
		hashtag:      cfg.Hashtag,
		pageSize:     pageSize,
		pollInterval: cfg.PollInterval(),
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// OpenSession checks that the API token is accepted.
func (s *ApifyScraper) OpenSession(ctx context.Context) (ports.TrendSession, error) {
	if s.apiToken == "" {
		return nil, fmt.Errorf("APIFY_API_TOKEN is not set")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint("/users/me", nil), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach apify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("apify rejected session: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return &session{scraper: s}, nil
}

type session struct {
	scraper *ApifyScraper
}

func (ss *session) Close() error { return nil }

// Trending starts one actor run and yields its dataset items while the run
// is still producing them.
func (ss *session) Trending(ctx context.Context, count int) iter.Seq2[domain.VideoDescriptor, error] {
	s := ss.scraper
	return func(yield func(domain.VideoDescriptor, error) bool) {
		if count <= 0 {
			return
		}

		run, err := s.startActorRun(ctx, count)
		if err != nil {
			yield(domain.VideoDescriptor{}, fmt.Errorf("failed to start actor run: %w", err))
			return
		}

		finished := false
		defer func() {
			if !finished {
				s.abortRun(context.WithoutCancel(ctx), run.ID)
			}
		}()

		offset, emitted := 0, 0
		for {
			status, err := s.runStatus(ctx, run.ID)
			if err != nil {
				yield(domain.VideoDescriptor{}, err)
				return
			}
			switch status {
			case statusFailed, statusAborted, statusTimedOut:
				finished = true
				yield(domain.VideoDescriptor{}, fmt.Errorf("actor run failed with status: %s", status))
				return
			}

			// Drain whatever the dataset holds right now.
			for {
				items, err := s.getDatasetItems(ctx, run.DatasetID, offset, s.pageSize)
				if err != nil {
					yield(domain.VideoDescriptor{}, fmt.Errorf("failed to get results: %w", err))
					return
				}
				offset += len(items)

				for _, item := range items {
					v, ok := item.descriptor()
					if !ok {
						continue
					}
					if !yield(v, nil) {
						return
					}
					emitted++
					if emitted >= count {
						return
					}
				}
				if len(items) < s.pageSize {
					break
				}
			}

			if status == statusSucceeded {
				finished = true
				return
			}

			select {
			case <-ctx.Done():
				yield(domain.VideoDescriptor{}, ctx.Err())
				return
			case <-time.After(s.pollInterval):
			}
		}
	}
}

type actorRun struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	DatasetID string `json:"defaultDatasetId"`
}

func (s *ApifyScraper) startActorRun(ctx context.Context, count int) (*actorRun, error) {
	body, _ := json.Marshal(s.buildInput(count))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint("/acts/"+s.actorID+"/runs", nil), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to start actor: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Data actorRun `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

func (s *ApifyScraper) buildInput(count int) map[string]interface{} {
	return map[string]interface{}{
		"hashtags":                []string{s.hashtag},
		"resultsPerPage":          count,
		"shouldDownloadVideos":    false,
		"shouldDownloadCovers":    false,
		"shouldDownloadSubtitles": false,
	}
}

func (s *ApifyScraper) runStatus(ctx context.Context, runID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint("/actor-runs/"+runID, nil), nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to poll actor run: status %d", resp.StatusCode)
	}

	var status struct {
		Data actorRun `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return "", err
	}
	return status.Data.Status, nil
}

func (s *ApifyScraper) getDatasetItems(ctx context.Context, datasetID string, offset, limit int) ([]datasetItem, error) {
	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))
	query.Set("clean", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint("/datasets/"+datasetID+"/items", query), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var items []datasetItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

// abortRun stops an actor run whose output is no longer needed. Errors are
// ignored; the run times out on Apify's side regardless.
func (s *ApifyScraper) abortRun(ctx context.Context, runID string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint("/actor-runs/"+runID+"/abort", nil), nil)
	if err != nil {
		return
	}
	if resp, err := s.client.Do(req); err == nil {
		resp.Body.Close()
	}
}

func (s *ApifyScraper) endpoint(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("token", s.apiToken)
	return s.baseURL + path + "?" + query.Encode()
}
