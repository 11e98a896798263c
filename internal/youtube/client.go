// Package youtube talks to the YouTube Data API v3 search and videos
// endpoints on behalf of the broadcast aggregation pipeline.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/steve2482/simspeedserver/internal/metrics"
)

const maxBodyBytes = 4 << 20

// ErrVideoNotFound is returned by Video when the id matches no item.
var ErrVideoNotFound = errors.New("youtube: video not found")

// UpstreamError reports a failed call to the YouTube API: transport
// failure, non-2xx status, or an undecodable body.
type UpstreamError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("youtube %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("youtube %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Client issues search and video-detail calls. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient builds a client against baseURL (no trailing slash). A zero
// timeout leaves requests bounded only by their context.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// Search runs one search call for a single channel and returns the first
// page. No further pages are fetched.
func (c *Client) Search(ctx context.Context, p SearchParams) (*SearchPage, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("channelId", p.ChannelID)
	q.Set("eventType", string(p.EventType))
	q.Set("type", "video")
	if p.MaxResults > 0 {
		q.Set("maxResults", strconv.Itoa(p.MaxResults))
	}
	if p.Order != "" {
		q.Set("order", p.Order)
	}
	if p.PageToken != "" {
		q.Set("pageToken", p.PageToken)
	}

	body, err := c.get(ctx, "search", q)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, c.fail("search", &UpstreamError{Op: "search", Err: fmt.Errorf("decode: %w", err)})
	}

	page := &SearchPage{
		Raw:           json.RawMessage(body),
		VideoIDs:      make([]string, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	for _, item := range resp.Items {
		if item.ID.VideoID != "" {
			page.VideoIDs = append(page.VideoIDs, item.ID.VideoID)
		}
	}
	return page, nil
}

// Video fetches snippet and live-streaming details for one video id.
func (c *Client) Video(ctx context.Context, videoID string) (*Video, error) {
	q := url.Values{}
	q.Set("part", "snippet,liveStreamingDetails")
	q.Set("id", videoID)

	body, err := c.get(ctx, "videos", q)
	if err != nil {
		return nil, err
	}

	var resp videosResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, c.fail("videos", &UpstreamError{Op: "videos", Err: fmt.Errorf("decode: %w", err)})
	}
	if len(resp.Items) == 0 {
		return nil, ErrVideoNotFound
	}
	v := resp.Items[0]
	if v.ID == "" {
		v.ID = videoID
	}
	return &v, nil
}

func (c *Client) get(ctx context.Context, op string, q url.Values) ([]byte, error) {
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	start := time.Now()
	defer func() {
		metrics.UpstreamDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+op+"?"+q.Encode(), nil)
	if err != nil {
		return nil, c.fail(op, &UpstreamError{Op: op, Err: err})
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(op, &UpstreamError{Op: op, Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.fail(op, &UpstreamError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(op, &UpstreamError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(snippet(body))})
	}
	if !json.Valid(body) {
		return nil, c.fail(op, &UpstreamError{Op: op, StatusCode: resp.StatusCode, Err: errors.New("malformed JSON body")})
	}

	metrics.UpstreamRequests.WithLabelValues(op, "ok").Inc()
	return body, nil
}

func (c *Client) fail(op string, err *UpstreamError) error {
	metrics.UpstreamRequests.WithLabelValues(op, "error").Inc()
	return err
}

func snippet(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit])
	}
	return string(body)
}
