package videostream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Client errors
var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrTrackNotFound = errors.New("track not found")
)

// Client handles communication with the video provider API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	streamBase string
	apiToken   string
}

// Config holds configuration for the video provider client.
type Config struct {
	BaseURL       string
	StreamBaseURL string
	APIToken      string
	Timeout       time.Duration
}

// NewClient creates a new video provider API client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.video.example.com/v1"
	}
	if cfg.StreamBaseURL == "" {
		cfg.StreamBaseURL = "https://stream.video.example.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		streamBase: strings.TrimRight(cfg.StreamBaseURL, "/"),
		apiToken:   cfg.APIToken,
	}
}

// makeAPIRequest sends one authenticated request and decodes the JSON
// response into result (which may be nil for delete calls).
func (c *Client) makeAPIRequest(ctx context.Context, method, path string, body, result interface{}) error {
	fullURL := c.baseURL + path

	// Inherit deadlines but not request-scoped values; auth middleware
	// metadata must not leak to the provider.
	cleanCtx := context.Background()
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		cleanCtx, cancel = context.WithDeadline(cleanCtx, deadline)
		defer cancel()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(cleanCtx, method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrAssetNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[ERROR] Video provider returned status %d for %s %s", resp.StatusCode, method, fullURL)
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// GetAsset fetches an asset with its playback IDs and tracks.
func (c *Client) GetAsset(ctx context.Context, assetID string) (*Asset, error) {
	if assetID == "" {
		return nil, fmt.Errorf("asset ID cannot be empty")
	}
	var envelope assetEnvelope
	if err := c.makeAPIRequest(ctx, http.MethodGet, "/assets/"+assetID, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// FindAutoTextTrack returns the asset's provider-generated subtitle track, or
// ErrTrackNotFound if the provider has not produced one yet.
func FindAutoTextTrack(asset *Asset) (*Track, error) {
	for i := range asset.Tracks {
		track := &asset.Tracks[i]
		if track.Type == "text" && track.TextType == "subtitles" && track.TextSource == "generated_vod" {
			return track, nil
		}
	}
	return nil, ErrTrackNotFound
}

// CreateTextTrack attaches a subtitle track to an asset. The provider pulls
// the file from params.URL.
func (c *Client) CreateTextTrack(ctx context.Context, assetID string, params TextTrackParams) (*Track, error) {
	if params.Type == "" {
		params.Type = "text"
	}
	if params.TextType == "" {
		params.TextType = "subtitles"
	}
	var envelope trackEnvelope
	path := fmt.Sprintf("/assets/%s/tracks", assetID)
	if err := c.makeAPIRequest(ctx, http.MethodPost, path, params, &envelope); err != nil {
		return nil, err
	}
	log.Printf("[DEBUG] Attached %s text track %s to asset %s", params.LanguageCode, envelope.Data.ID, assetID)
	return &envelope.Data, nil
}

// DeleteTextTrack removes a track from an asset.
func (c *Client) DeleteTextTrack(ctx context.Context, assetID, trackID string) error {
	path := fmt.Sprintf("/assets/%s/tracks/%s", assetID, trackID)
	return c.makeAPIRequest(ctx, http.MethodDelete, path, nil, nil)
}

// CreateLiveStream provisions a live stream with a public playback ID.
func (c *Client) CreateLiveStream(ctx context.Context) (*LiveStream, error) {
	body := map[string]interface{}{
		"playback_policy": []string{"public"},
		"new_asset_settings": map[string]interface{}{
			"playback_policy": []string{"public"},
		},
	}
	var envelope liveStreamEnvelope
	if err := c.makeAPIRequest(ctx, http.MethodPost, "/live-streams", body, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// DeleteLiveStream tears down a live stream.
func (c *Client) DeleteLiveStream(ctx context.Context, streamID string) error {
	return c.makeAPIRequest(ctx, http.MethodDelete, "/live-streams/"+streamID, nil, nil)
}

// DownloadTextTrack fetches the WebVTT file for a track from the streaming
// endpoint.
func (c *Client) DownloadTextTrack(ctx context.Context, playbackID, trackID string) ([]byte, error) {
	fullURL := fmt.Sprintf("%s/%s/text/%s.vtt", c.streamBase, playbackID, trackID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading track: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrTrackNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("track download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading track body: %w", err)
	}
	return data, nil
}
