package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// ErrUnsupportedLanguage indicates the service rejected the language pair.
var ErrUnsupportedLanguage = errors.New("unsupported language pair")

// Client handles communication with the translation service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Config holds configuration for the translation client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a new translation client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://translate.example.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
	}
}

type translateRequest struct {
	Q      []string `json:"q"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Format string   `json:"format"`
	APIKey string   `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText []string `json:"translatedText"`
	Error          string   `json:"error,omitempty"`
}

// Translate translates a single text fragment.
func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	results, err := c.TranslateBatch(ctx, []string{text}, source, target)
	if err != nil {
		return "", err
	}
	return results[0], nil
}

// TranslateBatch translates the fragments in order. The response always has
// the same length as the input.
func (c *Client) TranslateBatch(ctx context.Context, texts []string, source, target string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if source == "" || target == "" {
		return nil, fmt.Errorf("source and target languages are required")
	}

	body, err := json.Marshal(translateRequest{
		Q:      texts,
		Source: source,
		Target: target,
		Format: "text",
		APIKey: c.apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return nil, ErrUnsupportedLanguage
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("[ERROR] Translation service returned status %d for %s->%s batch of %d",
			resp.StatusCode, source, target, len(texts))
		return nil, fmt.Errorf("translation service returned status %d", resp.StatusCode)
	}

	var decoded translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("translation service error: %s", decoded.Error)
	}
	if len(decoded.TranslatedText) != len(texts) {
		return nil, fmt.Errorf("translation count mismatch: sent %d, got %d", len(texts), len(decoded.TranslatedText))
	}
	return decoded.TranslatedText, nil
}
