// Package storage uploads caption files to the object store and resolves
// their public URLs.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"

	storage_go "github.com/supabase-community/storage-go"
)

// Store is the narrow interface the caption pipeline needs.
type Store interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error)
}

// Client wraps the object storage SDK.
type Client struct {
	client *storage_go.Client
}

// Config holds object storage connection settings.
type Config struct {
	BaseURL    string
	ServiceKey string
}

// NewClient creates a storage client. The service key authenticates uploads.
func NewClient(cfg Config) *Client {
	return &Client{
		client: storage_go.NewClient(cfg.BaseURL, cfg.ServiceKey, nil),
	}
}

// Upload stores the file under bucket/key, overwriting any previous version,
// and returns its public URL. The SDK does not take a context; the caller's
// deadline bounds the surrounding job instead.
func (c *Client) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	upsert := true
	options := storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}
	if _, err := c.client.UploadFile(bucket, key, bytes.NewReader(data), options); err != nil {
		return "", fmt.Errorf("uploading %s/%s: %w", bucket, key, err)
	}

	public := c.client.GetPublicUrl(bucket, key)
	log.Printf("[DEBUG] Uploaded %s/%s (%d bytes)", bucket, key, len(data))
	return public.SignedURL, nil
}
