// pkg/util/gcs.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type GCSClient struct {
	httpClient *http.Client
	bucket     string
	ctx        context.Context
}

// GCSClientConfig holds configuration options for creating a GCS client
type GCSClientConfig struct {
	Context     context.Context // Optional: defaults to context.Background()
	Credentials []byte          // Service account JSON
	Timeout     time.Duration   // Optional: HTTP client timeout; defaults to 30 seconds
}

// MakeGCSClient creates a GCS client with the given bucket and
// configuration; the client is authorized to write objects to the bucket.
func MakeGCSClient(bucket string, config GCSClientConfig) (*GCSClient, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name cannot be empty")
	}

	ctx := config.Context
	if ctx == nil {
		ctx = context.Background()
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	jwtConfig, err := google.JWTConfigFromJSON(
		config.Credentials,
		"https://www.googleapis.com/auth/devstorage.read_write",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	httpClient := oauth2.NewClient(ctx, jwtConfig.TokenSource(ctx))
	httpClient.Timeout = timeout

	return &GCSClient{
		httpClient: httpClient,
		bucket:     bucket,
		ctx:        ctx,
	}, nil
}

// Put uploads the contents of r as the named object in the bucket using
// the GCS JSON API v1.
func (g *GCSClient) Put(objectName string, contentType string, r io.Reader) error {
	if objectName == "" {
		return fmt.Errorf("object name cannot be empty")
	}

	apiURL := fmt.Sprintf("https://storage.googleapis.com/upload/storage/v1/b/%s/o?uploadType=media&name=%s",
		g.bucket, url.QueryEscape(objectName))

	req, err := http.NewRequestWithContext(g.ctx, "POST", apiURL, r)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to upload %s to bucket %s: status %d", objectName, g.bucket, resp.StatusCode)
	}
	return nil
}
