// Package audio fetches voice-note payloads referenced by webhook messages.
package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// defaultMIMEType is assumed when the source does not report a content type.
// WhatsApp voice notes are Ogg/Opus.
const defaultMIMEType = "audio/ogg"

// Fetcher downloads audio bytes from gs://bucket/object URIs or http(s) URLs.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a fetcher with a bounded HTTP timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch returns the audio bytes and MIME type behind ref.
func (f *Fetcher) Fetch(ctx context.Context, ref string) ([]byte, string, error) {
	if strings.HasPrefix(ref, "gs://") {
		return f.fetchGCS(ctx, ref)
	}
	return f.fetchHTTP(ctx, ref)
}

func (f *Fetcher) fetchGCS(ctx context.Context, uri string) ([]byte, string, error) {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, "", fmt.Errorf("fetchGCS: malformed GCS URI %q", uri)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("fetchGCS: create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(parts[0]).Object(parts[1]).NewReader(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("fetchGCS: open object reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("fetchGCS: read object: %w", err)
	}

	mimeType := r.Attrs.ContentType
	if mimeType == "" {
		mimeType = defaultMIMEType
	}
	return data, mimeType, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("fetchHTTP: build request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetchHTTP: get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetchHTTP: get %s: unexpected status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("fetchHTTP: read body: %w", err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = defaultMIMEType
	}
	return data, mimeType, nil
}
