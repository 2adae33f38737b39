// Package storage provides a client for the object storage holding
// enrollment photos and classroom frames (Supabase-compatible storage API).
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kozaktomas/face-attendance/internal/constants"
)

const downloadTimeout = 30 * time.Second

// Client represents a client for the storage API.
type Client struct {
	parsedURL *url.URL
	key       string
	client    *http.Client
}

// New creates a storage client for the given base URL and API key.
func New(baseURL, key string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("storage URL is required")
	}
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid storage URL: %w", err)
	}
	return &Client{
		parsedURL: parsed,
		key:       key,
		client:    &http.Client{Timeout: downloadTimeout},
	}, nil
}

// resolveURL builds a full URL from the base URL and the given path segments.
func (c *Client) resolveURL(pathSegments ...string) string {
	return c.parsedURL.JoinPath(pathSegments...).String()
}

// readErrorBody reads the response body for error messages.
// Returns a placeholder if reading fails (we're already in an error path).
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(r)
	if err != nil {
		return "(could not read error body)"
	}
	return string(body)
}

// listEntry is one item in a bucket listing. Entries with null metadata are
// folders, everything else is a file.
type listEntry struct {
	Name     string          `json:"name"`
	Metadata json.RawMessage `json:"metadata"`
}

func (e listEntry) isFolder() bool {
	return len(e.Metadata) == 0 || string(e.Metadata) == "null"
}

// listRequest is the body of an object listing request.
type listRequest struct {
	Prefix string `json:"prefix"`
	Limit  int    `json:"limit"`
}

// listPrefix lists the immediate children of one prefix in a bucket.
func (c *Client) listPrefix(ctx context.Context, bucket, prefix string) ([]listEntry, error) {
	reqBody, err := json.Marshal(listRequest{Prefix: prefix, Limit: constants.StorageListPageSize})
	if err != nil {
		return nil, fmt.Errorf("could not marshal request body: %w", err)
	}

	reqURL := c.resolveURL("storage", "v1", "object", "list", bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var entries []listEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return entries, nil
}

// List recursively lists all file paths under a prefix in a bucket.
// Folders are walked depth-first; the resulting order is stable for a
// given bucket state.
func (c *Client) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	var results []string
	stack := []string{prefix}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := c.listPrefix(ctx, bucket, current)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			if entry.Name == "" {
				continue
			}
			fullPath := entry.Name
			if current != "" {
				fullPath = current + "/" + entry.Name
			}
			if entry.isFolder() {
				stack = append(stack, fullPath)
			} else {
				results = append(results, fullPath)
			}
		}
	}

	return results, nil
}

// Download fetches one object's bytes from a bucket.
func (c *Client) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	reqURL := c.resolveURL("storage", "v1", "object", bucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.key)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	return data, nil
}
