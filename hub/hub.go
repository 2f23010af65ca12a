// Package hub fetches pretrained model artifacts from a model hub and caches
// them locally.
package hub

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/schollz/progressbar/v3"
)

const (
	defaultBaseURL  = "https://huggingface.co"
	defaultFilename = "onnx/model.onnx"
	downloadTimeout = 15 * time.Minute
)

type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient creates a hub client. An empty baseURL selects the public
// Hugging Face hub.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:    resty.New().SetTimeout(downloadTimeout),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Resolve returns the local path for a hub reference such as
// "briaai/RMBG-1.4", downloading the artifact into cacheDir on first use.
func (c *Client) Resolve(ctx context.Context, ref, cacheDir string) (string, error) {
	dest := filepath.Join(cacheDir, strings.ReplaceAll(ref, "/", "--"), "model.onnx")
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}

	if err := c.Download(ctx, ref, defaultFilename, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// Download streams one artifact file from the hub to dest. Partial content
// goes to a .part file that is renamed only on success.
func (c *Client) Download(ctx context.Context, ref, file, dest string) error {
	url := fmt.Sprintf("%s/%s/resolve/main/%s", c.baseURL, ref, file)

	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != 200 {
		return fmt.Errorf("download %s: unexpected status %d", url, resp.StatusCode())
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}

	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	bar := progressbar.DefaultBytes(resp.RawResponse.ContentLength, "downloading "+ref)
	_, err = io.Copy(io.MultiWriter(f, bar), body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", dest, err)
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalize %s: %w", dest, err)
	}
	return nil
}
