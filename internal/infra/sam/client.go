// Package sam is the HTTP adapter to a SAM2 inference server. The server
// is expected to share a filesystem with this process (it reads source
// images and extracted frame directories by path) and to return masks as
// base64 row-major byte grids.
package sam

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pangeans/unprompted/internal/domain/entity"
)

type Client struct {
	baseURL string
	device  string
	http    *http.Client
	logger  *zap.Logger

	stateID string
}

type ClientConfig struct {
	BaseURL string
	Device  string
	Timeout time.Duration
}

func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		device:  cfg.Device,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// wireMask is the mask representation on the wire: Data is base64 over
// Height*Width row-major bytes, one byte per pixel, non-zero inside the
// region.
type wireMask struct {
	Height int    `json:"height"`
	Width  int    `json:"width"`
	Data   string `json:"data"`
}

func (w wireMask) decode() (entity.Mask, error) {
	bits, err := base64.StdEncoding.DecodeString(w.Data)
	if err != nil {
		return entity.Mask{}, fmt.Errorf("decode mask data: %w", err)
	}
	if len(bits) != w.Height*w.Width {
		return entity.Mask{}, fmt.Errorf("mask data length %d does not match %dx%d", len(bits), w.Width, w.Height)
	}
	return entity.Mask{Width: w.Width, Height: w.Height, Bits: bits}, nil
}

func (c *Client) post(ctx context.Context, path string, reqBody, respBody any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, bytes.TrimSpace(body))
	}

	if respBody == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// stream POSTs and hands the raw response body to fn for incremental
// decoding.
func (c *Client) stream(ctx context.Context, path string, reqBody any, fn func(io.Reader) error) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, bytes.TrimSpace(body))
	}

	return fn(resp.Body)
}
