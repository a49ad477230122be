package matting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultRemoteURL = "https://api.remove.bg/v1.0/removebg"
	remoteTimeout    = 60 * time.Second
)

// APIError is a non-success response from the remote matting service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remove.bg API error (HTTP %d): %s", e.StatusCode, e.Message)
}

// RemoteClient talks to a remove.bg compatible endpoint.
type RemoteClient struct {
	url        string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewRemoteClient(url, apiKey string, logger *slog.Logger) *RemoteClient {
	if url == "" {
		url = DefaultRemoteURL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RemoteClient{
		url:    url,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: remoteTimeout,
		},
		logger: logger,
	}
}

// Remove uploads the image at inPath and writes the matted PNG to outPath.
func (c *RemoteClient) Remove(ctx context.Context, inPath, outPath string) error {
	body, contentType, err := multipartImage(inPath)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Api-Key", c.apiKey)

	c.logger.Info("sending image to remote matting",
		"url", c.url,
		"file", filepath.Base(inPath),
		"body_bytes", body.Len(),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	return writeFileAtomic(outPath, resp.Body)
}

func multipartImage(path string) (*bytes.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image_file", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if err := mw.WriteField("size", "auto"); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

type apiErrorBody struct {
	Errors []struct {
		Title string `json:"title"`
	} `json:"errors"`
}

// errorMessage extracts the first error title, falling back to the raw body.
func errorMessage(body []byte) string {
	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Errors) > 0 && parsed.Errors[0].Title != "" {
		return parsed.Errors[0].Title
	}
	return string(body)
}

// writeFileAtomic streams r into a sibling temp file and renames it over dst.
func writeFileAtomic(dst string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".matting-*.png")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	_, err = io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write result: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish result: %w", err)
	}
	return nil
}
