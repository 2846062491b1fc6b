// Package api uploads exported batch files to a results server.
package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	healthPath = "/healthcheck"
	uploadPath = "/api/v1/batches/add"
)

// StatusError is returned when the server answers with a non-200 status.
type StatusError struct {
	Op   string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Op, e.Code)
}

// UploadMetadata describes the batch an exported file belongs to.
type UploadMetadata struct {
	BatchID  string
	Label    string
	Games    int
	Failed   int
	Duration time.Duration
}

func (m UploadMetadata) fields() [][2]string {
	return [][2]string{
		{"batchId", m.BatchID},
		{"label", m.Label},
		{"games", strconv.Itoa(m.Games)},
		{"failed", strconv.Itoa(m.Failed)},
		{"durationSeconds", strconv.FormatFloat(m.Duration.Seconds(), 'f', 3, 64)},
	}
}

// Client talks to one results server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(req *http.Request, op string) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Op: op, Code: resp.StatusCode}
	}
	return nil
}

// Healthcheck checks that the server is reachable.
func (c *Client) Healthcheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, "healthcheck")
}

// Upload streams a file to the server as a multipart form, along with the
// shared secret and the batch metadata.
func (c *Client) Upload(ctx context.Context, path string, meta UploadMetadata) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	name := filepath.Base(path)
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	written := make(chan error, 1)
	go func() {
		err := writeForm(form, file, name, append([][2]string{
			{"secret", c.apiKey},
			{"filename", name},
		}, meta.fields()...))
		if cerr := form.Close(); err == nil {
			err = cerr
		}
		_ = pw.CloseWithError(err)
		written <- err
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		<-written
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	err = c.do(req, "upload")
	_ = pr.Close()
	if werr := <-written; werr != nil && err == nil {
		return fmt.Errorf("failed to write form: %w", werr)
	}
	return err
}

func writeForm(form *multipart.Writer, file io.Reader, name string, fields [][2]string) error {
	for _, f := range fields {
		if err := form.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}
	part, err := form.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}
