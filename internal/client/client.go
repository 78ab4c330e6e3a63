package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/digimosa/doc-redact/internal/logging"
	"github.com/digimosa/doc-redact/internal/models"
)

// ErrService is returned for any non-success answer of the detection service.
var ErrService = errors.New("detection service error")

// Client talks to a remote detection service.
type Client struct {
	BaseURL string
	http    *retryablehttp.Client
	log     *logrus.Entry
}

func New(baseURL string) *Client {
	rc := retryablehttp.NewClient()
	rc.Logger = log.New(io.Discard, "", 0)
	rc.RetryMax = 3
	rc.RetryWaitMin = 250 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = 5 * time.Minute
	rc.CheckRetry = retryUnavailable
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		http:    rc,
		log:     logging.Component("client"),
	}
}

// retryUnavailable retries transport failures and gateway errors only.
func retryUnavailable(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}

// Detect uploads the selected file to POST /redact/ and decodes the result.
func (c *Client) Detect(ctx context.Context, file models.SelectedFile) (*models.DetectionResult, error) {
	name := file.Name
	if name == "" {
		name = filepath.Base(file.Path)
	}
	if _, err := os.Stat(file.Path); err != nil {
		return nil, fmt.Errorf("open %s: %w", file.Path, err)
	}

	boundary := multipart.NewWriter(io.Discard).Boundary()
	body := retryablehttp.ReaderFunc(func() (io.Reader, error) {
		pr, pw := io.Pipe()
		mw := multipart.NewWriter(pw)
		if err := mw.SetBoundary(boundary); err != nil {
			return nil, err
		}
		go streamFile(pw, mw, file.Path, name)
		return pr, nil
	})

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/redact/", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, data)
	}

	var result models.DetectionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode detection result: %w", err)
	}
	if result.AuditLog == nil {
		return nil, fmt.Errorf("%w: response has no audit log", ErrService)
	}
	c.log.WithFields(logrus.Fields{"document": name, "run_id": result.RunID}).Debug("detection finished")
	return &result, nil
}

func streamFile(pw *io.PipeWriter, mw *multipart.Writer, path, name string) {
	f, err := os.Open(path)
	if err != nil {
		pw.CloseWithError(err)
		return
	}
	defer f.Close()

	part, err := mw.CreateFormFile("file", name)
	if err == nil {
		_, err = io.Copy(part, f)
	}
	if err == nil {
		err = mw.Close()
	}
	pw.CloseWithError(err)
}

// statusError maps a failed response to an error carrying the server detail.
func statusError(status int, body []byte) error {
	detail := gjson.GetBytes(body, "detail").String()
	if detail == "" {
		detail = http.StatusText(status)
	}
	switch status {
	case http.StatusUnsupportedMediaType:
		return fmt.Errorf("%w (%s)", models.ErrUnsupportedType, detail)
	case http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%w (%s)", models.ErrFileTooLarge, detail)
	}
	return fmt.Errorf("%w: %s (status %d)", ErrService, detail, status)
}
