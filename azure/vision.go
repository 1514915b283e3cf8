// Package azure is a client for the Azure Computer Vision image analysis
// REST API.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jaldrishti/jaldrishti"
)

const (
	analyzePath    = "/vision/v3.2/analyze"
	visualFeatures = "Tags,Description,Color"
	serviceName    = "azure_vision"

	// DefaultTimeout bounds a single analysis call.
	DefaultTimeout = 15 * time.Second
)

// Ensure client implements interface.
var _ jaldrishti.VisionTagger = (*Client)(nil)

// Client tags images with Azure Computer Vision.
type Client struct {
	endpoint   string
	key        string
	httpClient *http.Client
}

// NewClient creates a client. An empty endpoint or key yields a client that
// reports ErrNotConfigured on every call.
func NewClient(endpoint, key string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		key:        key,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.endpoint != "" && c.key != ""
}

type analyzeResponse struct {
	Tags []struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"tags"`
	Description struct {
		Tags     []string `json:"tags"`
		Captions []struct {
			Text       string  `json:"text"`
			Confidence float64 `json:"confidence"`
		} `json:"captions"`
	} `json:"description"`
	Color struct {
		DominantColors []string `json:"dominantColors"`
	} `json:"color"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// TagImage sends the image bytes for tag, caption and colour analysis.
func (c *Client) TagImage(ctx context.Context, image []byte) (*jaldrishti.TagResult, error) {
	if !c.Configured() {
		return nil, jaldrishti.ErrNotConfigured
	}

	u, err := url.Parse(c.endpoint + analyzePath)
	if err != nil {
		return nil, fmt.Errorf("parsing azure endpoint: %w", err)
	}
	q := u.Query()
	q.Set("visualFeatures", visualFeatures)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("creating azure request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, jaldrishti.Upstream(serviceName, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, jaldrishti.Upstream(serviceName, resp.StatusCode, readError(resp.Body))
	}

	var body analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, jaldrishti.Upstream(serviceName, resp.StatusCode, fmt.Errorf("decoding response: %w", err))
	}

	result := &jaldrishti.TagResult{
		Tags:           make([]jaldrishti.Tag, 0, len(body.Tags)),
		Captions:       make([]jaldrishti.Caption, 0, len(body.Description.Captions)),
		DominantColors: body.Color.DominantColors,
	}
	for _, t := range body.Tags {
		result.Tags = append(result.Tags, jaldrishti.Tag{Name: t.Name, Confidence: t.Confidence})
	}
	for _, caption := range body.Description.Captions {
		result.Captions = append(result.Captions, jaldrishti.Caption{Text: caption.Text, Confidence: caption.Confidence})
	}
	return result, nil
}

func readError(r io.Reader) error {
	var e errorResponse
	data, _ := io.ReadAll(io.LimitReader(r, 4096))
	if err := json.Unmarshal(data, &e); err == nil && e.Error.Message != "" {
		return fmt.Errorf("%s: %s", e.Error.Code, e.Error.Message)
	}
	return errors.New(strings.TrimSpace(string(data)))
}
