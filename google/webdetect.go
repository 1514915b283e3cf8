// Package google is a client for the Google Cloud Vision web detection API,
// used to find whether an uploaded image already exists online.
package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jaldrishti/jaldrishti"
)

const (
	// DefaultBaseURL is the production Vision API endpoint.
	DefaultBaseURL = "https://vision.googleapis.com"

	// DefaultTimeout bounds a single lookup.
	DefaultTimeout = 15 * time.Second

	annotatePath = "/v1/images:annotate"
	serviceName  = "google_vision"
	maxResults   = 5
	headerAPIKey = "X-Goog-Api-Key"
)

// Ensure client implements interface.
var _ jaldrishti.WebDetector = (*Client)(nil)

// Client looks up images with WEB_DETECTION.
type Client struct {
	baseURL    string
	key        string
	httpClient *http.Client
}

// NewClient creates a client. An empty key yields a client that reports
// ErrNotConfigured on every call.
func NewClient(key string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    DefaultBaseURL,
		key:        key,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithBaseURL points the client at a different endpoint.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image    imageContent `json:"image"`
	Features []feature    `json:"features"`
}

type imageContent struct {
	Content string `json:"content"`
}

type feature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type webImage struct {
	URL string `json:"url"`
}

type annotateResponse struct {
	Responses []struct {
		WebDetection struct {
			FullMatchingImages    []webImage `json:"fullMatchingImages"`
			PartialMatchingImages []webImage `json:"partialMatchingImages"`
		} `json:"webDetection"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

// FindMatches returns the URLs of full and partial matches, full matches first.
func (c *Client) FindMatches(ctx context.Context, image []byte) ([]string, error) {
	if c.key == "" {
		return nil, jaldrishti.ErrNotConfigured
	}

	payload, err := json.Marshal(annotateRequest{Requests: []imageRequest{{
		Image:    imageContent{Content: base64.StdEncoding.EncodeToString(image)},
		Features: []feature{{Type: "WEB_DETECTION", MaxResults: maxResults}},
	}}})
	if err != nil {
		return nil, fmt.Errorf("encoding web detection request: %w", err)
	}

	u, err := url.Parse(c.baseURL + annotatePath)
	if err != nil {
		return nil, fmt.Errorf("parsing vision endpoint: %w", err)
	}

	// Transport errors quote the URL, so the key must not be in it.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating web detection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerAPIKey, c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, jaldrishti.Upstream(serviceName, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, jaldrishti.Upstream(serviceName, resp.StatusCode, fmt.Errorf("%s", bytes.TrimSpace(data)))
	}

	var body annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, jaldrishti.Upstream(serviceName, resp.StatusCode, fmt.Errorf("decoding response: %w", err))
	}

	matches := []string{}
	for _, r := range body.Responses {
		if r.Error != nil {
			return nil, jaldrishti.Upstream(serviceName, r.Error.Code, fmt.Errorf("%s", r.Error.Message))
		}
		for _, img := range r.WebDetection.FullMatchingImages {
			matches = append(matches, img.URL)
		}
		for _, img := range r.WebDetection.PartialMatchingImages {
			matches = append(matches, img.URL)
		}
	}
	return matches, nil
}
