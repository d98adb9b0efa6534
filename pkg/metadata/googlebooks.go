package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const googleBooksBaseURL = "https://www.googleapis.com"

// GoogleBooksSource queries the Google Books volumes API by ISBN.
type GoogleBooksSource struct {
	baseURL string
	client  *http.Client
}

// NewGoogleBooksSource builds the source. An empty baseURL selects the
// public API endpoint.
func NewGoogleBooksSource(baseURL string, client *http.Client) *GoogleBooksSource {
	if baseURL == "" {
		baseURL = googleBooksBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoogleBooksSource{baseURL: baseURL, client: client}
}

func (s *GoogleBooksSource) Name() string { return "googlebooks" }

type googleVolumeInfo struct {
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Publisher   string   `json:"publisher"`
	Categories  []string `json:"categories"`
	Description string   `json:"description"`
	ImageLinks  struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"imageLinks"`
}

type googleVolumesResponse struct {
	Items []struct {
		VolumeInfo googleVolumeInfo `json:"volumeInfo"`
	} `json:"items"`
}

// Lookup fetches the first matching volume for the ISBN.
func (s *GoogleBooksSource) Lookup(ctx context.Context, isbn string) (Metadata, bool, error) {
	endpoint := fmt.Sprintf("%s/books/v1/volumes?q=%s", s.baseURL, url.QueryEscape("isbn:"+isbn))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Metadata{}, false, err
	}
	req.Header.Set("User-Agent", "Bookventory/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Metadata{}, false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Metadata{}, false, fmt.Errorf("googlebooks: status %d", resp.StatusCode)
	}
	var payload googleVolumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Metadata{}, false, fmt.Errorf("googlebooks: decode: %w", err)
	}
	if len(payload.Items) == 0 {
		return Metadata{}, false, nil
	}
	info := payload.Items[0].VolumeInfo
	return Metadata{
		Title:     orPlaceholder(info.Title),
		Author:    joinOrPlaceholder(info.Authors),
		Publisher: orPlaceholder(info.Publisher),
		Genre:     joinOrPlaceholder(info.Categories),
		Summary:   info.Description,
		CoverURL:  info.ImageLinks.Thumbnail,
	}, true, nil
}
