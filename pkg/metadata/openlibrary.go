package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const openLibraryBaseURL = "https://openlibrary.org"

// OpenLibrarySource queries the Open Library books API by ISBN.
type OpenLibrarySource struct {
	baseURL string
	client  *http.Client
}

// NewOpenLibrarySource builds the source. An empty baseURL selects the
// public API endpoint.
func NewOpenLibrarySource(baseURL string, client *http.Client) *OpenLibrarySource {
	if baseURL == "" {
		baseURL = openLibraryBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &OpenLibrarySource{baseURL: baseURL, client: client}
}

func (s *OpenLibrarySource) Name() string { return "openlibrary" }

type openLibraryNamed struct {
	Name string `json:"name"`
}

type openLibraryRecord struct {
	Title      string             `json:"title"`
	Authors    []openLibraryNamed `json:"authors"`
	Publishers []openLibraryNamed `json:"publishers"`
	Subjects   []openLibraryNamed `json:"subjects"`
	Excerpts   []struct {
		Text string `json:"text"`
	} `json:"excerpts"`
	Cover struct {
		Medium string `json:"medium"`
	} `json:"cover"`
}

// Lookup fetches the data record keyed "ISBN:<isbn>".
func (s *OpenLibrarySource) Lookup(ctx context.Context, isbn string) (Metadata, bool, error) {
	endpoint := fmt.Sprintf("%s/api/books?bibkeys=ISBN:%s&format=json&jscmd=data", s.baseURL, isbn)
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
		return Metadata{}, false, fmt.Errorf("openlibrary: status %d", resp.StatusCode)
	}
	var payload map[string]openLibraryRecord
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Metadata{}, false, fmt.Errorf("openlibrary: decode: %w", err)
	}
	record, ok := payload["ISBN:"+isbn]
	if !ok {
		return Metadata{}, false, nil
	}
	summary := ""
	if len(record.Excerpts) > 0 {
		summary = record.Excerpts[0].Text
	}
	return Metadata{
		Title:     orPlaceholder(record.Title),
		Author:    joinOrPlaceholder(names(record.Authors)),
		Publisher: joinOrPlaceholder(names(record.Publishers)),
		Genre:     joinOrPlaceholder(names(record.Subjects)),
		Summary:   summary,
		CoverURL:  record.Cover.Medium,
	}, true, nil
}

func names(list []openLibraryNamed) []string {
	res := make([]string, 0, len(list))
	for _, item := range list {
		if item.Name != "" {
			res = append(res, item.Name)
		}
	}
	return res
}
