package backend

import (
	"context"
	"fmt"
	"net/http"
)

// ListImages returns the whole gallery; the backend does not paginate it.
func (c *Client) ListImages(ctx context.Context) ([]Image, error) {
	var images []Image
	if err := c.doJSON(ctx, http.MethodGet, "/api/images", nil, nil, &images); err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}

// UploadImage sends one file to the gallery as multipart field "file".
func (c *Client) UploadImage(ctx context.Context, f File) error {
	if err := c.doMultipart(ctx, http.MethodPost, "/api/images/upload", nil, "file", &f, nil); err != nil {
		return fmt.Errorf("failed to upload image: %w", err)
	}
	return nil
}

// SearchFaces submits a reference image and returns matches ranked by similarity.
func (c *Client) SearchFaces(ctx context.Context, f File) ([]SearchResult, error) {
	var out struct {
		Results []SearchResult `json:"results"`
	}
	if err := c.doMultipart(ctx, http.MethodPost, "/api/search", nil, "file", &f, &out); err != nil {
		return nil, fmt.Errorf("failed to search faces: %w", err)
	}
	return out.Results, nil
}
