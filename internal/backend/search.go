package backend

import (
	"context"
	"net/http"

	"github.com/thedittmer/briefly/internal/models"
)

// Search posts the query to {basePath}/search/results/. A missing
// "articles" field yields an empty, non-nil slice.
func (c *Client) Search(ctx context.Context, q models.SearchQuery) ([]models.Article, error) {
	var resp models.SearchResponse
	if err := c.sendJSON(ctx, http.MethodPost, c.pageURL("search/results/"), q, &resp); err != nil {
		return nil, err
	}
	if resp.Articles == nil {
		return []models.Article{}, nil
	}
	return resp.Articles, nil
}
