package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

type workRef struct {
	WorkID int `json:"work_id"`
}

type readingRecord struct {
	WorkID    int `json:"work_id"`
	ChapterID int `json:"chapter_id"`
}

func (c *Client) GetBookshelf(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/bookshelf/", nil, nil)
}

func (c *Client) AddToBookshelf(ctx context.Context, workID int) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/bookshelf/add/", nil, workRef{WorkID: workID})
}

func (c *Client) RemoveFromBookshelf(ctx context.Context, workID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/bookshelf/remove/%d/", workID), nil, nil)
}

func (c *Client) GetCollections(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/collections/", nil, nil)
}

func (c *Client) AddCollection(ctx context.Context, workID int) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/collections/", nil, workRef{WorkID: workID})
}

func (c *Client) RemoveCollection(ctx context.Context, workID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/collections/%d/", workID), nil, nil)
}

func (c *Client) GetReadingHistory(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/reading/history/", nil, nil)
}

// UpdateReadingRecord stores the chapter the user last read in a work
func (c *Client) UpdateReadingRecord(ctx context.Context, workID, chapterID int) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/reading-records/", nil, readingRecord{WorkID: workID, ChapterID: chapterID})
}

// GetRankings sends GET /rankings/.
//
// params may be a bare ranking type ("hot", "new", ...) which is sent as type=<value>,
// or url.Values, map[string]string or map[string]any passed through as the query.
// Nil map values are dropped.
func (c *Client) GetRankings(ctx context.Context, params any) (*Response, error) {
	query, err := rankingQuery(params)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodGet, "/rankings/", query, nil)
}

func rankingQuery(params any) (url.Values, error) {
	switch p := params.(type) {
	case nil:
		return nil, nil
	case string:
		return url.Values{"type": []string{p}}, nil
	case url.Values:
		return p, nil
	case map[string]string:
		query := make(url.Values, len(p))
		for key, value := range p {
			query.Set(key, value)
		}
		return query, nil
	case map[string]any:
		query := make(url.Values, len(p))
		for key, value := range p {
			if value == nil {
				continue
			}
			query.Set(key, fmt.Sprint(value))
		}
		return query, nil
	default:
		return nil, fmt.Errorf("unsupported rankings params type %T", params)
	}
}

func (c *Client) GetRecommendations(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/recommendations/", nil, nil)
}

func (c *Client) SendRecommendationFeedback(ctx context.Context, data any) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/recommendations/feedback/", nil, data)
}

func (c *Client) SearchWorks(ctx context.Context, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/search/", params, nil)
}

func (c *Client) GetSearchHistory(ctx context.Context, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/search/history/", params, nil)
}

func (c *Client) GetCategories(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/categories/", nil, nil)
}
