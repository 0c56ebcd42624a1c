package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// GetWorks sends GET /works/ with params as query
func (c *Client) GetWorks(ctx context.Context, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/works/", params, nil)
}

// GetMyWorks lists the works of the logged-in author
func (c *Client) GetMyWorks(ctx context.Context, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/works/my-works/", params, nil)
}

func (c *Client) GetWorkDetail(ctx context.Context, workID int) (*Response, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/works/%d/", workID), nil, nil)
}

func (c *Client) CreateWork(ctx context.Context, data any) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/works/", nil, data)
}

func (c *Client) UpdateWork(ctx context.Context, workID int, data any) (*Response, error) {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/works/%d/update/", workID), nil, data)
}

func (c *Client) DeleteWork(ctx context.Context, workID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/works/%d/", workID), nil, nil)
}

func (c *Client) GetWorkMetrics(ctx context.Context, workID int) (*Response, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/works/%d/metrics/", workID), nil, nil)
}

func (c *Client) GetChapters(ctx context.Context, workID int) (*Response, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/works/%d/chapters/", workID), nil, nil)
}

func (c *Client) GetChapterDetail(ctx context.Context, workID, chapterID int) (*Response, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/works/%d/chapters/%d/", workID, chapterID), nil, nil)
}

func (c *Client) CreateChapter(ctx context.Context, workID int, data any) (*Response, error) {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/works/%d/chapters/create/", workID), nil, data)
}

func (c *Client) UpdateChapter(ctx context.Context, workID, chapterID int, data any) (*Response, error) {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/works/%d/chapters/%d/", workID, chapterID), nil, data)
}

func (c *Client) DeleteChapter(ctx context.Context, workID, chapterID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/works/%d/chapters/%d/delete/", workID, chapterID), nil, nil)
}

// SubscribeChapter buys access to a paid chapter
func (c *Client) SubscribeChapter(ctx context.Context, workID, chapterID int) (*Response, error) {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/works/%d/chapters/%d/subscribe/", workID, chapterID), nil, nil)
}

func (c *Client) GetComments(ctx context.Context, workID int, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/works/%d/comments/", workID), params, nil)
}

func (c *Client) AddComment(ctx context.Context, workID int, data any) (*Response, error) {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/works/%d/comments/create/", workID), nil, data)
}

func (c *Client) UpdateComment(ctx context.Context, workID, commentID int, data any) (*Response, error) {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/works/%d/comments/%d/", workID, commentID), nil, data)
}

func (c *Client) DeleteComment(ctx context.Context, workID, commentID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/works/%d/comments/%d/delete/", workID, commentID), nil, nil)
}

func (c *Client) LikeComment(ctx context.Context, workID, commentID int) (*Response, error) {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/works/%d/comments/%d/like/", workID, commentID), nil, nil)
}

// GetCommentHistory lists the comments written by the logged-in user
func (c *Client) GetCommentHistory(ctx context.Context, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/comments/history/", params, nil)
}

func (c *Client) DeleteUserComment(ctx context.Context, commentID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/comments/%d/delete/", commentID), nil, nil)
}

// GetCommentThread returns a comment with its replies
func (c *Client) GetCommentThread(ctx context.Context, commentID int) (*Response, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/comments/%d/", commentID), nil, nil)
}

func (c *Client) VoteWork(ctx context.Context, workID int, data any) (*Response, error) {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/works/%d/vote/", workID), nil, data)
}

func (c *Client) GetVoteRecords(ctx context.Context, workID int, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/works/%d/votes/", workID), params, nil)
}
