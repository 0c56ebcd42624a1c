package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

func (c *Client) FetchAdminUsers(ctx context.Context, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/admin/users/", params, nil)
}

func (c *Client) UpdateUserPermissions(ctx context.Context, userID int, data any) (*Response, error) {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/users/%d/permissions/", userID), nil, data)
}

func (c *Client) FetchAdminWorks(ctx context.Context, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/admin/works/", params, nil)
}

func (c *Client) UpdateWorkModeration(ctx context.Context, workID int, data any) (*Response, error) {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/works/%d/moderation/", workID), nil, data)
}

func (c *Client) UpdateChapterStatus(ctx context.Context, chapterID int, data any) (*Response, error) {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/chapters/%d/status/", chapterID), nil, data)
}

func (c *Client) FetchAdminComments(ctx context.Context, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/admin/comments/", params, nil)
}

// DeleteAdminComment removes a comment; data (for example a moderation reason) is sent as the DELETE body
func (c *Client) DeleteAdminComment(ctx context.Context, commentID int, data any) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/comments/%d/", commentID), nil, data)
}

func (c *Client) FetchAdminActionLogs(ctx context.Context, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/admin/action-logs/", params, nil)
}

func (c *Client) FetchUserActionLogs(ctx context.Context, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/admin/user-action-logs/", params, nil)
}
