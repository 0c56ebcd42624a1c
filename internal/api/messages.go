package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// GetMessages lists messages; the response also carries unread_count
func (c *Client) GetMessages(ctx context.Context, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/messages/", params, nil)
}

func (c *Client) MarkMessageRead(ctx context.Context, messageID int) (*Response, error) {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/messages/%d/read/", messageID), nil, nil)
}

func (c *Client) MarkAllMessagesRead(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodPut, "/messages/mark-all-read/", nil, nil)
}

func (c *Client) DeleteMessage(ctx context.Context, messageID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/messages/%d/delete/", messageID), nil, nil)
}

func (c *Client) GetUserPoints(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/points/", nil, nil)
}

func (c *Client) PurchasePoints(ctx context.Context, data any) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/points/purchase/", nil, data)
}

func (c *Client) GetUserSubscriptionRecords(ctx context.Context, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/subscriptions/records/", params, nil)
}

func (c *Client) GetUserVoteRecords(ctx context.Context, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/votes/records/", params, nil)
}
