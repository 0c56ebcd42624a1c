package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// Login sends POST /auth/login/
func (c *Client) Login(ctx context.Context, data any) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/auth/login/", nil, data)
}

// Register sends POST /auth/register/
func (c *Client) Register(ctx context.Context, data any) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/auth/register/", nil, data)
}

// AdminLogin sends POST /admin/auth/login/
func (c *Client) AdminLogin(ctx context.Context, data any) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/admin/auth/login/", nil, data)
}

// AdminRegister sends POST /admin/auth/register/
func (c *Client) AdminRegister(ctx context.Context, data any) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/admin/auth/register/", nil, data)
}

func (c *Client) GetUserInfo(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/auth/user/", nil, nil)
}

func (c *Client) Logout(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/auth/logout/", nil, nil)
}

func (c *Client) GetUserProfile(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/profile/", nil, nil)
}

func (c *Client) UpdateUserProfile(ctx context.Context, data any) (*Response, error) {
	return c.do(ctx, http.MethodPut, "/profile/", nil, data)
}

func (c *Client) GetUserStats(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/profile/stats/", nil, nil)
}

func (c *Client) UpdateContactInfo(ctx context.Context, data any) (*Response, error) {
	return c.do(ctx, http.MethodPut, "/profile/contact/", nil, data)
}

func (c *Client) ChangeUserPassword(ctx context.Context, data any) (*Response, error) {
	return c.do(ctx, http.MethodPut, "/profile/password/", nil, data)
}

func (c *Client) RechargeBalance(ctx context.Context, data any) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/profile/recharge/", nil, data)
}

// UploadAvatar sends the image read from file as multipart field "file" to POST /uploads/avatar/
func (c *Client) UploadAvatar(ctx context.Context, filename string, file io.Reader) (*Response, error) {
	return c.upload(ctx, "/uploads/avatar/", filename, file)
}

// UploadCover sends the image read from file as multipart field "file" to POST /uploads/cover/
func (c *Client) UploadCover(ctx context.Context, filename string, file io.Reader) (*Response, error) {
	return c.upload(ctx, "/uploads/cover/", filename, file)
}

// UploadFieldName is the multipart field the upload endpoints read
const UploadFieldName = "file"

func (c *Client) upload(ctx context.Context, path, filename string, file io.Reader) (*Response, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(UploadFieldName, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to copy upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return c.send(ctx, http.MethodPost, path, nil, &buf, writer.FormDataContentType())
}
