// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package pocketbase

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// FileToken returns a short-lived token that grants the current auth
// access to protected files.
func (c *Client) FileToken(ctx context.Context) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/api/files/token", nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// OpenFile downloads a record file. A non-empty fileToken unlocks files the
// collection's view rule hides.
func (c *Client) OpenFile(ctx context.Context, collection, recordID, filename, fileToken string) (io.ReadCloser, error) {
	var query url.Values
	if fileToken != "" {
		query = url.Values{"token": {fileToken}}
	}

	resp, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/files/" + url.PathEscape(collection) + "/" + url.PathEscape(recordID) + "/" + url.PathEscape(filename),
		query:  query,
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
