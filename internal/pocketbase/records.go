// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package pocketbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
)

// MaxPerPage is the largest page size PocketBase accepts.
const MaxPerPage = 500

// RecordService wraps the record endpoints of one collection.
type RecordService struct {
	client     *Client
	collection string
}

// ListOptions narrows and orders a list request.
type ListOptions struct {
	Filter    string
	Sort      string
	Expand    string
	SkipTotal bool
}

// ListResult is one page of records.
type ListResult struct {
	Items      []json.RawMessage `json:"items"`
	Page       int               `json:"page"`
	PerPage    int               `json:"perPage"`
	TotalItems int               `json:"totalItems"`
	TotalPages int               `json:"totalPages"`
}

// FileField is a file attached to a multipart create or update.
type FileField struct {
	Reader      io.Reader
	Field       string
	Name        string
	ContentType string
}

func (s *RecordService) basePath() string {
	return "/api/collections/" + url.PathEscape(s.collection) + "/records"
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Filter != "" {
		q.Set("filter", o.Filter)
	}
	if o.Sort != "" {
		q.Set("sort", o.Sort)
	}
	if o.Expand != "" {
		q.Set("expand", o.Expand)
	}
	if o.SkipTotal {
		q.Set("skipTotal", "1")
	}
	return q
}

// List returns one page of records.
func (s *RecordService) List(ctx context.Context, page, perPage int, opts ListOptions) (*ListResult, error) {
	q := opts.values()
	q.Set("page", strconv.Itoa(page))
	q.Set("perPage", strconv.Itoa(perPage))

	var result ListResult
	if err := s.client.sendJSON(ctx, http.MethodGet, s.basePath(), q, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetFullList fetches every matching record in pages of batch items.
func (s *RecordService) GetFullList(ctx context.Context, batch int, opts ListOptions) ([]json.RawMessage, error) {
	if batch <= 0 || batch > MaxPerPage {
		batch = MaxPerPage
	}
	opts.SkipTotal = true

	items := []json.RawMessage{}
	for page := 1; ; page++ {
		result, err := s.List(ctx, page, batch, opts)
		if err != nil {
			return nil, err
		}
		items = append(items, result.Items...)
		if len(result.Items) < batch {
			return items, nil
		}
	}
}

// GetFirstListItem returns the first record matching filter.
func (s *RecordService) GetFirstListItem(ctx context.Context, filter string) (json.RawMessage, error) {
	result, err := s.List(ctx, 1, 1, ListOptions{Filter: filter, SkipTotal: true})
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, &Error{Status: http.StatusNotFound, Message: "The requested resource wasn't found."}
	}
	return result.Items[0], nil
}

// GetOne fetches a record by id into out.
func (s *RecordService) GetOne(ctx context.Context, id string, out any) error {
	return s.client.sendJSON(ctx, http.MethodGet, s.basePath()+"/"+url.PathEscape(id), nil, nil, out)
}

// Create stores a record from a JSON body.
func (s *RecordService) Create(ctx context.Context, body map[string]any, out any) error {
	return s.client.sendJSON(ctx, http.MethodPost, s.basePath(), nil, body, out)
}

// CreateMultipart stores a record with file fields.
func (s *RecordService) CreateMultipart(ctx context.Context, fields map[string]string, files []FileField, out any) error {
	body, contentType, err := encodeMultipart(fields, files)
	if err != nil {
		return err
	}
	return s.client.send(ctx, request{
		method:      http.MethodPost,
		path:        s.basePath(),
		body:        body,
		contentType: contentType,
	}, out)
}

// Update patches a record.
func (s *RecordService) Update(ctx context.Context, id string, body map[string]any, out any) error {
	return s.client.sendJSON(ctx, http.MethodPatch, s.basePath()+"/"+url.PathEscape(id), nil, body, out)
}

// Delete removes a record.
func (s *RecordService) Delete(ctx context.Context, id string) error {
	return s.client.sendJSON(ctx, http.MethodDelete, s.basePath()+"/"+url.PathEscape(id), nil, nil, nil)
}

func encodeMultipart(fields map[string]string, files []FileField) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
		if f.ContentType != "" {
			h.Set("Content-Type", f.ContentType)
		}
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return nil, "", fmt.Errorf("copy file %s: %w", f.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
