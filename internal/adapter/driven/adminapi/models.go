package adminapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ericfisherdev/detectpanel/internal/domain/model"
	"github.com/ericfisherdev/detectpanel/internal/domain/port/driven"
)

// FetchDashboardStats returns the aggregate usage snapshot.
func (c *Client) FetchDashboardStats(ctx context.Context, token string) (*model.DashboardStats, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/admin/stats/dashboard", nil, nil, token)
	if err != nil {
		return nil, err
	}

	var s statsJSON
	if err := c.do(c.http, req, &s); err != nil {
		return nil, err
	}
	return mapStats(s), nil
}

// FetchRequestLogs returns one page of the detection request log.
func (c *Client) FetchRequestLogs(ctx context.Context, token string, q model.RequestLogQuery) ([]model.RequestLog, error) {
	query := url.Values{}
	if q.Skip > 0 {
		query.Set("skip", strconv.Itoa(q.Skip))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.CredentialID != 0 {
		query.Set("api_key_id", strconv.FormatInt(q.CredentialID, 10))
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/admin/stats/logs", query, nil, token)
	if err != nil {
		return nil, err
	}

	var rows []requestLogJSON
	if err := c.do(c.http, req, &rows); err != nil {
		return nil, err
	}

	logs := make([]model.RequestLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, mapRequestLog(row))
	}
	return logs, nil
}

// ListModels returns every uploaded model.
func (c *Client) ListModels(ctx context.Context, token string) ([]model.DetectorModel, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/admin/models", nil, nil, token)
	if err != nil {
		return nil, err
	}

	var rows []modelJSON
	if err := c.do(c.http, req, &rows); err != nil {
		return nil, err
	}

	models := make([]model.DetectorModel, 0, len(rows))
	for _, row := range rows {
		models = append(models, mapModel(row))
	}
	return models, nil
}

// UploadModel streams a model file to the server as multipart form data.
func (c *Client) UploadModel(ctx context.Context, token string, r driven.UploadModelRequest) (*model.DetectorModel, error) {
	var fields map[string]string
	if r.Description != "" {
		fields = map[string]string{"description": r.Description}
	}

	body, contentType, err := multipartBody(r.File, fields)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	req, err := c.newRequest(ctx, http.MethodPost, "/admin/models/upload", nil, body, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var m modelJSON
	if err := c.do(c.stream, req, &m); err != nil {
		return nil, err
	}
	uploaded := mapModel(m)
	return &uploaded, nil
}

// ActivateModel makes the given model the one used for detection.
func (c *Client) ActivateModel(ctx context.Context, token string, id int64) error {
	req, err := c.newRequest(ctx, http.MethodPatch, modelPath(id, "/activate"), nil, nil, token)
	if err != nil {
		return err
	}
	return c.do(c.http, req, nil)
}

// DeleteModel removes a model. The server refuses to delete the active model.
func (c *Client) DeleteModel(ctx context.Context, token string, id int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, modelPath(id, ""), nil, nil, token)
	if err != nil {
		return err
	}
	return c.do(c.http, req, nil)
}

// DownloadModel copies the model file into w and returns the bytes written.
func (c *Client) DownloadModel(ctx context.Context, token string, id int64, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, modelPath(id, "/download"), nil, nil, token)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		return 0, fmt.Errorf("downloading model %d: %w", id, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return 0, err
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("downloading model %d: %w", id, err)
	}
	return n, nil
}

func modelPath(id int64, suffix string) string {
	return "/admin/models/" + strconv.FormatInt(id, 10) + suffix
}
