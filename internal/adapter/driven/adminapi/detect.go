package adminapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/ericfisherdev/detectpanel/internal/domain/model"
)

// maxDetectionBody caps the detection response; it may embed a base64 image.
const maxDetectionBody = 32 << 20

// Detect posts an image to the consumer-facing detection endpoint. It
// authenticates with the credential's secret in X-API-Key, not with the
// operator's bearer token.
func (c *Client) Detect(ctx context.Context, apiKey string, file model.File) (model.DetectionResult, error) {
	body, contentType, err := multipartBody(file, nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	query := url.Values{"include_visual": {"true"}}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/detect", query, body, "")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-API-Key", apiKey)

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detecting %q: %w", file.Name, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDetectionBody))
	if err != nil {
		return nil, fmt.Errorf("reading detection result: %w", err)
	}
	if !json.Valid(data) {
		return nil, errors.New("detection result is not valid JSON")
	}
	return model.DetectionResult(data), nil
}
