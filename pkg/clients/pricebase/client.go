package pricebase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/boq/internal/codec"
	"github.com/mamadbah2/boq/internal/config"
)

// Client fetches project documents from a remote price base.
type Client interface {
	FetchDocument(ctx context.Context, path string) (codec.Document, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a price base client using the provided configuration values.
func NewClient(cfg config.PriceBaseConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json, application/yaml").
		SetTimeout(30 * time.Second)
	if cfg.Token != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.Token))
	}

	return &APIClient{httpClient: restyClient}
}

// apiError is the error payload returned by the price base.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// FetchDocument downloads the document at path and decodes it. The encoding
// comes from the path extension, falling back to the response content type.
func (c *APIClient) FetchDocument(ctx context.Context, path string) (codec.Document, error) {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetError(apiErr).
		Get("/" + strings.TrimPrefix(path, "/"))
	if err != nil {
		return codec.Document{}, fmt.Errorf("fetch price base document: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		if message == "" {
			message = strings.TrimSpace(resp.String())
		}
		return codec.Document{}, fmt.Errorf("price base error: code=%d, message=%s", resp.StatusCode(), message)
	}

	format, err := codec.FormatFromPath(path)
	if errors.Is(err, codec.ErrUnknownFormat) {
		format = formatFromContentType(resp.Header().Get("Content-Type"))
	}

	doc, err := codec.Unmarshal(resp.Body(), format)
	if err != nil {
		return codec.Document{}, fmt.Errorf("price base document %s: %w", path, err)
	}
	return doc, nil
}

func formatFromContentType(contentType string) codec.Format {
	if strings.Contains(strings.ToLower(contentType), "yaml") {
		return codec.YAML
	}
	return codec.JSON
}
