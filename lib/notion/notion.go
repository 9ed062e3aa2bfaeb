// Package notion is a minimal client for the two corners of the Notion API
// this backend touches: creating pages in a database and querying one.
package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"homemeter-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("notion")

const DefaultBaseUrl = "https://api.notion.com"
const apiVersion = "2022-06-28"

type Client struct {
	http *resty.Client
}

func NewClient(baseUrl, token string) *Client {
	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(time.Second * 15)
	client.SetAuthToken(token)
	client.SetHeader("Notion-Version", apiVersion)
	client.SetHeader("Content-Type", "application/json")

	telemetry.InstrumentResty(client, "notion/http")

	return &Client{http: client}
}

// property payloads for page creation. each property object carries
// exactly one type key, so the types are kept separate instead of one
// struct with omitempty everywhere.

type Date struct {
	Start string `json:"start"`
}

type DateProperty struct {
	Date Date `json:"date"`
}

// Number stays a pointer: a reading the portal never delivered is
// stored as an explicit null, not zero.
type NumberProperty struct {
	Number *float64 `json:"number"`
}

type Parent struct {
	DatabaseId string `json:"database_id"`
}

type CreatePageRequest struct {
	Parent     Parent         `json:"parent"`
	Properties map[string]any `json:"properties"`
}

// query side

type DateCondition struct {
	OnOrAfter  string `json:"on_or_after,omitempty"`
	OnOrBefore string `json:"on_or_before,omitempty"`
}

type DateFilter struct {
	Property string        `json:"property"`
	Date     DateCondition `json:"date"`
}

type AndFilter struct {
	And []any `json:"and"`
}

type Sort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

type QueryRequest struct {
	Filter any    `json:"filter,omitempty"`
	Sorts  []Sort `json:"sorts,omitempty"`
}

type TextContent struct {
	Content string `json:"content"`
}

type RichText struct {
	PlainText string       `json:"plain_text,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
}

// PropertyValue is the decode-side union of the property types this
// backend reads back. Unset variants stay nil.
type PropertyValue struct {
	Date   *Date      `json:"date,omitempty"`
	Number *float64   `json:"number,omitempty"`
	Title  []RichText `json:"title,omitempty"`
}

type Page struct {
	Id         string                   `json:"id"`
	Properties map[string]PropertyValue `json:"properties"`
}

type queryResponse struct {
	Results json.RawMessage `json:"results"`
}

func apiError(res *resty.Response) error {
	body := res.String()
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Errorf("notion api returned %s: %s", res.Status(), body)
}

// CreatePage appends one page to a database. A non-2xx reply is an
// error; a write the API rejected must not look like a stored reading.
func (c *Client) CreatePage(ctx context.Context, req CreatePageRequest) error {
	ctx, span := tracer.Start(ctx, "CreatePage")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post("/v1/pages")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create page")
		return fmt.Errorf("notion create page: %w", err)
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "notion rejected page create")
		return apiError(res)
	}
	return nil
}

// QueryDatabaseRaw runs a database query and hands back the `results`
// array untouched, for callers that proxy it straight through.
func (c *Client) QueryDatabaseRaw(ctx context.Context, databaseId string, req QueryRequest) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "QueryDatabase")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post(fmt.Sprintf("/v1/databases/%s/query", databaseId))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query database")
		return nil, fmt.Errorf("notion query: %w", err)
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "notion rejected query")
		return nil, apiError(res)
	}

	var out queryResponse
	err = json.Unmarshal(res.Body(), &out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse query response")
		return nil, fmt.Errorf("notion query response: %w", err)
	}
	return out.Results, nil
}

// QueryDatabase is QueryDatabaseRaw with the results decoded into pages.
func (c *Client) QueryDatabase(ctx context.Context, databaseId string, req QueryRequest) ([]Page, error) {
	raw, err := c.QueryDatabaseRaw(ctx, databaseId, req)
	if err != nil {
		return nil, err
	}
	var pages []Page
	err = json.Unmarshal(raw, &pages)
	if err != nil {
		return nil, fmt.Errorf("notion query results: %w", err)
	}
	return pages, nil
}
