package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/oauth2"
)

const BaseURL = "https://www.strava.com/api/v3"

// maxPerPage is the largest page Strava serves
const maxPerPage = 200

// Client is a Strava API client
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewClient creates a new Strava API client authorised by tokenSource
func NewClient(ctx context.Context, tokenSource oauth2.TokenSource) *Client {
	return NewClientWithHTTP(oauth2.NewClient(ctx, tokenSource), BaseURL)
}

// NewClientWithHTTP creates a client that sends requests through httpClient
// to baseURL
func NewClientWithHTTP(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		baseURL:     baseURL,
		httpClient:  httpClient,
		rateLimiter: NewRateLimiter(),
	}
}

// GetRoutes fetches one page of the authenticated athlete's routes
func (c *Client) GetRoutes(ctx context.Context, page, perPage int) ([]Route, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	body, err := c.get(ctx, "/athlete/routes", params)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var routes []Route
	if err := json.NewDecoder(body).Decode(&routes); err != nil {
		return nil, fmt.Errorf("decoding routes: %w", err)
	}

	return routes, nil
}

// GetAllRoutes fetches every route, following pages until a short one.
// Routes fetched before an error are returned along with it.
func (c *Client) GetAllRoutes(ctx context.Context, onProgress func(fetched int)) ([]Route, error) {
	var all []Route

	for page := 1; ; page++ {
		routes, err := c.GetRoutes(ctx, page, maxPerPage)
		if err != nil {
			return all, fmt.Errorf("fetching page %d: %w", page, err)
		}

		all = append(all, routes...)
		if onProgress != nil && len(routes) > 0 {
			onProgress(len(all))
		}

		if len(routes) < maxPerPage {
			break
		}
	}

	return all, nil
}

// ExportRouteGPX downloads the route as a GPX document
func (c *Client) ExportRouteGPX(ctx context.Context, routeID string) ([]byte, error) {
	body, err := c.get(ctx, "/routes/"+url.PathEscape(routeID)+"/export_gpx", nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading route %s: %w", routeID, err)
	}
	return data, nil
}

// RateLimitStatus returns the current rate limit status
func (c *Client) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return c.rateLimiter.Status()
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (io.ReadCloser, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	c.rateLimiter.UpdateFromHeaders(resp.Header)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return resp.Body, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
