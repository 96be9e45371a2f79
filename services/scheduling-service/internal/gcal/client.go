// Package gcal talks to the external calendar provider and keeps the
// external event mirror in step with it.
package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrProviderFetch wraps any transport, auth or parse failure at the
// provider boundary.
var ErrProviderFetch = errors.New("provider fetch failed")

const defaultBaseURL = "https://www.googleapis.com/calendar/v3"

// BusyInterval is one validated busy block from the provider.
type BusyInterval struct {
	ID    string
	Title string
	Start time.Time
	End   time.Time
}

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: baseURL,
	}
}

// Wire shapes of the provider's events listing. All-day events carry a
// "date" instead of "dateTime" and are not busy blocks for our purposes.
type eventsResponse struct {
	Items []eventItem `json:"items"`
}

type eventItem struct {
	ID      string    `json:"id"`
	Summary string    `json:"summary"`
	Start   eventTime `json:"start"`
	End     eventTime `json:"end"`
}

type eventTime struct {
	DateTime string `json:"dateTime"`
}

// FetchBusyIntervals lists the primary calendar's timed events from timeMin
// onward. Parsing is strict: one malformed timed item fails the whole fetch
// rather than silently dropping part of the consultant's busy time.
func (c *Client) FetchBusyIntervals(ctx context.Context, accessToken string, timeMin time.Time) ([]BusyInterval, error) {
	q := url.Values{}
	q.Set("timeMin", timeMin.UTC().Format(time.RFC3339))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/calendars/primary/events?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned status %d", ErrProviderFetch, resp.StatusCode)
	}

	var body eventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrProviderFetch, err)
	}

	var out []BusyInterval
	for _, item := range body.Items {
		if item.Start.DateTime == "" || item.End.DateTime == "" {
			continue // all-day event
		}
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return nil, fmt.Errorf("%w: event %s has malformed start: %v", ErrProviderFetch, item.ID, err)
		}
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			return nil, fmt.Errorf("%w: event %s has malformed end: %v", ErrProviderFetch, item.ID, err)
		}
		if item.ID == "" || !end.After(start) {
			return nil, fmt.Errorf("%w: event %q has invalid id or interval", ErrProviderFetch, item.ID)
		}
		title := item.Summary
		if title == "" {
			title = "External event"
		}
		out = append(out, BusyInterval{ID: item.ID, Title: title, Start: start, End: end})
	}
	return out, nil
}
