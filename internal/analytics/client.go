package analytics

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// VisitEvent is one gameplay visit reported by the analytics service. Only
// the fields the popularity tally needs are decoded.
type VisitEvent struct {
	GameName  string    `json:"gameName"`
	Timestamp time.Time `json:"timestamp"`
}

// Client fetches visit events from the analytics export endpoint. The
// endpoint streams newline-delimited JSON, one event per line.
type Client struct {
	baseURL string
	project string
	token   string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates an analytics export client.
func NewClient(baseURL, project, token string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		project: project,
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  logger.With().Str("component", "analytics").Logger(),
	}
}

// VisitEvents returns all visit events for a category since the given
// time. The whole stream is read before returning; a decode or transport
// failure discards everything read so far.
func (c *Client) VisitEvents(ctx context.Context, category string, since time.Time) ([]VisitEvent, error) {
	endpoint, err := url.Parse(c.baseURL + "/export/events")
	if err != nil {
		return nil, fmt.Errorf("failed to build analytics URL: %w", err)
	}
	query := endpoint.Query()
	query.Set("project", c.project)
	query.Set("event", "Visit")
	query.Set("category", category)
	query.Set("from", since.UTC().Format(time.RFC3339))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build analytics request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call analytics export: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analytics export returned status %d", resp.StatusCode)
	}

	var events []VisitEvent
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event VisitEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("failed to decode analytics event: %w", err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read analytics stream: %w", err)
	}

	c.logger.Debug().Int("events", len(events)).Str("category", category).Msg("analytics export fetched")
	return events, nil
}
