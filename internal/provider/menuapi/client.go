package menuapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

const (
	DefaultURL = "https://raw.githubusercontent.com/Meta-Mobile-Developer-PC/Working-With-Data-API/main/capstone.json"
	userAgent  = "littlelemon-cli/1.0 (+https://github.com/saadjs/littlelemon)"
)

type Dish struct {
	Name        string
	Price       float64
	Description string
	Image       string
}

// Client fetches the canonical menu document. A nil HTTPClient uses
// http.DefaultClient, so no timeout is set beyond the caller's context.
type Client struct {
	URL        string
	HTTPClient *http.Client
}

func (c *Client) FetchMenu(ctx context.Context) ([]Dish, []byte, error) {
	u := strings.TrimSpace(c.URL)
	if u == "" {
		u = DefaultURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create menu request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("execute menu request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read menu response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, body, fmt.Errorf("menu request failed with status %d", resp.StatusCode)
	}

	var parsed menuResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, body, fmt.Errorf("decode menu response: %w", err)
	}
	if parsed.Menu == nil {
		return nil, body, fmt.Errorf("menu response has no %q field", "menu")
	}

	out := make([]Dish, 0, len(parsed.Menu))
	for i, d := range parsed.Menu {
		price, ok := parseFloatAny(d.Price)
		if !ok && d.Price != nil {
			return nil, body, fmt.Errorf("decode menu item %d: invalid price %v", i, d.Price)
		}
		out = append(out, Dish{
			Name:        strings.TrimSpace(d.Name),
			Price:       price,
			Description: strings.TrimSpace(d.Description),
			Image:       strings.TrimSpace(d.Image),
		})
	}
	return out, body, nil
}

func parseFloatAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

type menuResponse struct {
	Menu []dishPayload `json:"menu"`
}

type dishPayload struct {
	Name        string `json:"name"`
	Price       any    `json:"price"`
	Description string `json:"description"`
	Image       string `json:"image"`
}
