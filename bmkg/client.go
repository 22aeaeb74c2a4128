// Package bmkg is a client for the public BMKG (Indonesian weather agency) forecast
// API.
package bmkg

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.bmkg.go.id/publik/prakiraan-cuaca"

// BMKG publishes local datetimes without a zone and analysis dates in ISO form.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

type Response struct {
	Location Location   `json:"lokasi"`
	Data     []DataItem `json:"data"`
}

type Location struct {
	Adm4      string  `json:"adm4"`
	Province  string  `json:"provinsi"`
	Regency   string  `json:"kotkab"`
	District  string  `json:"kecamatan"`
	Village   string  `json:"desa"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Timezone  string  `json:"timezone"`
}

type DataItem struct {
	Location Location `json:"lokasi"`
	// Forecasts are grouped per day.
	Forecasts [][]Forecast `json:"cuaca"`
}

type Forecast struct {
	LocalDatetime  string  `json:"local_datetime"`
	UTCDatetime    string  `json:"utc_datetime"`
	AnalysisDate   string  `json:"analysis_date"`
	Temperature    float64 `json:"t"`
	Humidity       float64 `json:"hu"`
	WindSpeed      float64 `json:"ws"`
	WindDirection  string  `json:"wd"`
	CloudCover     float64 `json:"tcc"`
	Precipitation  float64 `json:"tp"`
	Visibility     float64 `json:"vs"`
	VisibilityText string  `json:"vs_text"`
	Weather        int     `json:"weather"`
	Description    string  `json:"weather_desc"`
	DescriptionEN  string  `json:"weather_desc_en"`
	Image          string  `json:"image"`
}

// LocalTime parses the forecast's local datetime. The zero time is returned when
// the field is missing or malformed.
func (f Forecast) LocalTime() time.Time {
	return parseTime(f.LocalDatetime)
}

// AnalysisTime parses the time the forecast model ran.
func (f Forecast) AnalysisTime() time.Time {
	return parseTime(f.AnalysisDate)
}

// IconURL is the forecast image with spaces escaped so chat clients can render it.
func (f Forecast) IconURL() string {
	return strings.ReplaceAll(f.Image, " ", "%20")
}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Upcoming flattens the first data item's per-day forecasts, sorts them
// chronologically and returns at most n of them.
func (r *Response) Upcoming(n int) []Forecast {
	if r == nil || len(r.Data) == 0 || n <= 0 {
		return nil
	}

	var all []Forecast
	for _, day := range r.Data[0].Forecasts {
		all = append(all, day...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].LocalTime().Before(all[j].LocalTime())
	})

	if len(all) > n {
		all = all[:n]
	}
	return all
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Forecast fetches the forecast for a village-level (adm4) region code.
func (c *Client) Forecast(ctx context.Context, adm4 string) (*Response, error) {
	if adm4 == "" {
		return nil, fmt.Errorf("region code cannot be empty")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	params := u.Query()
	params.Set("adm4", adm4)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "senku-bot/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var forecast Response
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &forecast, nil
}
