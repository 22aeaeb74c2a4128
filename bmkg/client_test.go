package bmkg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
  "lokasi": {"adm4": "31.71.03.1001", "provinsi": "DKI Jakarta", "kotkab": "Kota Adm. Jakarta Pusat", "kecamatan": "Kemayoran", "desa": "Kemayoran"},
  "data": [{
    "lokasi": {"adm4": "31.71.03.1001", "desa": "Kemayoran"},
    "cuaca": [
      [
        {"local_datetime": "2026-10-19 13:00:00", "analysis_date": "2026-10-19T00:00:00", "t": 32, "hu": 60, "ws": 9.5, "wd": "N", "vs_text": "> 10 km", "weather_desc": "Cerah Berawan", "weather_desc_en": "Partly Cloudy", "image": "https://api-apps.bmkg.go.id/storage/icon/cuaca/cerah berawan-pm.svg"},
        {"local_datetime": "2026-10-19 10:00:00", "analysis_date": "2026-10-19T00:00:00", "t": 30, "hu": 70, "ws": 7.1, "wd": "NE", "weather_desc": "Cerah", "weather_desc_en": "Sunny", "image": "https://example/cerah.svg"}
      ],
      [
        {"local_datetime": "2026-10-20 01:00:00", "analysis_date": "2026-10-19T00:00:00", "t": 26, "hu": 88, "ws": 3.2, "wd": "S", "weather_desc": "Hujan Ringan", "weather_desc_en": "Light Rain"}
      ]
    ]
  }]
}`

func TestNewClient(t *testing.T) {
	client := NewClient("")
	assert.Equal(t, DefaultBaseURL, client.BaseURL)
	assert.NotNil(t, client.HTTPClient)

	assert.Equal(t, "http://override", NewClient("http://override").BaseURL)
}

func TestForecast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "31.71.03.1001", r.URL.Query().Get("adm4"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client := &Client{BaseURL: server.URL, HTTPClient: &http.Client{}}

	resp, err := client.Forecast(context.Background(), "31.71.03.1001")
	require.NoError(t, err)
	assert.Equal(t, "DKI Jakarta", resp.Location.Province)
	require.Len(t, resp.Data, 1)
	assert.Len(t, resp.Data[0].Forecasts, 2)
}

func TestForecast_KeepsExistingQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc", r.URL.Query().Get("key"))
		assert.Equal(t, "1", r.URL.Query().Get("adm4"))
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := &Client{BaseURL: server.URL + "?key=abc", HTTPClient: &http.Client{}}
	_, err := client.Forecast(context.Background(), "1")
	require.NoError(t, err)
}

func TestForecast_Errors(t *testing.T) {
	t.Run("empty code", func(t *testing.T) {
		_, err := NewClient("").Forecast(context.Background(), "")
		assert.EqualError(t, err, "region code cannot be empty")
	})

	t.Run("http error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := &Client{BaseURL: server.URL, HTTPClient: &http.Client{}}
		_, err := client.Forecast(context.Background(), "1")
		assert.ErrorContains(t, err, "503")
	})

	t.Run("invalid json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := &Client{BaseURL: server.URL, HTTPClient: &http.Client{}}
		_, err := client.Forecast(context.Background(), "1")
		assert.ErrorContains(t, err, "failed to decode response")
	})
}

func TestUpcoming(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client := &Client{BaseURL: server.URL, HTTPClient: &http.Client{}}
	resp, err := client.Forecast(context.Background(), "1")
	require.NoError(t, err)

	upcoming := resp.Upcoming(4)
	require.Len(t, upcoming, 3)
	assert.Equal(t, "Sunny", upcoming[0].DescriptionEN)
	assert.Equal(t, "Partly Cloudy", upcoming[1].DescriptionEN)
	assert.Equal(t, "Light Rain", upcoming[2].DescriptionEN)

	assert.Len(t, resp.Upcoming(2), 2)
	assert.Empty(t, resp.Upcoming(0))
	assert.Empty(t, (&Response{}).Upcoming(4))
}

func TestForecastHelpers(t *testing.T) {
	f := Forecast{
		LocalDatetime: "2026-10-19 13:00:00",
		AnalysisDate:  "2026-10-19T00:00:00",
		Image:         "https://icons/cerah berawan-pm.svg",
	}
	assert.Equal(t, time.Date(2026, 10, 19, 13, 0, 0, 0, time.UTC), f.LocalTime())
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), f.AnalysisTime())
	assert.Equal(t, "https://icons/cerah%20berawan-pm.svg", f.IconURL())
	assert.True(t, Forecast{LocalDatetime: "garbage"}.LocalTime().IsZero())
}
