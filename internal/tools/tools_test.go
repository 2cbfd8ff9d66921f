package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d23ai/sahay-gateway/internal/config"
	"github.com/d23ai/sahay-gateway/internal/llm"
)

func TestOpenMeteoWeather_Current(t *testing.T) {
	var gotCity string
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCity = r.URL.Query().Get("name")
		w.Write([]byte(`{"results": [{"name": "Delhi", "latitude": 28.61, "longitude": 77.21, "country": "India"}]}`))
	}))
	defer geo.Close()

	forecast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current": {"temperature_2m": 31.4, "relative_humidity_2m": 40, "weather_code": 0, "wind_speed_10m": 12}}`))
	}))
	defer forecast.Close()

	svc := NewOpenMeteoWeather(config.WeatherToolConfig{
		ForecastURL: forecast.URL,
		GeocodeURL:  geo.URL,
	})

	report, err := svc.Current(context.Background(), "Delhi")
	require.NoError(t, err)
	assert.Equal(t, "Delhi", gotCity)
	assert.Contains(t, report, "Weather in Delhi")
	assert.Contains(t, report, "clear sky")
	assert.Contains(t, report, "31°C")
}

func TestOpenMeteoWeather_UnknownCityIsAnAnswer(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer geo.Close()

	svc := NewOpenMeteoWeather(config.WeatherToolConfig{GeocodeURL: geo.URL})

	report, err := svc.Current(context.Background(), "Atlantisabad")
	require.NoError(t, err)
	assert.Contains(t, report, "couldn't find")
}

func TestOpenMeteoWeather_ServerErrorPropagates(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer geo.Close()

	svc := NewOpenMeteoWeather(config.WeatherToolConfig{GeocodeURL: geo.URL})
	_, err := svc.Current(context.Background(), "Delhi")
	assert.Error(t, err)
}

func TestRailAPI_PNRStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pnr/1234567890", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("api_key"))
		w.Write([]byte(`{"train_name": "Rajdhani Express", "train_number": "12301", "doj": "26-01-2026",
			"passengers": [{"booking_status": "CNF/B2/34", "current_status": "CNF/B2/34"}]}`))
	}))
	defer srv.Close()

	svc := NewRailAPI(config.APIToolConfig{BaseURL: srv.URL, APIKey: "k"})
	status, err := svc.PNRStatus(context.Background(), "1234567890")
	require.NoError(t, err)
	assert.Contains(t, status, "Rajdhani Express")
	assert.Contains(t, status, "CNF/B2/34")
}

func TestRailAPI_UnconfiguredErrors(t *testing.T) {
	svc := NewRailAPI(config.APIToolConfig{})
	_, err := svc.PNRStatus(context.Background(), "1234567890")
	assert.ErrorIs(t, err, ErrToolNotConfigured)
}

func TestPlacesAPI_SearchNear(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "biryani", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.URL.Query().Get("lat"))
		w.Write([]byte(`{"results": [
			{"name": "Biryani House", "rating": 4.5, "address": "MG Road", "open_now": true},
			{"name": "Paradise", "rating": 4.2, "address": "SD Road", "open_now": false}
		]}`))
	}))
	defer srv.Close()

	svc := NewPlacesAPI(config.APIToolConfig{BaseURL: srv.URL})
	out, err := svc.SearchNear(context.Background(), "biryani", 17.38, 78.48)
	require.NoError(t, err)
	assert.Contains(t, out, "1. Biryani House")
	assert.Contains(t, out, "open now")
	assert.Contains(t, out, "2. Paradise")
}

func TestNewsAPI_HeadlinesPaging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "5" {
			w.Write([]byte(`{"articles": []}`))
			return
		}
		w.Write([]byte(`{"articles": [{"title": "Monsoon arrives early", "source": "PTI"}]}`))
	}))
	defer srv.Close()

	svc := NewNewsAPI(config.APIToolConfig{BaseURL: srv.URL})

	page, err := svc.Headlines(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Contains(t, page, "Monsoon arrives early")
	assert.Contains(t, page, "more")

	end, err := svc.Headlines(context.Background(), "", 5)
	require.NoError(t, err)
	assert.Contains(t, end, "all the headlines")
}

type promptRecorder struct {
	prompt string
	system string
}

func (p *promptRecorder) Complete(_ context.Context, req *llm.Request) (*llm.Response, error) {
	p.prompt = req.Prompt
	p.system = req.System
	return &llm.Response{Content: "reading"}, nil
}

func (p *promptRecorder) Health(_ context.Context) error { return nil }

func TestLLMAstro_Horoscope(t *testing.T) {
	rec := &promptRecorder{}
	svc := NewLLMAstro(rec, "m")

	out, err := svc.Horoscope(context.Background(), "Leo", "today")
	require.NoError(t, err)
	assert.Equal(t, "reading", out)
	assert.Contains(t, rec.prompt, "Leo")
	assert.True(t, strings.Contains(rec.system, "astrologer"))
}

func TestLLMInfo_UsesIntentPrompt(t *testing.T) {
	rec := &promptRecorder{}
	svc := NewLLMInfo(rec, "m")

	_, err := svc.Lookup(context.Background(), "echallan", map[string]any{"raw_text": "check my challan"})
	require.NoError(t, err)
	assert.Contains(t, rec.prompt, "e-challan")
}

func TestLLMInfo_NilClientErrors(t *testing.T) {
	svc := NewLLMInfo(nil, "m")
	_, err := svc.Lookup(context.Background(), "echallan", nil)
	assert.Error(t, err)
}
