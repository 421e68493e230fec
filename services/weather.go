package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
)

// Current-weather snapshots change slowly; cache them so the Get Outfit and
// Plan Ahead pages don't burn the OpenWeather quota on every click.
const weatherCacheTTL = 10 * time.Minute

// WeatherSnapshot is what one OpenWeather lookup resolves to. Humidity and
// wind stay nil when the caller supplied an override instead of a live lookup.
type WeatherSnapshot struct {
	Condition string   `json:"condition"`
	Temp      *int     `json:"temp"`
	Humidity  *int     `json:"humidity"`
	Wind      *float64 `json:"wind"`
}

// DisplayString renders the snapshot the way prompts and the UI expect,
// e.g. "Clear, 12°C".
func (w *WeatherSnapshot) DisplayString() string {
	if w.Temp == nil {
		return w.Condition
	}
	return fmt.Sprintf("%s, %d°C", w.Condition, *w.Temp)
}

type WeatherProvider interface {
	Current(ctx context.Context, lat, lon float64) (*WeatherSnapshot, error)
}

type openWeatherResponse struct {
	Cod     int `json:"cod"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// OpenWeatherService fetches current weather by coordinates, with an
// in-process loadable cache in front of the API.
type OpenWeatherService struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client

	cache *cache.LoadableCache[*WeatherSnapshot]
}

func NewOpenWeatherService() (*OpenWeatherService, error) {
	service := &OpenWeatherService{
		APIKey:     GetEnv("OPENWEATHER_API_KEY", ""),
		BaseURL:    GetEnv("OPENWEATHER_API_URL", "https://api.openweathermap.org"),
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}

	ristrettoCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1 << 22, // 4MB of snapshots is plenty
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	ristrettoStore := ristretto_store.NewRistretto(ristrettoCache, store.WithExpiration(weatherCacheTTL))

	loadFunction := func(ctx context.Context, key any) (*WeatherSnapshot, error) {
		coordKey, ok := key.(string)
		if !ok {
			return nil, fmt.Errorf("invalid key type provided to weather cache: expected string, got %T", key)
		}
		var lat, lon float64
		if _, err := fmt.Sscanf(coordKey, "%f,%f", &lat, &lon); err != nil {
			return nil, fmt.Errorf("invalid weather cache key %q: %w", coordKey, err)
		}
		log.Printf("CACHE MISS for coordinates %s. Fetching current weather.", coordKey)
		return service.fetch(ctx, lat, lon)
	}

	service.cache = cache.NewLoadable[*WeatherSnapshot](
		loadFunction,
		cache.New[*WeatherSnapshot](ristrettoStore),
	)
	return service, nil
}

// Current returns the (possibly cached) snapshot for the given coordinates.
func (s *OpenWeatherService) Current(ctx context.Context, lat, lon float64) (*WeatherSnapshot, error) {
	if s.cache == nil {
		return s.fetch(ctx, lat, lon)
	}
	// Round so tiny GPS jitter hits the same cache entry.
	key := fmt.Sprintf("%.2f,%.2f", roundCoord(lat), roundCoord(lon))
	return s.cache.Get(ctx, key)
}

func roundCoord(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *OpenWeatherService) fetch(ctx context.Context, lat, lon float64) (*WeatherSnapshot, error) {
	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%v", lat))
	query.Set("lon", fmt.Sprintf("%v", lon))
	query.Set("appid", s.APIKey)
	query.Set("units", "metric")

	reqURL := fmt.Sprintf("%s/data/2.5/weather?%s", s.BaseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch weather: %v", err)
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch weather: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch weather: %v", err)
	}

	var data openWeatherResponse
	if err := json.Unmarshal(body, &data); err != nil || (data.Cod != 0 && data.Cod != 200) || resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound || data.Cod == 404 {
			return nil, fmt.Errorf("invalid location")
		}
		return nil, fmt.Errorf("unable to fetch weather")
	}
	if len(data.Weather) == 0 {
		return nil, fmt.Errorf("unable to fetch weather")
	}

	temp := int(math.Round(data.Main.Temp))
	return &WeatherSnapshot{
		Condition: data.Weather[0].Main,
		Temp:      &temp,
		Humidity:  &data.Main.Humidity,
		Wind:      &data.Wind.Speed,
	}, nil
}
