// Package geocode resolves a free-text location to a map point through a
// Nominatim-compatible search API. Lookups are best-effort: any failure yields no point.
package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

type Point struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"displayName,omitempty"`
}

type Geocoder struct {
	baseURL   string
	userAgent string
	tileURL   string
	client    *http.Client
	log       zerolog.Logger
}

func New(baseURL, userAgent, tileURL string, client *http.Client, log zerolog.Logger) *Geocoder {
	if client == nil {
		client = &http.Client{}
	}
	return &Geocoder{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		tileURL:   tileURL,
		client:    client,
		log:       log.With().Str("component", "geocode").Logger(),
	}
}

// TileURL is the slippy-map tile template rendered next to the point.
func (g *Geocoder) TileURL() string {
	return g.tileURL
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Lookup returns the first match for location, or ok=false on an empty location,
// no match, or any failure.
func (g *Geocoder) Lookup(ctx context.Context, location string) (Point, bool) {
	location = strings.TrimSpace(location)
	if location == "" {
		return Point{}, false
	}

	u := g.baseURL + "/search?format=json&q=" + url.QueryEscape(location)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Point{}, false
	}
	// Nominatim's usage policy requires an identifying agent.
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Debug().Err(err).Str("location", location).Msg("Geocode request failed")
		return Point{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.log.Debug().Int("status", resp.StatusCode).Str("location", location).Msg("Geocode returned error")
		return Point{}, false
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil || len(places) == 0 {
		return Point{}, false
	}

	lat, err1 := strconv.ParseFloat(places[0].Lat, 64)
	lon, err2 := strconv.ParseFloat(places[0].Lon, 64)
	if err1 != nil || err2 != nil {
		return Point{}, false
	}
	return Point{Lat: lat, Lon: lon, DisplayName: places[0].DisplayName}, true
}
