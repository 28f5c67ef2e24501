package properties

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// BoundingBox is a geographic extent in WGS84 degrees.
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Contains reports whether a point falls inside the box.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.South && lat <= b.North && lon >= b.West && lon <= b.East
}

// SierraMadreBBox covers the Sierra Madre mountain range on eastern Luzon.
var SierraMadreBBox = BoundingBox{North: 17.5, South: 14.0, East: 122.8, West: 120.5}

// Regions maps the region names accepted by the CLI and API to bounding
// boxes.
var Regions = map[string]BoundingBox{
	"sierra_madre": SierraMadreBBox,
	"manila":       {North: 14.8, South: 14.3, East: 121.2, West: 120.8},
}

type Color struct {
	R, G, B uint8
}

// DensityColors is the render palette for the five forest density classes,
// indexed by class (no vegetation through very dense forest).
var DensityColors = [5]Color{
	{150, 111, 51},  // bare soil
	{222, 217, 78},  // sparse
	{144, 238, 144}, // moderate
	{34, 139, 34},   // dense
	{0, 100, 0},     // very dense
}

// Settings is the process configuration. It is read from the environment
// once at startup and passed into components explicitly; nothing below the
// main packages reads the environment.
type Settings struct {
	DataDir               string
	FirmsAPIKey           string
	EarthdataToken        string
	HTTPTimeout           time.Duration
	FetchRetries          int
	DiscordErrorWebhook   string
	DiscordSuccessWebhook string
	APIPort               int
	AllowedOrigins        []string
}

// FromEnv builds Settings from the environment with workable defaults for
// everything except the credentials.
func FromEnv() Settings {
	settings := Settings{
		DataDir:               envOr("DATA_DIR", "data"),
		FirmsAPIKey:           os.Getenv("FIRMS_API_KEY"),
		EarthdataToken:        os.Getenv("EARTHDATA_TOKEN"),
		HTTPTimeout:           60 * time.Second,
		FetchRetries:          3,
		DiscordErrorWebhook:   os.Getenv("DISCORD_ERROR_NOTIFICATION_URL"),
		DiscordSuccessWebhook: os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL"),
		APIPort:               8000,
		AllowedOrigins:        []string{"http://localhost:5173"},
	}

	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			settings.HTTPTimeout = time.Duration(seconds) * time.Second
		}
	}
	if v := os.Getenv("FETCH_RETRIES"); v != "" {
		if retries, err := strconv.Atoi(v); err == nil && retries > 0 {
			settings.FetchRetries = retries
		}
	}
	if v := os.Getenv("API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			settings.APIPort = port
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		settings.AllowedOrigins = strings.Split(v, ",")
	}
	return settings
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
