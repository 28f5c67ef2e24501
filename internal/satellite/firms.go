package satellite

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"github.com/sierravision/sierravision-api/internal/cache"
	"github.com/sierravision/sierravision-api/internal/logger"
	"github.com/sierravision/sierravision-api/internal/properties"
)

const firmsCountryAPI = "https://firms.modaps.eosdis.nasa.gov/api/country/csv"

// firmsSensors is the source order for fire detections: VIIRS first for its
// finer resolution, MODIS as fallback.
var firmsSensors = []string{"VIIRS_SNPP_NRT", "MODIS_NRT"}

// FireDetection is one row of the FIRMS country CSV feed. Confidence is kept
// as a string because VIIRS reports letter grades where MODIS reports
// percentages.
type FireDetection struct {
	Latitude   float64 `csv:"latitude" json:"latitude"`
	Longitude  float64 `csv:"longitude" json:"longitude"`
	Brightness float64 `csv:"bright_ti4" json:"brightness"`
	AcqDate    string  `csv:"acq_date" json:"acq_date"`
	Confidence string  `csv:"confidence" json:"confidence"`
}

// FireService fetches active-fire detections from NASA FIRMS for the
// Philippines and filters them to a bounding box.
type FireService struct {
	apiKey string
	client *http.Client
	cache  *cache.FileCache[[]FireDetection]
}

func NewFireService(settings properties.Settings) *FireService {
	return &FireService{
		apiKey: settings.FirmsAPIKey,
		client: &http.Client{Timeout: settings.HTTPTimeout},
		cache:  cache.NewFileCache[[]FireDetection](settings.DataDir, "fires"),
	}
}

// FetchFires returns detections inside the bounding box for the given day,
// trying each sensor feed in order and merging what responds.
func (s *FireService) FetchFires(ctx context.Context, date time.Time, bbox properties.BoundingBox) ([]FireDetection, error) {
	day := date.Format("2006-01-02")
	cacheKey := s.cache.GenerateKey(day, bbox)
	if fires, ok := s.cache.Get(cacheKey); ok {
		return fires, nil
	}

	var fires []FireDetection
	var lastErr error
	for _, sensor := range firmsSensors {
		url := fmt.Sprintf("%s/%s/%s/PHL/1/%s", firmsCountryAPI, s.apiKey, sensor, day)
		detections, err := s.fetchCSV(ctx, url)
		if err != nil {
			lastErr = err
			logger.WithField("sensor", sensor).WithError(err).Warn("fire feed failed")
			continue
		}
		for _, d := range detections {
			if bbox.Contains(d.Latitude, d.Longitude) {
				fires = append(fires, d)
			}
		}
	}

	if fires == nil && lastErr != nil {
		return nil, errors.Wrap(lastErr, "all fire feeds failed")
	}

	if err := s.cache.Set(cacheKey, fires); err != nil {
		logger.WithError(err).Warn("failed to cache fire detections")
	}
	return fires, nil
}

func (s *FireService) fetchCSV(ctx context.Context, url string) ([]FireDetection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fire data request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, errors.Errorf("fire data request failed: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read fire data")
	}
	if strings.TrimSpace(string(body)) == "" {
		return nil, nil
	}

	return ParseFireCSV(body)
}

// ParseFireCSV decodes a FIRMS CSV payload. The MODIS feed names its
// brightness column differently, so it is patched to the VIIRS header before
// decoding.
func ParseFireCSV(body []byte) ([]FireDetection, error) {
	text := string(body)
	if headerEnd := strings.IndexByte(text, '\n'); headerEnd > 0 {
		header := strings.Replace(text[:headerEnd], "brightness", "bright_ti4", 1)
		text = header + text[headerEnd:]
	}

	var detections []FireDetection
	if err := gocsv.UnmarshalString(text, &detections); err != nil {
		return nil, errors.Wrap(err, "parse fire CSV")
	}
	return detections, nil
}

// FiresToGeoJSON converts detections to the FeatureCollection the frontend
// map consumes.
func FiresToGeoJSON(fires []FireDetection) *geojson.FeatureCollection {
	collection := geojson.NewFeatureCollection()
	for _, fire := range fires {
		feature := geojson.NewFeature(orb.Point{fire.Longitude, fire.Latitude})
		feature.Properties["brightness"] = fire.Brightness
		feature.Properties["confidence"] = fire.Confidence
		feature.Properties["acq_date"] = fire.AcqDate
		collection.Append(feature)
	}
	return collection
}
