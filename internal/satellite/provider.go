package satellite

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sierravision/sierravision-api/internal/properties"
	"golang.org/x/oauth2"
)

// ImageProvider supplies raw imagery bytes for a date and region. Providers
// are capability-equivalent: the Fetcher tries them in priority order and
// keeps the first acceptable response.
type ImageProvider interface {
	Name() string
	FetchImage(ctx context.Context, date time.Time, bbox properties.BoundingBox, width, height int) ([]byte, error)
}

const (
	gibsWMSEndpoint      = "https://gibs.earthdata.nasa.gov/wms/epsg4326/best/wms.cgi"
	worldviewSnapshotURL = "https://wvs.earthdata.nasa.gov/api/v1/snapshot"
)

// GIBSProvider fetches a WMS GetMap tile for one NASA GIBS layer.
type GIBSProvider struct {
	Layer  string
	Label  string
	Client *http.Client
}

// DefaultProviders returns the source fallback chain: GIBS MODIS Terra
// first, GIBS VIIRS second, and the token-authenticated Worldview snapshot
// service last when an Earthdata token is configured.
func DefaultProviders(settings properties.Settings) []ImageProvider {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	providers := []ImageProvider{
		&GIBSProvider{Layer: "MODIS_Terra_CorrectedReflectance_TrueColor", Label: "NASA GIBS MODIS Terra", Client: client},
		&GIBSProvider{Layer: "VIIRS_SNPP_CorrectedReflectance_TrueColor", Label: "NASA GIBS VIIRS", Client: client},
	}
	if settings.EarthdataToken != "" {
		providers = append(providers, NewEarthdataProvider(settings.EarthdataToken, settings.HTTPTimeout))
	}
	return providers
}

func (p *GIBSProvider) Name() string { return p.Label }

func (p *GIBSProvider) FetchImage(ctx context.Context, date time.Time, bbox properties.BoundingBox, width, height int) ([]byte, error) {
	params := url.Values{}
	params.Set("SERVICE", "WMS")
	params.Set("REQUEST", "GetMap")
	params.Set("VERSION", "1.3.0")
	params.Set("LAYERS", p.Layer)
	params.Set("CRS", "EPSG:4326")
	params.Set("BBOX", fmt.Sprintf("%g,%g,%g,%g", bbox.South, bbox.West, bbox.North, bbox.East))
	params.Set("WIDTH", fmt.Sprintf("%d", width))
	params.Set("HEIGHT", fmt.Sprintf("%d", height))
	params.Set("FORMAT", "image/png")
	params.Set("TIME", date.Format("2006-01-02"))

	return fetchImageBytes(ctx, p.Client, gibsWMSEndpoint+"?"+params.Encode())
}

// EarthdataProvider fetches Worldview snapshots authenticated with an
// Earthdata Login bearer token.
type EarthdataProvider struct {
	client *http.Client
}

func NewEarthdataProvider(token string, timeout time.Duration) *EarthdataProvider {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	client := oauth2.NewClient(context.Background(), source)
	client.Timeout = timeout
	return &EarthdataProvider{client: client}
}

func (p *EarthdataProvider) Name() string { return "NASA Worldview Snapshot" }

func (p *EarthdataProvider) FetchImage(ctx context.Context, date time.Time, bbox properties.BoundingBox, width, height int) ([]byte, error) {
	params := url.Values{}
	params.Set("REQUEST", "GetSnapshot")
	params.Set("LAYERS", "MODIS_Terra_CorrectedReflectance_TrueColor")
	params.Set("CRS", "EPSG:4326")
	params.Set("BBOX", fmt.Sprintf("%g,%g,%g,%g", bbox.South, bbox.West, bbox.North, bbox.East))
	params.Set("WIDTH", fmt.Sprintf("%d", width))
	params.Set("HEIGHT", fmt.Sprintf("%d", height))
	params.Set("FORMAT", "image/png")
	params.Set("TIME", date.Format("2006-01-02"))

	return fetchImageBytes(ctx, p.client, worldviewSnapshotURL+"?"+params.Encode())
}

// fetchImageBytes performs the GET and rejects responses that are not
// imagery. WMS services report many errors as HTTP 200 XML documents, so the
// content type check matters as much as the status code.
func fetchImageBytes(ctx context.Context, client *http.Client, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "imagery request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Errorf("imagery request failed: status %d: %s", resp.StatusCode, body)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "image") {
		return nil, errors.Errorf("response is not an image: content-type %q", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read image body")
	}
	return data, nil
}
