package satellite

import (
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sierravision/sierravision-api/internal/properties"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchImageBytes(t *testing.T) {
	payload := pngBytes(t, 2, 2, color.RGBA{1, 2, 3, 255})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer server.Close()

	data, err := fetchImageBytes(context.Background(), server.Client(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestFetchImageBytesRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "layer not found", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := fetchImageBytes(context.Background(), server.Client(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestFetchImageBytesRejectsNonImage(t *testing.T) {
	// WMS errors often come back as HTTP 200 XML documents.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(`<ServiceExceptionReport>bad TIME</ServiceExceptionReport>`))
	}))
	defer server.Close()

	_, err := fetchImageBytes(context.Background(), server.Client(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an image")
}

func TestDefaultProvidersOrder(t *testing.T) {
	providers := DefaultProviders(properties.Settings{HTTPTimeout: time.Second})
	require.Len(t, providers, 2, "no Worldview fallback without a token")
	assert.Equal(t, "NASA GIBS MODIS Terra", providers[0].Name())
	assert.Equal(t, "NASA GIBS VIIRS", providers[1].Name())

	providers = DefaultProviders(properties.Settings{HTTPTimeout: time.Second, EarthdataToken: "tok"})
	require.Len(t, providers, 3)
	assert.Equal(t, "NASA Worldview Snapshot", providers[2].Name())
}
