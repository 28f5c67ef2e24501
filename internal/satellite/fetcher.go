package satellite

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sierravision/sierravision-api/internal/cache"
	"github.com/sierravision/sierravision-api/internal/logger"
	"github.com/sierravision/sierravision-api/internal/observability"
	"github.com/sierravision/sierravision-api/internal/properties"
	"github.com/sierravision/sierravision-api/internal/raster"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Acquisition is one decoded scene: the raster plus where and when it came
// from.
type Acquisition struct {
	Date   time.Time
	Source string
	Raster raster.Raster
}

// Fetcher walks an ordered list of providers until one returns a decodable
// image. Raw responses are cached on disk so re-running an analysis does not
// re-download the scene.
type Fetcher struct {
	providers []ImageProvider
	retries   int
	cache     *cache.FileCache[[]byte]
	metrics   *observability.Metrics
}

func NewFetcher(settings properties.Settings, providers []ImageProvider, metrics *observability.Metrics) *Fetcher {
	return &Fetcher{
		providers: providers,
		retries:   settings.FetchRetries,
		cache:     cache.NewFileCache[[]byte](settings.DataDir, "imagery"),
		metrics:   metrics,
	}
}

// FetchRaster returns the best available raster for the date and region,
// resampled to width x height, plus the name of the source that supplied it.
func (f *Fetcher) FetchRaster(ctx context.Context, date time.Time, bbox properties.BoundingBox, width, height int) (raster.Raster, string, error) {
	cacheKey := f.cache.GenerateKey(date.Format("2006-01-02"), bbox, width, height)
	if data, ok := f.cache.Get(cacheKey); ok {
		rast, err := DecodeRGB(data, width, height)
		if err == nil {
			return rast, "cache", nil
		}
		logger.WithError(err).Warn("cached imagery is not decodable, refetching")
	}

	var lastErr error
	for _, provider := range f.providers {
		data, err := f.fetchWithRetries(ctx, provider, date, bbox, width, height)
		if err != nil {
			lastErr = err
			logger.WithFields(logrus.Fields{
				"provider": provider.Name(),
				"date":     date.Format("2006-01-02"),
			}).WithError(err).Warn("imagery provider failed, trying next source")
			continue
		}

		rast, err := DecodeRGB(data, width, height)
		if err != nil {
			lastErr = errors.Wrapf(err, "provider %s returned undecodable imagery", provider.Name())
			continue
		}

		if err := f.cache.Set(cacheKey, data); err != nil {
			logger.WithError(err).Warn("failed to cache imagery")
		}
		return rast, provider.Name(), nil
	}

	if lastErr == nil {
		lastErr = errors.New("no imagery providers configured")
	}
	return raster.Raster{}, "", errors.Wrap(lastErr, "all imagery sources failed")
}

func (f *Fetcher) fetchWithRetries(ctx context.Context, provider ImageProvider, date time.Time, bbox properties.BoundingBox, width, height int) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= f.retries; attempt++ {
		data, err := provider.FetchImage(ctx, date, bbox, width, height)
		if err == nil {
			f.recordFetch(provider.Name(), "success")
			return data, nil
		}
		lastErr = err
		f.recordFetch(provider.Name(), "error")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
	return nil, errors.Wrapf(lastErr, "failed after %d attempts", f.retries)
}

func (f *Fetcher) recordFetch(provider, outcome string) {
	if f.metrics != nil {
		f.metrics.FetchAttempts.WithLabelValues(provider, outcome).Inc()
	}
}

// FetchComparison fetches the before and after scenes concurrently. Both are
// requested at the same dimensions so the change detector sees co-registered
// rasters.
func (f *Fetcher) FetchComparison(ctx context.Context, beforeDate, afterDate time.Time, bbox properties.BoundingBox, width, height int) (Acquisition, Acquisition, error) {
	var before, after Acquisition
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		rast, source, err := f.FetchRaster(ctx, beforeDate, bbox, width, height)
		if err != nil {
			return errors.Wrapf(err, "before scene %s", beforeDate.Format("2006-01-02"))
		}
		before = Acquisition{Date: beforeDate, Source: source, Raster: rast}
		return nil
	})
	group.Go(func() error {
		rast, source, err := f.FetchRaster(ctx, afterDate, bbox, width, height)
		if err != nil {
			return errors.Wrapf(err, "after scene %s", afterDate.Format("2006-01-02"))
		}
		after = Acquisition{Date: afterDate, Source: source, Raster: rast}
		return nil
	})

	if err := group.Wait(); err != nil {
		return Acquisition{}, Acquisition{}, err
	}
	return before, after, nil
}
