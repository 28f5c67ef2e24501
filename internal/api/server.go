package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sierravision/sierravision-api/internal/analysis"
	"github.com/sierravision/sierravision-api/internal/logger"
	"github.com/sierravision/sierravision-api/internal/properties"
	"github.com/sierravision/sierravision-api/internal/raster"
	"github.com/sierravision/sierravision-api/internal/satellite"
	"github.com/sierravision/sierravision-api/output"
)

// Server exposes the analysis core as a JSON API plus static access to the
// generated imagery under /data.
type Server struct {
	settings properties.Settings
	analyzer *analysis.Analyzer
	fires    *satellite.FireService
	router   *gin.Engine
}

func NewServer(settings properties.Settings, analyzer *analysis.Analyzer, fires *satellite.FireService) *Server {
	router := gin.Default()
	router.Use(corsMiddleware(settings.AllowedOrigins))

	server := &Server{
		settings: settings,
		analyzer: analyzer,
		fires:    fires,
		router:   router,
	}
	server.registerRoutes()
	return server
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")
	api.GET("/images", s.listImages)
	api.GET("/fires", s.getFires)
	api.POST("/analyze", s.analyze)

	s.router.StaticFS("/data", http.Dir(s.settings.DataDir))
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%d", s.settings.APIPort))
}

// corsMiddleware mirrors the frontend dev setup: only the configured
// origins may call the API from a browser.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// listImages returns the filenames in the data directory, the frontend's
// gallery index.
func (s *Server) listImages(c *gin.Context) {
	entries, err := os.ReadDir(s.settings.DataDir)
	if err != nil && !os.IsNotExist(err) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	images := []string{}
	for _, entry := range entries {
		if !entry.IsDir() {
			images = append(images, entry.Name())
		}
	}
	sort.Strings(images)
	c.JSON(http.StatusOK, gin.H{"images": images})
}

// getFires returns active-fire detections for a region as GeoJSON.
// Defaults to yesterday's detections over the Sierra Madre.
func (s *Server) getFires(c *gin.Context) {
	region := c.DefaultQuery("region", "sierra_madre")
	bbox, ok := properties.Regions[region]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown region %q", region)})
		return
	}

	date := time.Now().AddDate(0, 0, -1)
	if v := c.Query("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	fires, err := s.fires.FetchFires(c.Request.Context(), date, bbox)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, satellite.FiresToGeoJSON(fires))
}

type analyzeRequest struct {
	Region     string `json:"region" binding:"required"`
	BeforeDate string `json:"before_date" binding:"required"`
	AfterDate  string `json:"after_date" binding:"required"`
	Mode       string `json:"mode"`
}

// analyze runs a change detection for two dates and returns the report.
// The rendered artifacts land in the data directory, served under /data.
func (s *Server) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	beforeDate, err := time.Parse("2006-01-02", req.BeforeDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "before_date must be YYYY-MM-DD"})
		return
	}
	afterDate, err := time.Parse("2006-01-02", req.AfterDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "after_date must be YYYY-MM-DD"})
		return
	}

	mode := raster.ModeMaskSubtraction
	if req.Mode != "" {
		mode, err = raster.ParseChangeMode(req.Mode)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := s.analyzer.AnalyzeChange(c.Request.Context(), analysis.Request{
		Region:     req.Region,
		BeforeDate: beforeDate,
		AfterDate:  afterDate,
		Mode:       mode,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	s.renderArtifacts(result)
	if _, err := analysis.WriteReport(s.settings.DataDir, result.Report); err != nil {
		logger.WithError(err).Warn("failed to write report file")
	}

	c.JSON(http.StatusOK, result.Report)
}

// renderArtifacts saves the visual outputs; rendering failures are logged
// rather than failing the request since the report itself is complete.
func (s *Server) renderArtifacts(result *analysis.Result) {
	prefix := filepath.Join(s.settings.DataDir, result.Report.Region)

	if err := output.CreateChangeMapImage(result.ChangeMap, prefix+"_change_map.png"); err != nil {
		logger.WithError(err).Warn("failed to render change map")
	}
	if result.LossMask != nil {
		if err := output.CreateLossOverlay(result.After.Raster, result.LossMask, prefix+"_loss_overlay.png"); err != nil {
			logger.WithError(err).Warn("failed to render loss overlay")
		}
	}
	before := satellite.Grayscale(result.Before.Raster)
	after := satellite.Grayscale(result.After.Raster)
	beforeLabel := result.Before.Date.Format("2006-01-02")
	afterLabel := result.After.Date.Format("2006-01-02")
	if err := output.CreateComparisonImage(before, after, beforeLabel, afterLabel, prefix+"_comparison.png"); err != nil {
		logger.WithError(err).Warn("failed to render comparison image")
	}
}
