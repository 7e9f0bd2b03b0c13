// Package server exposes the pipeline over HTTP: single-document analysis,
// aggregation across stored records, regime recommendation, and XLSX reports.
package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taxsahaj/taxsahaj/constants"
	"github.com/taxsahaj/taxsahaj/internal/aggregate"
	"github.com/taxsahaj/taxsahaj/internal/common"
	"github.com/taxsahaj/taxsahaj/internal/entity"
	"github.com/taxsahaj/taxsahaj/internal/export"
	"github.com/taxsahaj/taxsahaj/internal/ingest"
	"github.com/taxsahaj/taxsahaj/internal/pipeline"
	"github.com/taxsahaj/taxsahaj/internal/repository"
	"github.com/taxsahaj/taxsahaj/internal/tax"
)

type Service struct {
	logger      *slog.Logger
	analyzer    *pipeline.Analyzer
	store       repository.RecordStore
	aggregator  *aggregate.Aggregator
	calculator  *tax.Calculator
	exporter    *export.Service
	defaultYear string
}

func New(analyzer *pipeline.Analyzer, store repository.RecordStore, defaultYear string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger:      logger,
		analyzer:    analyzer,
		store:       store,
		aggregator:  aggregate.NewAggregator(logger),
		calculator:  tax.NewCalculator(logger),
		exporter:    export.NewService(logger),
		defaultYear: defaultYear,
	}
}

// Router builds the HTTP routes.
func (s *Service) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/healthz", s.health)
	v1 := r.Group("/v1")
	{
		v1.POST("/documents/analyze", s.analyzeDocument)
		v1.POST("/profile/aggregate", s.aggregateProfile)
		v1.POST("/tax/recommend", s.recommendRegime)
		v1.GET("/reports/:year", s.yearReport)
	}
	return r
}

func (s *Service) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := uuid.New().String()
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), rid))
		c.Next()
		s.logger.Info("http.request",
			"req_id", rid,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}

func (s *Service) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// analyzeDocument accepts one multipart file under "file", runs the pipeline,
// and stores the result keyed by content hash.
func (s *Service) analyzeDocument(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}

	ext := constants.NormalizeExt(filepath.Ext(fh.Filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported file extension"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "open upload"})
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read upload"})
		return
	}

	text, err := ingest.ExtractText(ext, content)
	if err != nil {
		s.logger.Warn("http.analyze.extract_failed", "filename", fh.Filename, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not extract document text"})
		return
	}

	rec, err := s.analyzer.Analyze(c.Request.Context(), text, fh.Filename)
	if err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		return
	}

	if s.store != nil {
		// uploads carry no mtime; the content hash still dedupes re-uploads
		key := repository.CacheKey(content, int64(len(content)), 0)
		if err := s.store.Put(c.Request.Context(), key, rec); err != nil {
			s.logger.Warn("http.analyze.store_failed", "filename", fh.Filename, "error", err)
		}
	}
	c.JSON(http.StatusOK, rec)
}

type aggregateRequest struct {
	DefaultTaxYear string `json:"default_tax_year"`
}

// aggregateProfile folds every stored record into per-year ledgers.
func (s *Service) aggregateProfile(c *gin.Context) {
	var req aggregateRequest
	_ = c.ShouldBindJSON(&req)
	year := req.DefaultTaxYear
	if year == "" {
		year = s.defaultYear
	}

	records, err := s.listRecords(c)
	if err != nil {
		return
	}
	res := s.aggregator.Fold(records, year)
	c.JSON(http.StatusOK, gin.H{
		"ledgers": res.Ledgers,
		"folded":  res.Folded,
		"skipped": res.Skipped,
	})
}

type recommendRequest struct {
	TaxYear string `json:"tax_year"`
}

// recommendRegime computes both regimes for one year's ledger.
func (s *Service) recommendRegime(c *gin.Context) {
	var req recommendRequest
	_ = c.ShouldBindJSON(&req)
	year := req.TaxYear
	if year == "" {
		year = s.defaultYear
	}

	records, err := s.listRecords(c)
	if err != nil {
		return
	}
	res := s.aggregator.Fold(records, year)
	led, ok := res.Ledgers[year]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no records for tax year " + year})
		return
	}

	rec, err := s.calculator.Recommend(led)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.SaveRecommendation(c.Request.Context(), rec); err != nil {
		s.logger.Warn("http.recommend.store_failed", "tax_year", year, "error", err)
	}
	c.JSON(http.StatusOK, rec)
}

// yearReport streams the XLSX workbook for one year. The path segment accepts
// an optional .xlsx suffix.
func (s *Service) yearReport(c *gin.Context) {
	year := strings.TrimSuffix(c.Param("year"), ".xlsx")

	records, err := s.listRecords(c)
	if err != nil {
		return
	}
	res := s.aggregator.Fold(records, year)
	led, ok := res.Ledgers[year]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no records for tax year " + year})
		return
	}
	rec, err := s.calculator.Recommend(led)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// records without a year resolve to the requested year, matching Fold
	yearRecords := make([]entity.ReconciledRecord, 0, len(records))
	for _, r := range records {
		if r.TaxYear == year || (r.TaxYear == "" && r.Usable()) {
			yearRecords = append(yearRecords, r)
		}
	}

	b, err := s.exporter.ReportXLSX(led, rec, yearRecords)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report generation failed"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="taxsahaj-`+year+`.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", b)
}

// listRecords loads all stored records, writing the HTTP error itself on
// failure.
func (s *Service) listRecords(c *gin.Context) ([]entity.ReconciledRecord, error) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no record store configured"})
		return nil, errors.New("no store")
	}
	records, err := s.store.List(c.Request.Context())
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		s.logger.Error("http.list_records_failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load records"})
		return nil, err
	}
	return records, nil
}
