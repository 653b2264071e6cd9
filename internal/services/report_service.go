package services

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"contractreport/internal/config"
	"contractreport/internal/dataprocessing"
	apperrors "contractreport/internal/errors"
	"contractreport/internal/exporter"
	"contractreport/internal/infrastructure"
	"contractreport/internal/validation"
	"contractreport/pkg/contracts/domain"
)

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// AnalyzeOptions overrides the configured report options for one run. Zero
// values keep the configuration.
type AnalyzeOptions struct {
	TopN        int
	TargetMenus []string
}

// Attachment is an exported artifact ready to be sent as a download
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService loads uploads, builds contract reports and exports them.
// It keeps no state between calls.
type ReportService struct {
	cfg          config.ReportConfig
	parseOpts    dataprocessing.ParseOptions
	engine       *dataprocessing.Engine
	engineTracer trace.Tracer
	tracer       trace.Tracer
	validator    *validation.FileValidator
	csv          *exporter.CSVWriter
	metrics      *infrastructure.ReportMetrics
	logger       *slog.Logger
}

// NewReportService creates a report service. tracer and metrics may be nil.
func NewReportService(cfg config.ReportConfig, tracer trace.Tracer, metrics *infrastructure.ReportMetrics, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "report_service"))

	serviceTracer := tracer
	if serviceTracer == nil {
		serviceTracer = otel.Tracer("contractreport/services")
	}

	parseOpts := dataprocessing.ParseOptionsFromConfig(cfg)
	parseOpts.Logger = logger

	return &ReportService{
		cfg:          cfg,
		parseOpts:    parseOpts,
		engine:       dataprocessing.NewEngine(dataprocessing.OptionsFromConfig(cfg), tracer, logger),
		engineTracer: tracer,
		tracer:       serviceTracer,
		validator:    validation.NewFileValidator(logger),
		csv:          exporter.NewCSVWriter("", cfg.BOM, logger),
		metrics:      metrics,
		logger:       logger,
	}
}

// Options returns the engine options used when a call overrides nothing
func (s *ReportService) Options() dataprocessing.Options {
	return s.engine.Options()
}

// Analyze loads one upload and builds its report. filename only selects the
// format and labels the report.
func (s *ReportService) Analyze(ctx context.Context, filename string, r io.Reader, opts AnalyzeOptions) (*domain.ContractReport, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "report.analyze", trace.WithAttributes(
		attribute.String("upload.name", filename),
	))
	defer span.End()

	engine, err := s.engineFor(opts)
	if err != nil {
		return nil, err
	}

	format, err := s.validator.ValidateUpload(filename)
	if err != nil {
		err = uploadError(filename, err)
		s.loadFailed(ctx, filename, "unknown", err)
		return nil, err
	}
	span.SetAttributes(attribute.String("upload.format", string(format)))

	br := bufio.NewReader(r)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("%w: %s", ErrEmptyUpload, filepath.Base(filename))
		} else {
			err = apperrors.NewParsingError("failed to read upload", err).
				WithContext("source", filepath.Base(filename))
		}
		s.loadFailed(ctx, filename, string(format), err)
		return nil, err
	}

	parseOpts := s.parseOpts
	parseOpts.SourceName = filepath.Base(filename)
	table, err := dataprocessing.Parse(ctx, br, format, parseOpts)
	if err != nil {
		s.loadFailed(ctx, filename, string(format), err)
		return nil, err
	}

	report := engine.Run(ctx, table)
	duration := time.Since(start)
	s.metrics.RecordReport(ctx, string(format), table.Rows(), duration)

	s.logger.InfoContext(ctx, "report ready",
		slog.String("report_id", report.ID),
		slog.String("source", report.Summary.Source),
		slog.Int("skipped_sections", len(report.Skipped)),
		slog.Duration("duration", duration))

	return report, nil
}

// AnalyzeFile validates a local file and analyzes it
func (s *ReportService) AnalyzeFile(ctx context.Context, path string, opts AnalyzeOptions) (*domain.ContractReport, error) {
	if _, err := s.validator.ValidateFile(path); err != nil {
		return nil, uploadError(path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return s.Analyze(ctx, path, f, opts)
}

// ArtifactCSV renders one named CSV artifact of report
func (s *ReportService) ArtifactCSV(ctx context.Context, report *domain.ContractReport, name string) (*Attachment, error) {
	a, err := exporter.ParseArtifact(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownArtifact, name)
	}

	var buf bytes.Buffer
	if err := s.csv.WriteArtifact(&buf, report, a); err != nil {
		if errors.Is(err, exporter.ErrSectionUnavailable) {
			return nil, fmt.Errorf("%w: %s", ErrSectionUnavailable, a)
		}
		return nil, fmt.Errorf("failed to write %s: %w", a, err)
	}

	s.logger.DebugContext(ctx, "artifact rendered",
		slog.String("artifact", string(a)),
		slog.Int("bytes", buf.Len()))

	return &Attachment{Filename: a.Filename(), ContentType: ContentTypeCSV, Data: buf.Bytes()}, nil
}

// Artifacts renders every available CSV artifact of report in export order
func (s *ReportService) Artifacts(ctx context.Context, report *domain.ContractReport) ([]*Attachment, error) {
	available := exporter.Available(report)
	out := make([]*Attachment, 0, len(available))
	for _, a := range available {
		att, err := s.ArtifactCSV(ctx, report, string(a))
		if err != nil {
			return nil, err
		}
		out = append(out, att)
	}
	return out, nil
}

// Workbook renders report as a single XLSX workbook
func (s *ReportService) Workbook(ctx context.Context, report *domain.ContractReport) (*Attachment, error) {
	var buf bytes.Buffer
	if err := exporter.WriteWorkbook(&buf, report); err != nil {
		return nil, apperrors.NewStorageError("failed to build workbook", err)
	}

	s.logger.DebugContext(ctx, "workbook rendered", slog.Int("bytes", buf.Len()))

	return &Attachment{Filename: exporter.WorkbookFilename, ContentType: ContentTypeXLSX, Data: buf.Bytes()}, nil
}

// ExportAll writes every available CSV artifact, and optionally the
// workbook, into dir. It returns the written paths.
func (s *ReportService) ExportAll(ctx context.Context, report *domain.ContractReport, dir string, workbook bool) ([]string, error) {
	if err := s.validator.ValidateOutputDirectory(dir); err != nil {
		return nil, apperrors.NewStorageError("output directory unavailable", err).WithContext("directory", dir)
	}

	written, err := exporter.NewCSVWriter(dir, s.cfg.BOM, s.logger).ExportAll(report)
	if err != nil {
		return written, apperrors.NewStorageError("failed to export report", err).WithContext("directory", dir)
	}

	if workbook {
		path := filepath.Join(dir, exporter.WorkbookFilename)
		if err := writeWorkbookFile(path, report); err != nil {
			return written, apperrors.NewStorageError("failed to export workbook", err).WithContext("path", path)
		}
		written = append(written, path)
	}

	s.logger.InfoContext(ctx, "report exported",
		slog.String("report_id", report.ID),
		slog.String("directory", dir),
		slog.Int("files", len(written)))

	return written, nil
}

func writeWorkbookFile(path string, report *domain.ContractReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := exporter.WriteWorkbook(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// engineFor returns the configured engine, or a fresh one when opts
// overrides it.
func (s *ReportService) engineFor(opts AnalyzeOptions) (*dataprocessing.Engine, error) {
	if opts.TopN < 0 {
		return nil, fmt.Errorf("%w: top must be at least 1, got %d", ErrInvalidInput, opts.TopN)
	}

	var menus []string
	for _, m := range opts.TargetMenus {
		if m = strings.TrimSpace(m); m != "" {
			menus = append(menus, m)
		}
	}
	if opts.TopN == 0 && len(menus) == 0 {
		return s.engine, nil
	}

	eo := s.engine.Options()
	if opts.TopN > 0 {
		eo.TopN = opts.TopN
	}
	if len(menus) > 0 {
		eo.TargetMenus = menus
	}
	return dataprocessing.NewEngine(eo, s.engineTracer, s.logger), nil
}

func (s *ReportService) loadFailed(ctx context.Context, filename, format string, err error) {
	infrastructure.RecordError(ctx, err)
	s.metrics.RecordLoadFailure(ctx, format, err)
	s.logger.WarnContext(ctx, "upload could not be loaded",
		slog.String("upload", filepath.Base(filename)),
		slog.String("format", format),
		slog.String("error", err.Error()))
}

// uploadError maps file validation failures onto service sentinels
func uploadError(name string, err error) error {
	if errors.Is(err, dataprocessing.ErrUnsupportedFormat) {
		ext := filepath.Ext(name)
		if ext == "" {
			ext = "no extension"
		}
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
