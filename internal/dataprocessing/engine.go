package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"contractreport/internal/config"
	"contractreport/pkg/contracts/domain"
)

const tracerName = "contractreport/dataprocessing"

// Options tunes the report sections.
type Options struct {
	TargetMenus []string
	TopN        int
	PreviewRows int
}

// OptionsFromConfig builds engine options from the report configuration.
func OptionsFromConfig(cfg config.ReportConfig) Options {
	return Options{
		TargetMenus: append([]string(nil), cfg.TargetMenus...),
		TopN:        cfg.TopN,
		PreviewRows: cfg.PreviewRows,
	}
}

// DefaultOptions returns the options of the default configuration.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default().Report)
}

// Engine turns a loaded table into a contract report. It holds no state
// between runs and never modifies the table.
type Engine struct {
	opts   Options
	tracer trace.Tracer
	logger *slog.Logger
}

// NewEngine creates an engine. A nil tracer uses the global provider and a
// nil logger uses slog.Default.
func NewEngine(opts Options, tracer trace.Tracer, logger *slog.Logger) *Engine {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TopN <= 0 {
		opts.TopN = config.DefaultTopN
	}
	if opts.TargetMenus == nil {
		opts.TargetMenus = append([]string(nil), config.DefaultTargetMenus...)
	}
	return &Engine{
		opts:   opts,
		tracer: tracer,
		logger: logger.With(slog.String("component", "report_engine")),
	}
}

// Options returns the options the engine runs with.
func (e *Engine) Options() Options {
	return e.opts
}

// Run builds every section of the report. Sections whose columns are missing
// are listed in Skipped; empty results add a notice.
func (e *Engine) Run(ctx context.Context, t *domain.Table) *domain.ContractReport {
	ctx, span := e.tracer.Start(ctx, "report.run", trace.WithAttributes(
		attribute.String("report.source", t.SourceName),
		attribute.Int("report.rows", t.Rows()),
		attribute.Int("report.columns", t.Cols()),
	))
	defer span.End()

	report := &domain.ContractReport{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Summary: domain.LoadSummary{
			Source:       t.SourceName,
			Format:       t.Format,
			Rows:         t.Rows(),
			Columns:      t.Cols(),
			CoercedDates: t.CoercedDates,
		},
	}

	e.section(ctx, report, t, domain.SectionMultiMenu, MultiMenuFields, func() bool {
		report.MultiMenu = DetectMultiMenu(t)
		if report.MultiMenu == nil {
			return false
		}
		if report.MultiMenu.Empty {
			report.Notices = append(report.Notices, domain.Notice{
				Section: domain.SectionMultiMenu,
				Level:   domain.NoticeInfo,
				Message: "no contract entered more than one menu",
			})
		}
		return true
	})

	e.section(ctx, report, t, domain.SectionPivotByDate, PivotByDateFields, func() bool {
		report.PivotByDate = PivotByLatestDate(t)
		return report.PivotByDate != nil
	})

	e.section(ctx, report, t, domain.SectionPivotByStatus, PivotByStatusFields, func() bool {
		report.PivotByStatus = PivotByLatestStatus(t)
		return report.PivotByStatus != nil
	})

	e.section(ctx, report, t, domain.SectionTopBranches, RankingFields, func() bool {
		report.TopBranches = TopBranches(t, e.opts.TargetMenus, e.opts.TopN)
		for _, r := range report.TopBranches {
			if r.NoData {
				report.Notices = append(report.Notices, domain.Notice{
					Section: domain.SectionTopBranches,
					Level:   domain.NoticeWarning,
					Message: fmt.Sprintf("no data for menu: %s", r.Menu),
				})
			}
		}
		return report.TopBranches != nil
	})

	e.section(ctx, report, t, domain.SectionPreview, nil, func() bool {
		report.Preview = Preview(t, e.opts.PreviewRows)
		return true
	})

	span.SetAttributes(
		attribute.Int("report.skipped", len(report.Skipped)),
		attribute.Int("report.notices", len(report.Notices)),
	)
	e.logger.InfoContext(ctx, "report generated",
		slog.String("report_id", report.ID),
		slog.String("source", t.SourceName),
		slog.Int("rows", t.Rows()),
		slog.Int("skipped", len(report.Skipped)),
		slog.Int("notices", len(report.Notices)))

	return report
}

// section runs build inside its own span. A false return with missing
// columns records the section as skipped.
func (e *Engine) section(ctx context.Context, report *domain.ContractReport, t *domain.Table, id domain.SectionID, required []domain.Field, build func() bool) {
	_, span := e.tracer.Start(ctx, "report."+string(id))
	defer span.End()

	if build() {
		span.SetAttributes(attribute.Bool("section.skipped", false))
		return
	}

	missing := t.Missing(required...)
	span.SetAttributes(attribute.Bool("section.skipped", true))
	if len(missing) == 0 {
		return
	}

	report.Skipped = append(report.Skipped, domain.SkippedSection{Section: id, Missing: missing})
	fields := make([]string, len(missing))
	for i, f := range missing {
		fields[i] = string(f)
	}
	span.SetAttributes(attribute.StringSlice("section.missing", fields))
	e.logger.DebugContext(ctx, "section skipped",
		slog.String("section", string(id)),
		slog.Any("missing", fields))
}
