package http

import (
	"context"
	"io"

	"contractreport/internal/dataprocessing"
	"contractreport/internal/services"
	"contractreport/pkg/contracts/domain"
)

// ReportServiceInterface defines the report operations the HTTP layer needs
type ReportServiceInterface interface {
	Analyze(ctx context.Context, filename string, r io.Reader, opts services.AnalyzeOptions) (*domain.ContractReport, error)
	ArtifactCSV(ctx context.Context, report *domain.ContractReport, name string) (*services.Attachment, error)
	Artifacts(ctx context.Context, report *domain.ContractReport) ([]*services.Attachment, error)
	Workbook(ctx context.Context, report *domain.ContractReport) (*services.Attachment, error)
	Options() dataprocessing.Options
}
