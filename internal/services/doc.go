// Package services implements the business logic layer of the contract
// report application. It sits between the transports (HTTP handlers and the
// CLI) and the report engine, so both front ends load, analyze and export
// uploads the same way.
//
// # Services
//
//	- ReportService: loads a CSV or XLSX upload, runs the report engine and
//	  renders CSV artifacts and the XLSX workbook
//	- HealthService: liveness, readiness and version information
//
// # Common Service Pattern
//
// Services receive their collaborators through the constructor and never
// keep state between calls:
//
//	svc := services.NewReportService(cfg.Report, tracer, metrics, logger)
//	report, err := svc.Analyze(ctx, "contracts.xlsx", r, services.AnalyzeOptions{TopN: 5})
//
// # Error Handling
//
// Services return sentinel errors that handlers map to RFC 7807 responses:
//
//	- ErrUnsupportedFormat and ErrEmptyUpload for unusable uploads
//	- ErrUnknownArtifact and ErrSectionUnavailable for exports
//	- ErrInvalidInput for bad options or local paths
//
// Unreadable file content surfaces as a PARSING AppError from the errors
// package and is reported once per upload.
package services
