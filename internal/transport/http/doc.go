// Package http implements the HTTP request handlers of the contract report
// service. Handlers stay thin: they read the multipart upload, validate
// query parameters and delegate to the services package.
//
// # Routes
//
//	GET  /                                  upload form
//	POST /dashboard                         HTML report for one upload
//	POST /api/v1/reports                    JSON report
//	POST /api/v1/reports/exports/{artifact} CSV download with a fixed filename
//	POST /api/v1/reports/workbook           XLSX download
//	GET  /api/health, /api/health/ready, /api/health/live, /api/version
//
// Every report route takes the file in the "file" form field. Nothing is
// stored between requests, so an export re-sends its upload.
//
// # Error Handling
//
// API errors follow RFC 7807 Problem Details and are written by
// errors.ErrorHandler:
//
//	{
//	    "type": "/errors/upload/unreadable",
//	    "title": "Unreadable Upload",
//	    "status": 422,
//	    "detail": "failed to read xlsx upload: zip: not a valid zip file",
//	    "instance": "/api/v1/reports"
//	}
//
// The dashboard renders the same failures inline on the upload form.
//
// # Testing
//
// Handlers are tested with httptest against a testify mock of
// ReportServiceInterface, and end to end against the real service.
package http
