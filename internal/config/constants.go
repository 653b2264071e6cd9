package config

import (
	"time"

	"contractreport/pkg/contracts"
)

// Application constants
const (
	// Application Info
	AppName    = "Contract Report"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment variable, e.g. CONTRACT_SERVER_PORT
	EnvPrefix = "CONTRACT"

	// Server
	DefaultPort           = 8080
	DefaultMaxUploadBytes = 32 << 20 // 32MB

	// Rate Limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 40

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Report sections
	DefaultTopN        = 10
	DefaultPreviewRows = 20

	// Network Timeouts
	DefaultHTTPTimeout = 30 * time.Second

	// API Endpoints
	APIBasePath     = "/api/v1"
	ReportsEndpoint = "/api/v1/reports"
	HealthEndpoint  = "/api/health"
	MetricsEndpoint = "/metrics"
)

// DefaultTargetMenus are the menus ranked by the top-branches section
var DefaultTargetMenus = []string{
	"Approval DD",
	"Approval Direksi",
	"Approval RM",
	"Upload hasil Survey",
}

// DefaultDateLayouts are tried in order when coercing created_at cells.
// Numeric dates that do not start with the year are always day first; the
// unpadded day and month tokens also accept a leading zero.
var DefaultDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"2-1-2006 15:04:05",
	"2-1-2006 15:04",
	"2-1-2006",
	"2 Jan 2006",
}
