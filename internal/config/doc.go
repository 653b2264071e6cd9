// Package config provides centralized configuration management for the contract
// report service and CLI.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern CONTRACT_* for namespacing:
//
//	CONTRACT_SERVER_PORT=8080
//	CONTRACT_LOGGING_LEVEL=debug
//	CONTRACT_REPORT_TOP_N=5
//	CONTRACT_REPORT_TARGET_MENUS="Approval DD,Approval RM"
//
// # Validation
//
// Every field carries go-playground/validator tags; Load fails with the full
// list of violations rather than the first one.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For tests, config.Default() returns a valid configuration that needs no
// file or environment.
package config
