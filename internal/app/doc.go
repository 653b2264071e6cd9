// Package app wires the contract report server: configuration, logging,
// OpenTelemetry, the report and health services, and the HTTP router.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, an optional YAML file and CONTRACT_* variables
//	2. Initialize the logger and the OpenTelemetry providers
//	3. Create the report and health services
//	4. Build the router and the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication("")
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM. In-flight requests finish within
// server.shutdown_timeout, then the telemetry providers are flushed.
//
// The app does not call os.Exit; errors return to the caller.
package app
