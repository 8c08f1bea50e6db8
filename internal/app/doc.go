// Package app provides application initialization and lifecycle management
// for the poker standings dashboard. It wires configuration, logging,
// telemetry, row sources, services and the HTTP router, and owns graceful
// shutdown.
//
// # Startup
//
// Initialization runs in a fixed order:
//
//	1. Load configuration from file and POKER_ environment variables
//	2. Initialize logging and OpenTelemetry
//	3. Build the row sources (sheets, file or bundled sample)
//	4. Create the snapshot cache and the standings/health services
//	5. Set up the router and middleware chain
//	6. Configure the HTTP server
//
// # Usage
//
// A typical main:
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    ...
//	}
//	if err := application.Run(); err != nil {
//	    ...
//	}
//
// Run blocks until SIGINT or SIGTERM, then shuts down: active requests
// drain within the configured timeout, the runtime metrics collector
// stops, and the OpenTelemetry providers flush.
//
// # Error Handling
//
// All initialization errors are returned to the caller. The package never
// calls os.Exit() itself, leaving exit control to main.
package app
