// Package services implements the business logic layer between the HTTP
// handlers and the row sources.
//
// # Architecture
//
// Every service method takes a context for cancellation and tracing,
// dependencies arrive through constructors, and each method corresponds
// to one dashboard operation.
//
// # Services
//
//	- StandingsService: runs the fetch-validate-derive-aggregate pipeline,
//	  caches computed snapshots and applies request filters
//	- HealthService: health, readiness and version reporting
//
// # Pipeline
//
// One load is a synchronous pass: fetch a snapshot from the configured
// source (degrading to the bundled sample when it is unreachable),
// validate and coerce the rows, check the zero-sum invariant per session,
// then aggregate the dashboard tables. The computed result is cached per
// source with a TTL; concurrent cache misses collapse into a single
// in-flight load, so a burst of dashboard requests costs one fetch.
//
// # Error Handling
//
// Services pass through the sentinels of the packages below them
// (source.ErrUnavailable, *standings.SchemaError) and add their own for
// business-level failures (ErrPlayerNotFound). Handlers translate all of
// them into RFC 7807 problems.
//
// # Testing
//
// Services are tested against stub row sources:
//
//	svc := NewStandingsService(stub, nil, nil, nil, standings.DefaultAggregatorConfig(), logger)
//	rows, quality, err := svc.Standings(ctx, domain.SessionFilter{})
package services
