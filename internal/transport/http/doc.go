// Package http implements the HTTP handlers for the poker standings
// dashboard API. It is a thin layer between transport and the service
// packages: handlers parse and validate requests, call the standings or
// health service, and render JSON.
//
// # Handler Rules
//
// Handlers stay thin: parse and validate the request, call a service,
// render the result. Service errors are translated to HTTP responses
// here and nowhere else, and no aggregation happens in this package
// (that all lives in internal/standings).
//
// # Response Shape
//
// Table endpoints share one envelope so the frontend can render any of
// them with the same plumbing:
//
//	{
//	    "status": "success",
//	    "data": [...],
//	    "count": 12,
//	    "data_quality": { "source": "sheets", "demo_mode": false, ... }
//	}
//
// The data_quality block travels with every payload; the frontend uses it
// for the demo-mode banner and per-load warnings without a second request.
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/player-not-found",
//	    "title": "Player Not Found",
//	    "status": 404,
//	    "detail": "no results recorded for player 'dana'",
//	    "instance": "/api/players/dana"
//	}
//
// Service sentinels map to problems in the handler (ErrPlayerNotFound to
// 404); everything else goes through the shared ErrorHandler, which knows
// the source and schema error types.
//
// # Testing
//
// Handlers are tested with httptest against a mocked service interface:
// mock the StandingsServiceInterface, issue requests through the chi
// router, and assert on status codes and rendered JSON.
package http
