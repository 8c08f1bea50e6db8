// Package standings is the computation core of the dashboard: it turns raw
// spreadsheet rows into validated session records and the derived tables
// the frontend displays.
//
// # Architecture
//
// The package is organized into three stages that mirror the data flow:
//
// 1. Validator: detects the sheet schema and coerces raw rows into typed
// session records, rejecting malformed rows with reasons
// 2. Consistency: checks the zero-sum invariant per session and flags
// sessions that cannot balance
// 3. Aggregator: ranks players and builds standings, leaderboards, session
// history, overview KPIs and player profiles
//
// # Usage
//
// A full pass over a fetched snapshot:
//
//	validator := standings.NewValidator(logger)
//	result, err := validator.Validate(ctx, snapshot.Headers, snapshot.Rows)
//	if err != nil {
//	    return err // unrecognized schema, fatal to the load
//	}
//
//	report := standings.CheckConsistency(result.Records, result.AffectedSessions)
//	agg := standings.NewAggregator(logger, standings.DefaultAggregatorConfig())
//	table := agg.Standings(ctx, result.Records, report)
//
// # Determinism
//
// Identical input rows always produce byte-identical tables. Grouping uses
// maps internally but every output is ordered by explicit sort keys, and
// no computation reads the wall clock. Money math uses decimal values end
// to end; floats never touch a monetary amount.
//
// # Error Handling
//
// Row-level problems never abort a load: bad rows land in the rejected
// list and their sessions are flagged inconsistent. The only fatal error
// is a header row matching neither accepted schema, returned as a
// *SchemaError.
package standings
