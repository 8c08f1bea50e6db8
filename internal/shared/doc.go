// Package shared holds utilities used across the codebase that do not
// belong to any single domain or architectural layer.
//
// # Structure
//
//   - testutil: testing helpers, currently the buffered slog handler used
//     to assert on log output
//
// # Ground Rules
//
// Only generic code belongs here: test utilities shared by multiple
// packages, and helpers with no domain logic. Business rules and
// imports of other internal packages stay out, so anything can depend
// on shared without creating a cycle.
package shared
