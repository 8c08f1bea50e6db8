package services

import "errors"

// ErrPlayerNotFound means the requested player has no consistent sessions
// in the current record set. Handlers translate it into a 404 problem; the
// source and standings packages carry their own sentinels
// (source.ErrUnavailable, standings.SchemaError) which pass through the
// service untouched.
var ErrPlayerNotFound = errors.New("player not found")
