package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/kairadc/poker-standings/pkg/contracts/domain"
)

// UnavailableSource stands in for a configured source whose client could
// not be constructed, a Sheets client with unreadable credentials for
// example. Every fetch fails with the construction error, so the regular
// sample fallback and the status endpoint report the real problem instead
// of the server refusing to start.
type UnavailableSource struct {
	kind domain.SourceKind
	err  error
}

func NewUnavailableSource(kind domain.SourceKind, err error) *UnavailableSource {
	if err == nil {
		err = ErrUnavailable
	}
	return &UnavailableSource{kind: kind, err: err}
}

func (u *UnavailableSource) ID() string {
	return "unavailable:" + string(u.kind)
}

func (u *UnavailableSource) Kind() domain.SourceKind {
	return u.kind
}

func (u *UnavailableSource) Fetch(ctx context.Context) (*Snapshot, error) {
	if errors.Is(u.err, ErrUnavailable) {
		return nil, u.err
	}
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, u.err)
}

func (u *UnavailableSource) Status(ctx context.Context) domain.SourceStatus {
	return domain.SourceStatus{
		Kind:       u.kind,
		Configured: true,
		Error:      u.err.Error(),
	}
}
