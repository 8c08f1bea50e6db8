package http

import (
	"context"

	"github.com/kairadc/poker-standings/internal/services"
	"github.com/kairadc/poker-standings/internal/standings"
	"github.com/kairadc/poker-standings/pkg/contracts/domain"
)

// StandingsServiceInterface is the service surface the handlers consume.
// Every read returns the table plus the DataQuality block of the snapshot
// it was computed from, so one request carries both.
type StandingsServiceInterface interface {
	Overview(ctx context.Context, filter domain.SessionFilter) (domain.Overview, *domain.DataQuality, error)
	Standings(ctx context.Context, filter domain.SessionFilter) ([]domain.PlayerStanding, *domain.DataQuality, error)
	Sessions(ctx context.Context, filter domain.SessionFilter) ([]domain.SessionSummary, *domain.DataQuality, error)
	Leaderboards(ctx context.Context, dim standings.Dimension, filter domain.SessionFilter) ([]domain.LeaderboardGroup, *domain.DataQuality, error)
	PlayerProfile(ctx context.Context, player string, filter domain.SessionFilter) (domain.PlayerProfile, *domain.DataQuality, error)
	Refresh(ctx context.Context) (*services.LoadResult, error)
	SourceStatus(ctx context.Context) domain.SourceStatus
}
