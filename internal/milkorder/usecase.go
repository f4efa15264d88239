package milkorder

import (
	"context"

	"github.com/fekuna/omnipos-storeops-service/internal/auth"
	"github.com/fekuna/omnipos-storeops-service/internal/milkorder/dto"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
)

type UseCase interface {
	GetActiveSession(ctx context.Context, user auth.UserContext, date string) (*dto.SessionView, error)
	StartSession(ctx context.Context, input *dto.StartSessionInput) (*dto.SessionView, error)
	GetSession(ctx context.Context, id string, user auth.UserContext) (*dto.SessionView, error)
	WriteCount(ctx context.Context, input *dto.WriteCountInput) (*model.MilkOrderEntry, error)
	SavePhase(ctx context.Context, input *dto.SavePhaseInput) (*dto.SessionView, error)
	AdvancePhase(ctx context.Context, input *dto.AdvancePhaseInput) (*dto.SessionView, error)
	GetSummary(ctx context.Context, id string, user auth.UserContext) (*model.MilkSummary, error)
	ListHistory(ctx context.Context, user auth.UserContext, page, pageSize int) ([]model.MilkOrderSession, int, error)
}
