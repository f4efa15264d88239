package rtde

import (
	"context"

	"github.com/fekuna/omnipos-storeops-service/internal/auth"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
	"github.com/fekuna/omnipos-storeops-service/internal/rtde/dto"
)

type UseCase interface {
	GetActiveSession(ctx context.Context, user auth.UserContext) (*dto.SessionView, error)
	StartSession(ctx context.Context, input *dto.StartSessionInput) (*dto.SessionView, error)
	GetSession(ctx context.Context, id string, user auth.UserContext) (*dto.SessionView, error)
	WriteCount(ctx context.Context, input *dto.WriteCountInput) (*model.RTDEEntry, error)
	SaveCounts(ctx context.Context, input *dto.SaveCountsInput) (*dto.SessionView, error)
	GetUncounted(ctx context.Context, id string, user auth.UserContext) ([]model.RTDEEntry, error)
	RequestPullList(ctx context.Context, input *dto.PullListInput) (*dto.PullListView, error)
	GetPullList(ctx context.Context, id string, user auth.UserContext) (*dto.PullListView, error)
	MarkPulled(ctx context.Context, input *dto.MarkPulledInput) (*model.PullItem, error)
	CompleteSession(ctx context.Context, id string, user auth.UserContext) (*dto.CompletionView, error)
}
