package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-storeops-service/internal/apperror"
	"github.com/fekuna/omnipos-storeops-service/internal/auth"
	"github.com/fekuna/omnipos-storeops-service/internal/calc"
	"github.com/fekuna/omnipos-storeops-service/internal/catalog"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
	"github.com/fekuna/omnipos-storeops-service/internal/phase"
	"github.com/fekuna/omnipos-storeops-service/internal/rtde"
	"github.com/fekuna/omnipos-storeops-service/internal/rtde/dto"
	"github.com/fekuna/omnipos-storeops-service/pkg/broker"
	"github.com/fekuna/omnipos-storeops-service/pkg/cache"
	"github.com/fekuna/omnipos-storeops-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultTTL = 4 * time.Hour

type rtdeUseCase struct {
	repo      rtde.Repository
	items     catalog.ItemSource
	locker    cache.Locker
	publisher broker.Publisher
	logger    logger.ZapLogger
	ttl       time.Duration
	now       func() time.Time
}

type Option func(*rtdeUseCase)

func WithClock(now func() time.Time) Option {
	return func(uc *rtdeUseCase) { uc.now = now }
}

// WithTTL sets how long a session lives after it is started.
func WithTTL(ttl time.Duration) Option {
	return func(uc *rtdeUseCase) {
		if ttl > 0 {
			uc.ttl = ttl
		}
	}
}

func NewRTDEUseCase(
	repo rtde.Repository,
	items catalog.ItemSource,
	locker cache.Locker,
	publisher broker.Publisher,
	log logger.ZapLogger,
	opts ...Option,
) rtde.UseCase {
	uc := &rtdeUseCase{
		repo:      repo,
		items:     items,
		locker:    locker,
		publisher: publisher,
		logger:    log,
		ttl:       DefaultTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *rtdeUseCase) clock() time.Time {
	return uc.now().UTC().Truncate(time.Microsecond)
}

func canAccess(s *model.RTDESession, user auth.UserContext) bool {
	return s.UserID == user.UserID || user.IsAdmin()
}

// live hides expired sessions and completed ones whose delete did not go
// through; the sweep removes their rows later.
func (uc *rtdeUseCase) live(s *model.RTDESession) *model.RTDESession {
	if s == nil || s.Status == model.RTDEPhaseCompleted || s.IsExpired(uc.clock()) {
		return nil
	}
	return s
}

func (uc *rtdeUseCase) load(ctx context.Context, id string, user auth.UserContext) (*model.RTDESession, error) {
	s, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s = uc.live(s)
	if s == nil || !canAccess(s, user) {
		return nil, apperror.SessionNotFound()
	}
	return s, nil
}

func (uc *rtdeUseCase) loadWritable(ctx context.Context, id string, user auth.UserContext) (*model.RTDESession, error) {
	s, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s = uc.live(s)
	if s == nil {
		return nil, apperror.SessionNotFound()
	}
	if !canAccess(s, user) {
		return nil, apperror.SessionForbidden()
	}
	if err := phase.RTDE.CheckWritable(s.Status); err != nil {
		return nil, err
	}
	return s, nil
}

func requirePhase(s *model.RTDESession, p model.RTDEPhase) error {
	if s.Status != p {
		return apperror.InvalidTransition("error.transition.phase_mismatch",
			fmt.Sprintf("session is in phase %s, not %s", s.Status, p),
			map[string]any{"Current": string(s.Status), "Phase": string(p)})
	}
	return nil
}

func counted(e model.RTDEEntry) model.Count { return e.Counted }

func progress(s *model.RTDESession) int {
	switch s.Status {
	case model.RTDEPhaseCounting:
		done := len(s.Entries) - len(phase.Uncounted(s.Entries, counted))
		return calc.ProgressPercent(done, len(s.Entries))
	case model.RTDEPhasePulling:
		return pullProgress(calc.PullList(s.Entries))
	}
	return 100
}

func pullProgress(items []model.PullItem) int {
	done := 0
	for _, it := range items {
		if it.Pulled {
			done++
		}
	}
	return calc.ProgressPercent(done, len(items))
}

func (uc *rtdeUseCase) withEntries(ctx context.Context, s *model.RTDESession) error {
	entries, err := uc.repo.ListEntries(ctx, s.ID)
	if err != nil {
		return err
	}
	s.Entries = entries
	return nil
}

func (uc *rtdeUseCase) view(ctx context.Context, s *model.RTDESession) (*dto.SessionView, error) {
	if err := uc.withEntries(ctx, s); err != nil {
		return nil, err
	}
	return &dto.SessionView{RTDESession: s, ProgressPercent: progress(s)}, nil
}

func (uc *rtdeUseCase) GetActiveSession(ctx context.Context, user auth.UserContext) (*dto.SessionView, error) {
	s, err := uc.repo.FindByUser(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	if s = uc.live(s); s == nil {
		return nil, nil
	}
	return uc.view(ctx, s)
}

func (uc *rtdeUseCase) StartSession(ctx context.Context, input *dto.StartSessionInput) (*dto.SessionView, error) {
	mode := input.Mode
	if mode == "" {
		mode = dto.StartModeResume
	}
	if mode != dto.StartModeNew && mode != dto.StartModeResume {
		return nil, apperror.Validation("error.validation.mode", `mode must be "new" or "resume"`, nil)
	}

	var session *model.RTDESession
	lockKey := "lock:rtde:" + input.User.UserID
	err := cache.WithLock(ctx, uc.locker, lockKey, cache.DefaultLockOptions, func() error {
		if mode == dto.StartModeResume {
			existing, err := uc.repo.FindByUser(ctx, input.User.UserID)
			if err != nil {
				return err
			}
			if existing = uc.live(existing); existing != nil {
				session = existing
				return nil
			}
		}

		items, err := uc.items.ListActive(ctx, model.ItemKindRTDE)
		if err != nil {
			return fmt.Errorf("list rtde items: %w", err)
		}

		now := uc.clock()
		session = &model.RTDESession{
			ID:        uuid.New().String(),
			ScopeID:   input.User.Scope(),
			UserID:    input.User.UserID,
			Status:    phase.RTDE.First(),
			CreatedAt: now,
			UpdatedAt: now,
			ExpiresAt: now.Add(uc.ttl),
		}
		if err := uc.repo.ReplaceSession(ctx, session, items); err != nil {
			return fmt.Errorf("create rtde session: %w", err)
		}

		uc.logger.Info("rtde session started",
			zap.String("session_id", session.ID), zap.String("user_id", session.UserID),
			zap.Int("items", len(items)), zap.Time("expires_at", session.ExpiresAt))
		uc.publish(ctx, model.EventSessionStarted, session, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.view(ctx, session)
}

func (uc *rtdeUseCase) GetSession(ctx context.Context, id string, user auth.UserContext) (*dto.SessionView, error) {
	s, err := uc.load(ctx, id, user)
	if err != nil {
		return nil, err
	}
	return uc.view(ctx, s)
}

// validateValue rejects a missing value as well as one out of range; a
// missing value must never be stored as zero.
func validateValue(value *int) (model.Count, error) {
	if value == nil || !model.ValidCount(*value) {
		return model.Count{}, apperror.Validation("error.validation.count_range",
			fmt.Sprintf("counted must be a whole number between 0 and %d", model.MaxCount),
			map[string]any{"Field": "counted", "Max": model.MaxCount})
	}
	return model.NewCount(*value), nil
}

func (uc *rtdeUseCase) ensureItem(ctx context.Context, sessionID, itemID string) error {
	entry, err := uc.repo.GetEntry(ctx, sessionID, itemID)
	if err != nil {
		return err
	}
	if entry != nil {
		return nil
	}
	ok, err := uc.repo.ItemExists(ctx, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("error.not_found.entry",
			fmt.Sprintf("item %s is not part of this session", itemID), map[string]any{"ItemID": itemID})
	}
	return nil
}

func (uc *rtdeUseCase) WriteCount(ctx context.Context, input *dto.WriteCountInput) (*model.RTDEEntry, error) {
	value, err := validateValue(input.Value)
	if err != nil {
		return nil, err
	}
	s, err := uc.loadWritable(ctx, input.SessionID, input.User)
	if err != nil {
		return nil, err
	}
	if err := uc.ensureItem(ctx, s.ID, input.ItemID); err != nil {
		return nil, err
	}

	now := uc.clock()
	s.UpdatedAt = now
	write := rtde.CountWrite{ItemID: input.ItemID, Value: value}
	if err := uc.repo.WriteCounts(ctx, s, []rtde.CountWrite{write}, now); err != nil {
		return nil, fmt.Errorf("write rtde count: %w", err)
	}
	return uc.repo.GetEntry(ctx, s.ID, input.ItemID)
}

func (uc *rtdeUseCase) SaveCounts(ctx context.Context, input *dto.SaveCountsInput) (*dto.SessionView, error) {
	writes := make([]rtde.CountWrite, 0, len(input.Counts))
	for _, c := range input.Counts {
		value, err := validateValue(c.Value)
		if err != nil {
			return nil, err
		}
		writes = append(writes, rtde.CountWrite{ItemID: c.ItemID, Value: value})
	}

	s, err := uc.loadWritable(ctx, input.SessionID, input.User)
	if err != nil {
		return nil, err
	}
	for _, w := range writes {
		if err := uc.ensureItem(ctx, s.ID, w.ItemID); err != nil {
			return nil, err
		}
	}

	now := uc.clock()
	s.UpdatedAt = now
	if err := uc.repo.WriteCounts(ctx, s, writes, now); err != nil {
		return nil, fmt.Errorf("save rtde counts: %w", err)
	}
	return uc.view(ctx, s)
}

func (uc *rtdeUseCase) GetUncounted(ctx context.Context, id string, user auth.UserContext) ([]model.RTDEEntry, error) {
	s, err := uc.load(ctx, id, user)
	if err != nil {
		return nil, err
	}
	if err := uc.withEntries(ctx, s); err != nil {
		return nil, err
	}
	return phase.Uncounted(s.Entries, counted), nil
}

func uncountedError(entries []model.RTDEEntry) *apperror.Error {
	names := make([]string, 0, len(entries))
	items := make([]dto.UncountedItem, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.ItemName)
		items = append(items, dto.UncountedItem{ItemID: e.ItemID, ItemCode: e.ItemCode, ItemName: e.ItemName})
	}
	list := strings.Join(names, ", ")
	return apperror.InvalidTransition("error.transition.uncounted",
		fmt.Sprintf("uncounted items: %s. Go back to finish counting or continue with zero assigned", list),
		map[string]any{"Items": list}).WithDetails(items)
}

// RequestPullList leaves the counting phase. Uncounted items block it unless
// the caller asks for them to be counted as zero.
func (uc *rtdeUseCase) RequestPullList(ctx context.Context, input *dto.PullListInput) (*dto.PullListView, error) {
	s, err := uc.loadWritable(ctx, input.SessionID, input.User)
	if err != nil {
		return nil, err
	}
	if s.Status == model.RTDEPhasePulling {
		return uc.pullListView(ctx, s)
	}
	if err := phase.RTDE.CheckAdvance(s.Status, model.RTDEPhasePulling); err != nil {
		return nil, err
	}
	if err := uc.withEntries(ctx, s); err != nil {
		return nil, err
	}

	uncounted := phase.Uncounted(s.Entries, counted)
	if len(uncounted) > 0 && !input.AssignDefaults {
		return nil, uncountedError(uncounted)
	}

	now := uc.clock()
	s.StampSaved(model.RTDEPhaseCounting, now)
	s.Status = model.RTDEPhasePulling
	s.UpdatedAt = now

	assigned, err := uc.repo.AssignDefaults(ctx, s, now)
	if err != nil {
		return nil, fmt.Errorf("advance rtde session: %w", err)
	}
	uc.logger.Info("rtde pull list requested",
		zap.String("session_id", s.ID), zap.Int64("assigned_zero", assigned))

	return uc.pullListView(ctx, s)
}

func (uc *rtdeUseCase) pullListView(ctx context.Context, s *model.RTDESession) (*dto.PullListView, error) {
	if err := uc.withEntries(ctx, s); err != nil {
		return nil, err
	}
	items := calc.PullList(s.Entries)
	return &dto.PullListView{
		SessionID:       s.ID,
		Status:          s.Status,
		Items:           items,
		ProgressPercent: pullProgress(items),
	}, nil
}

func (uc *rtdeUseCase) GetPullList(ctx context.Context, id string, user auth.UserContext) (*dto.PullListView, error) {
	s, err := uc.load(ctx, id, user)
	if err != nil {
		return nil, err
	}
	if err := requirePhase(s, model.RTDEPhasePulling); err != nil {
		return nil, err
	}
	return uc.pullListView(ctx, s)
}

// MarkPulled is idempotent; marking an item twice leaves it pulled.
func (uc *rtdeUseCase) MarkPulled(ctx context.Context, input *dto.MarkPulledInput) (*model.PullItem, error) {
	s, err := uc.loadWritable(ctx, input.SessionID, input.User)
	if err != nil {
		return nil, err
	}
	if err := requirePhase(s, model.RTDEPhasePulling); err != nil {
		return nil, err
	}
	entry, err := uc.repo.GetEntry(ctx, s.ID, input.ItemID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apperror.NotFound("error.not_found.entry",
			fmt.Sprintf("item %s is not part of this session", input.ItemID), map[string]any{"ItemID": input.ItemID})
	}

	if entry.Pulled != input.Pulled {
		now := uc.clock()
		if err := uc.repo.SetPulled(ctx, s.ID, input.ItemID, input.Pulled, now); err != nil {
			return nil, err
		}
		entry.Pulled = input.Pulled
		entry.UpdatedAt = now
	}

	return &model.PullItem{
		ItemID:       entry.ItemID,
		ItemCode:     entry.ItemCode,
		ItemName:     entry.ItemName,
		NeedQuantity: calc.Need(entry.Par, entry.Counted),
		Pulled:       entry.Pulled,
	}, nil
}

// CompleteSession finishes the restock and deletes the session. Items left
// unpulled do not block completion.
func (uc *rtdeUseCase) CompleteSession(ctx context.Context, id string, user auth.UserContext) (*dto.CompletionView, error) {
	s, err := uc.loadWritable(ctx, id, user)
	if err != nil {
		return nil, err
	}
	if err := phase.RTDE.CheckComplete(s.Status); err != nil {
		return nil, err
	}
	if err := uc.withEntries(ctx, s); err != nil {
		return nil, err
	}

	now := uc.clock()
	s.StampSaved(model.RTDEPhasePulling, now)
	s.StampSaved(model.RTDEPhaseCompleted, now)
	s.Status = model.RTDEPhaseCompleted
	s.UpdatedAt = now
	if err := uc.repo.UpdateSession(ctx, s); err != nil {
		return nil, fmt.Errorf("complete rtde session: %w", err)
	}

	items := calc.PullList(s.Entries)
	pulled := 0
	for _, it := range items {
		if it.Pulled {
			pulled++
		}
	}
	uc.publish(ctx, model.EventSessionCompleted, s, items)

	if err := uc.repo.DeleteSession(ctx, s.ID); err != nil {
		return nil, fmt.Errorf("delete completed rtde session: %w", err)
	}
	uc.logger.Info("rtde session completed",
		zap.String("session_id", s.ID), zap.Int("pulled", pulled), zap.Int("pull_items", len(items)))

	return &dto.CompletionView{
		SessionID:   s.ID,
		Status:      s.Status,
		CompletedAt: now,
		Pulled:      pulled,
		PullItems:   len(items),
	}, nil
}

func (uc *rtdeUseCase) publish(ctx context.Context, eventType string, s *model.RTDESession, payload any) {
	event := model.SessionEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Tool:      model.ToolRTDE,
		SessionID: s.ID,
		ScopeID:   s.ScopeID,
		UserID:    s.UserID,
		Payload:   payload,
		Timestamp: uc.clock(),
	}
	if err := uc.publisher.Publish(ctx, s.ID, event); err != nil {
		uc.logger.Error("failed to publish session event",
			zap.String("event_type", eventType), zap.String("session_id", s.ID), zap.Error(err))
	}
}
