package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-storeops-service/internal/apperror"
	"github.com/fekuna/omnipos-storeops-service/internal/auth"
	"github.com/fekuna/omnipos-storeops-service/internal/calc"
	"github.com/fekuna/omnipos-storeops-service/internal/catalog"
	"github.com/fekuna/omnipos-storeops-service/internal/milkorder"
	"github.com/fekuna/omnipos-storeops-service/internal/milkorder/dto"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
	"github.com/fekuna/omnipos-storeops-service/internal/phase"
	"github.com/fekuna/omnipos-storeops-service/pkg/broker"
	"github.com/fekuna/omnipos-storeops-service/pkg/cache"
	"github.com/fekuna/omnipos-storeops-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type milkOrderUseCase struct {
	repo      milkorder.Repository
	items     catalog.ItemSource
	locker    cache.Locker
	publisher broker.Publisher
	logger    logger.ZapLogger
	location  *time.Location
	now       func() time.Time
}

type Option func(*milkOrderUseCase)

func WithClock(now func() time.Time) Option {
	return func(uc *milkOrderUseCase) { uc.now = now }
}

// WithLocation sets the store timezone used to resolve "today".
func WithLocation(loc *time.Location) Option {
	return func(uc *milkOrderUseCase) {
		if loc != nil {
			uc.location = loc
		}
	}
}

func NewMilkOrderUseCase(
	repo milkorder.Repository,
	items catalog.ItemSource,
	locker cache.Locker,
	publisher broker.Publisher,
	log logger.ZapLogger,
	opts ...Option,
) milkorder.UseCase {
	uc := &milkOrderUseCase{
		repo:      repo,
		items:     items,
		locker:    locker,
		publisher: publisher,
		logger:    log,
		location:  time.UTC,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *milkOrderUseCase) clock() time.Time {
	return uc.now().UTC().Truncate(time.Microsecond)
}

func (uc *milkOrderUseCase) resolveDate(date string) (string, error) {
	if date == "" {
		return uc.now().In(uc.location).Format(dateLayout), nil
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", apperror.Validation("error.validation.date", "date must use the YYYY-MM-DD format", nil)
	}
	return date, nil
}

// canAccess lets every member of the session's store work on it. A session
// without a store belongs to the user who started it.
func canAccess(s *model.MilkOrderSession, user auth.UserContext) bool {
	return s.ScopeID == user.Scope() || user.IsAdmin()
}

// load returns the session for reading. Sessions the requester may not see
// are reported as missing.
func (uc *milkOrderUseCase) load(ctx context.Context, id string, user auth.UserContext) (*model.MilkOrderSession, error) {
	s, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil || !canAccess(s, user) {
		return nil, apperror.SessionNotFound()
	}
	return s, nil
}

// loadWritable returns the session for a mutation by user.
func (uc *milkOrderUseCase) loadWritable(ctx context.Context, id string, user auth.UserContext) (*model.MilkOrderSession, error) {
	s, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, apperror.SessionNotFound()
	}
	if !canAccess(s, user) {
		return nil, apperror.SessionForbidden()
	}
	if err := phase.Milk.CheckWritable(s.Status); err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *milkOrderUseCase) view(ctx context.Context, s *model.MilkOrderSession) (*dto.SessionView, error) {
	entries, err := uc.repo.ListEntries(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Entries = entries
	return &dto.SessionView{MilkOrderSession: s, ProgressPercent: progress(s)}, nil
}

func progress(s *model.MilkOrderSession) int {
	if s.IsCompleted() {
		return 100
	}
	done := 0
	for i := range s.Entries {
		if s.Entries[i].Primary(s.Status).IsSet() {
			done++
		}
	}
	return calc.ProgressPercent(done, len(s.Entries))
}

func (uc *milkOrderUseCase) GetActiveSession(ctx context.Context, user auth.UserContext, date string) (*dto.SessionView, error) {
	date, err := uc.resolveDate(date)
	if err != nil {
		return nil, err
	}
	s, err := uc.repo.FindByScopeDate(ctx, user.Scope(), date)
	if err != nil {
		return nil, err
	}
	if s == nil || !canAccess(s, user) {
		return nil, nil
	}
	return uc.view(ctx, s)
}

func (uc *milkOrderUseCase) StartSession(ctx context.Context, input *dto.StartSessionInput) (*dto.SessionView, error) {
	mode := input.Mode
	if mode == "" {
		mode = dto.StartModeResume
	}
	if mode != dto.StartModeNew && mode != dto.StartModeResume {
		return nil, apperror.Validation("error.validation.mode", `mode must be "new" or "resume"`, nil)
	}
	date, err := uc.resolveDate(input.Date)
	if err != nil {
		return nil, err
	}

	scope := input.User.Scope()
	lockKey := fmt.Sprintf("lock:milk:%s:%s", scope, date)

	var session *model.MilkOrderSession
	err = cache.WithLock(ctx, uc.locker, lockKey, cache.DefaultLockOptions, func() error {
		existing, err := uc.repo.FindByScopeDate(ctx, scope, date)
		if err != nil {
			return err
		}
		if existing != nil {
			if mode == dto.StartModeNew {
				return apperror.InvalidTransition("error.transition.exists",
					fmt.Sprintf("a milk order session already exists for %s", date),
					map[string]any{"Date": date})
			}
			if !canAccess(existing, input.User) {
				return apperror.SessionForbidden()
			}
			session = existing
			return nil
		}

		items, err := uc.items.ListActive(ctx, model.ItemKindMilk)
		if err != nil {
			return fmt.Errorf("list milk items: %w", err)
		}

		now := uc.clock()
		session = &model.MilkOrderSession{
			ID:          uuid.New().String(),
			ScopeID:     scope,
			UserID:      input.User.UserID,
			SessionDate: date,
			Status:      phase.Milk.First(),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := uc.repo.CreateSession(ctx, session, items); err != nil {
			return fmt.Errorf("create milk order session: %w", err)
		}

		uc.logger.Info("milk order session started",
			zap.String("session_id", session.ID), zap.String("scope_id", scope),
			zap.String("date", date), zap.Int("items", len(items)))
		uc.publish(ctx, model.EventSessionStarted, session, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.view(ctx, session)
}

func (uc *milkOrderUseCase) GetSession(ctx context.Context, id string, user auth.UserContext) (*dto.SessionView, error) {
	s, err := uc.load(ctx, id, user)
	if err != nil {
		return nil, err
	}
	return uc.view(ctx, s)
}

// validateValue rejects a missing value as well as one out of range; a
// missing value must never be stored as zero.
func validateValue(field model.MilkField, value *int) (model.Count, error) {
	if value == nil || !model.ValidCount(*value) {
		return model.Count{}, apperror.Validation("error.validation.count_range",
			fmt.Sprintf("%s must be a whole number between 0 and %d", field, model.MaxCount),
			map[string]any{"Field": string(field), "Max": model.MaxCount})
	}
	return model.NewCount(*value), nil
}

func unknownField(field model.MilkField) error {
	return apperror.Validation("error.validation.field",
		fmt.Sprintf("unknown count field %s", field), map[string]any{"Field": string(field)})
}

func (uc *milkOrderUseCase) ensureItem(ctx context.Context, sessionID, itemID string) error {
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

func (uc *milkOrderUseCase) WriteCount(ctx context.Context, input *dto.WriteCountInput) (*model.MilkOrderEntry, error) {
	fieldPhase, ok := input.Field.Phase()
	if !ok {
		return nil, unknownField(input.Field)
	}
	value, err := validateValue(input.Field, input.Value)
	if err != nil {
		return nil, err
	}

	s, err := uc.loadWritable(ctx, input.SessionID, input.User)
	if err != nil {
		return nil, err
	}
	if !phase.Milk.Reached(s.Status, fieldPhase) {
		return nil, apperror.InvalidTransition("error.transition.field_phase",
			fmt.Sprintf("%s cannot be written before the %s phase", input.Field, fieldPhase),
			map[string]any{"Field": string(input.Field), "Phase": string(fieldPhase)})
	}
	if err := uc.ensureItem(ctx, s.ID, input.ItemID); err != nil {
		return nil, err
	}

	now := uc.clock()
	s.UpdatedAt = now
	write := milkorder.FieldWrite{ItemID: input.ItemID, Field: input.Field, Value: value}
	if err := uc.repo.WriteFields(ctx, s, []milkorder.FieldWrite{write}, now); err != nil {
		return nil, fmt.Errorf("write milk count: %w", err)
	}

	return uc.repo.GetEntry(ctx, s.ID, input.ItemID)
}

// primaryField is the field a count without an explicit field is written to.
func primaryField(p model.MilkPhase) model.MilkField {
	switch p {
	case model.MilkPhaseNightFOH:
		return model.MilkFieldFOH
	case model.MilkPhaseNightBOH:
		return model.MilkFieldBOH
	case model.MilkPhaseMorning:
		return model.MilkFieldCurrentBOH
	}
	return model.MilkFieldOnOrder
}

func (uc *milkOrderUseCase) SavePhase(ctx context.Context, input *dto.SavePhaseInput) (*dto.SessionView, error) {
	if !phase.Milk.Valid(input.Phase) || input.Phase == phase.Milk.Terminal() {
		return nil, apperror.Validation("error.validation.phase",
			fmt.Sprintf("unknown phase %s", input.Phase), map[string]any{"Phase": string(input.Phase)})
	}

	writes := make([]milkorder.FieldWrite, 0, len(input.Counts))
	for _, c := range input.Counts {
		field := c.Field
		if field == "" {
			field = primaryField(input.Phase)
		}
		fp, ok := field.Phase()
		if !ok || fp != input.Phase {
			return nil, unknownField(field)
		}
		value, err := validateValue(field, c.Value)
		if err != nil {
			return nil, err
		}
		writes = append(writes, milkorder.FieldWrite{ItemID: c.ItemID, Field: field, Value: value})
	}

	s, err := uc.loadWritable(ctx, input.SessionID, input.User)
	if err != nil {
		return nil, err
	}
	if !phase.Milk.Reached(s.Status, input.Phase) {
		return nil, apperror.InvalidTransition("error.transition.phase_mismatch",
			fmt.Sprintf("session is in phase %s, not %s", s.Status, input.Phase),
			map[string]any{"Current": string(s.Status), "Phase": string(input.Phase)})
	}
	for _, w := range writes {
		if err := uc.ensureItem(ctx, s.ID, w.ItemID); err != nil {
			return nil, err
		}
	}

	now := uc.clock()
	s.UpdatedAt = now
	advanced := false
	if s.Status == input.Phase {
		next, _ := phase.Milk.Next(s.Status)
		s.StampSaved(s.Status, now)
		if next == phase.Milk.Terminal() {
			s.StampSaved(next, now)
		}
		s.Status = next
		advanced = true
	}

	if err := uc.repo.WriteFields(ctx, s, writes, now); err != nil {
		return nil, fmt.Errorf("save %s counts: %w", input.Phase, err)
	}

	if advanced {
		uc.logger.Info("milk order phase saved",
			zap.String("session_id", s.ID), zap.String("phase", string(input.Phase)),
			zap.String("status", string(s.Status)), zap.Int("counts", len(writes)))
	}
	return uc.afterTransition(ctx, s)
}

func (uc *milkOrderUseCase) AdvancePhase(ctx context.Context, input *dto.AdvancePhaseInput) (*dto.SessionView, error) {
	if !phase.Milk.Valid(input.Target) {
		return nil, apperror.Validation("error.validation.phase",
			fmt.Sprintf("unknown phase %s", input.Target), map[string]any{"Phase": string(input.Target)})
	}

	s, err := uc.loadWritable(ctx, input.SessionID, input.User)
	if err != nil {
		return nil, err
	}
	if err := phase.Milk.CheckAdvance(s.Status, input.Target); err != nil {
		return nil, err
	}

	now := uc.clock()
	s.StampSaved(s.Status, now)
	if input.Target == phase.Milk.Terminal() {
		s.StampSaved(input.Target, now)
	}
	s.Status = input.Target
	s.UpdatedAt = now

	if err := uc.repo.UpdateSession(ctx, s); err != nil {
		return nil, fmt.Errorf("advance milk order session: %w", err)
	}
	return uc.afterTransition(ctx, s)
}

// afterTransition loads the entries and announces a completed session.
func (uc *milkOrderUseCase) afterTransition(ctx context.Context, s *model.MilkOrderSession) (*dto.SessionView, error) {
	v, err := uc.view(ctx, s)
	if err != nil {
		return nil, err
	}
	if s.IsCompleted() {
		uc.logger.Info("milk order session completed", zap.String("session_id", s.ID), zap.String("date", s.SessionDate))
		uc.publish(ctx, model.EventSessionCompleted, s, calc.MilkSummary(s))
	}
	return v, nil
}

func (uc *milkOrderUseCase) GetSummary(ctx context.Context, id string, user auth.UserContext) (*model.MilkSummary, error) {
	s, err := uc.load(ctx, id, user)
	if err != nil {
		return nil, err
	}
	if !s.IsCompleted() {
		return nil, apperror.InvalidTransition("error.transition.not_completed",
			"summary is available once the session is completed", nil)
	}
	entries, err := uc.repo.ListEntries(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Entries = entries
	return calc.MilkSummary(s), nil
}

func (uc *milkOrderUseCase) ListHistory(ctx context.Context, user auth.UserContext, page, pageSize int) ([]model.MilkOrderSession, int, error) {
	return uc.repo.ListCompleted(ctx, user.Scope(), page, pageSize)
}

func (uc *milkOrderUseCase) publish(ctx context.Context, eventType string, s *model.MilkOrderSession, payload any) {
	event := model.SessionEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Tool:      model.ToolMilkOrder,
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
