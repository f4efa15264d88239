package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-storeops-service/internal/apperror"
	"github.com/fekuna/omnipos-storeops-service/internal/catalog"
	"github.com/fekuna/omnipos-storeops-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
	"github.com/fekuna/omnipos-storeops-service/pkg/cache"
	"github.com/fekuna/omnipos-storeops-service/pkg/logger"
	"github.com/fekuna/omnipos-storeops-service/pkg/search"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	indexName     = "catalog_items"
	cacheTTL      = 5 * time.Minute
	cachePattern  = "catalog:list:*"
	codeAttempts  = 5
	maxNameLength = 120
)

// Indexer is the search backend; *search.Client satisfies it.
type Indexer interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc any) error
	Search(ctx context.Context, index string, query map[string]interface{}) (*search.SearchResponse, error)
}

type catalogUseCase struct {
	repo   catalog.Repository
	cache  cache.Store
	es     Indexer
	logger logger.ZapLogger
	now    func() time.Time
}

// NewCatalogUseCase wires the catalog. es may be nil, in which case search
// falls back to the database.
func NewCatalogUseCase(repo catalog.Repository, cache cache.Store, es Indexer, log logger.ZapLogger) catalog.UseCase {
	return &catalogUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		logger: log,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func validatePar(par int) error {
	if !model.ValidCount(par) {
		return apperror.Validation("error.validation.count_range",
			fmt.Sprintf("par must be a whole number between 0 and %d", model.MaxCount),
			map[string]any{"Field": "par", "Max": model.MaxCount})
	}
	return nil
}

func validateName(name string) error {
	if name == "" || len(name) > maxNameLength {
		return apperror.Validation("error.validation.catalog_item", "name is required and must be at most 120 characters",
			map[string]any{"Reason": "name is required and must be at most 120 characters"})
	}
	return nil
}

func (uc *catalogUseCase) generateCode(ctx context.Context, kind model.ItemKind) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
		code := kind.CodePrefix() + "-" + suffix
		unique, err := uc.repo.IsCodeUnique(ctx, code, "")
		if err != nil {
			return "", err
		}
		if unique {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique %s code", kind)
}

func (uc *catalogUseCase) CreateItem(ctx context.Context, input *dto.CreateItemInput) (*model.CatalogItem, error) {
	if !input.Actor.IsAdmin() {
		return nil, apperror.AdminRequired()
	}
	if !input.Kind.Valid() {
		return nil, apperror.Validation("error.validation.catalog_item", "kind must be milk or rtde",
			map[string]any{"Reason": "kind must be milk or rtde"})
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := validateName(input.Name); err != nil {
		return nil, err
	}
	if err := validatePar(input.Par); err != nil {
		return nil, err
	}

	code, err := uc.generateCode(ctx, input.Kind)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	item := &model.CatalogItem{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Kind:      input.Kind,
		Code:      code,
		Name:      input.Name,
		IsActive:  true,
		SortOrder: input.SortOrder,
		Par:       input.Par,
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create catalog item: %w", err)
	}

	uc.logger.Info("catalog item created",
		zap.String("item_id", item.ID), zap.String("code", item.Code), zap.String("actor", input.Actor.UserID))
	uc.afterWrite(ctx, item)
	return item, nil
}

func (uc *catalogUseCase) UpdateItem(ctx context.Context, input *dto.UpdateItemInput) (*model.CatalogItem, error) {
	if !input.Actor.IsAdmin() {
		return nil, apperror.AdminRequired()
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := validateName(input.Name); err != nil {
		return nil, err
	}

	item, err := uc.mustFind(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	item.Name = input.Name
	item.SortOrder = input.SortOrder
	item.IsActive = input.IsActive
	item.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update catalog item: %w", err)
	}
	uc.afterWrite(ctx, item)
	return item, nil
}

func (uc *catalogUseCase) SetPar(ctx context.Context, input *dto.SetParInput) (*model.CatalogItem, error) {
	if !input.Actor.IsAdmin() {
		return nil, apperror.AdminRequired()
	}
	if err := validatePar(input.Par); err != nil {
		return nil, err
	}

	item, err := uc.mustFind(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	previous := item.Par
	item.Par = input.Par
	item.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("set par: %w", err)
	}

	uc.logger.Info("par level changed",
		zap.String("item_id", item.ID), zap.Int("from", previous), zap.Int("to", item.Par),
		zap.String("actor", input.Actor.UserID))
	uc.afterWrite(ctx, item)
	return item, nil
}

func (uc *catalogUseCase) GetItem(ctx context.Context, id string) (*model.CatalogItem, error) {
	return uc.mustFind(ctx, id)
}

func (uc *catalogUseCase) mustFind(ctx context.Context, id string) (*model.CatalogItem, error) {
	item, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NotFound("error.not_found.catalog_item", "catalog item not found", nil)
	}
	return item, nil
}

type cachedList struct {
	Items []model.CatalogItem
	Count int
}

func (uc *catalogUseCase) ListItems(ctx context.Context, filters *dto.CatalogFilters) ([]model.CatalogItem, int, error) {
	cacheKey, err := generateCacheKey(filters)
	if err == nil {
		if items, count, ok := uc.readCache(ctx, cacheKey); ok {
			return items, count, nil
		}
	}

	if filters.SearchQuery != "" && uc.es != nil {
		items, count, err := uc.searchIndex(ctx, filters)
		if err == nil {
			return items, count, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	items, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []model.CatalogItem{}
	}

	if cacheKey != "" {
		uc.writeCache(ctx, cacheKey, items, count)
	}
	return items, count, nil
}

func (uc *catalogUseCase) ListActive(ctx context.Context, kind model.ItemKind) ([]model.CatalogItem, error) {
	cacheKey := "catalog:list:active:" + string(kind)
	if items, _, ok := uc.readCache(ctx, cacheKey); ok {
		return items, nil
	}

	items, err := uc.repo.ListActive(ctx, kind)
	if err != nil {
		return nil, err
	}
	uc.writeCache(ctx, cacheKey, items, len(items))
	return items, nil
}

func (uc *catalogUseCase) SyncItem(ctx context.Context, input *dto.SyncItemInput) error {
	if input.ID == "" || !input.Kind.Valid() {
		return apperror.Validation("error.validation.catalog_item", "synced item needs an id and a valid kind",
			map[string]any{"Reason": "synced item needs an id and a valid kind"})
	}
	if err := validatePar(input.Par); err != nil {
		return err
	}

	code := input.Code
	if code == "" {
		existing, err := uc.repo.FindByID(ctx, input.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			code = existing.Code
		} else if code, err = uc.generateCode(ctx, input.Kind); err != nil {
			return err
		}
	}

	now := uc.now()
	item := &model.CatalogItem{
		BaseModel: model.BaseModel{ID: input.ID, CreatedAt: now, UpdatedAt: now},
		Kind:      input.Kind,
		Code:      code,
		Name:      input.Name,
		IsActive:  input.IsActive,
		SortOrder: input.SortOrder,
		Par:       input.Par,
	}
	if err := uc.repo.Upsert(ctx, item); err != nil {
		return fmt.Errorf("sync catalog item: %w", err)
	}
	uc.afterWrite(ctx, item)
	return nil
}

func (uc *catalogUseCase) afterWrite(ctx context.Context, item *model.CatalogItem) {
	if err := uc.cache.DeletePattern(ctx, cachePattern); err != nil {
		uc.logger.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
	if uc.es != nil {
		go uc.syncToElastic(context.WithoutCancel(ctx), *item)
	}
}

func (uc *catalogUseCase) syncToElastic(ctx context.Context, item model.CatalogItem) {
	mapping := `{
		"mappings": {
			"properties": {
				"kind": { "type": "keyword" },
				"code": { "type": "keyword" },
				"name": { "type": "text" },
				"is_active": { "type": "boolean" },
				"sort_order": { "type": "integer" },
				"par": { "type": "integer" },
				"created_at": { "type": "date" },
				"updated_at": { "type": "date" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, indexName, mapping)

	if err := uc.es.Index(ctx, indexName, item.ID, item); err != nil {
		uc.logger.Error("failed to index catalog item", zap.String("item_id", item.ID), zap.Error(err))
	}
}

func (uc *catalogUseCase) searchIndex(ctx context.Context, filters *dto.CatalogFilters) ([]model.CatalogItem, int, error) {
	must := []map[string]interface{}{
		{
			"query_string": map[string]interface{}{
				"query":  fmt.Sprintf("*%s*", filters.SearchQuery),
				"fields": []string{"name^3", "code"},
			},
		},
	}
	if filters.Kind != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"kind": filters.Kind}})
	}
	if filters.IsActive != nil {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"is_active": *filters.IsActive}})
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{"bool": map[string]interface{}{"must": must}},
	}
	if filters.PageSize > 0 {
		page := filters.Page
		if page < 1 {
			page = 1
		}
		q["from"] = (page - 1) * filters.PageSize
		q["size"] = filters.PageSize
	}

	res, err := uc.es.Search(ctx, indexName, q)
	if err != nil {
		return nil, 0, err
	}
	items := make([]model.CatalogItem, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var item model.CatalogItem
		if err := json.Unmarshal(hit.Source, &item); err == nil {
			items = append(items, item)
		}
	}
	return items, res.Hits.Total.Value, nil
}

func (uc *catalogUseCase) readCache(ctx context.Context, key string) ([]model.CatalogItem, int, bool) {
	val, ok, err := uc.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, 0, false
	}
	var result cachedList
	if err := json.Unmarshal(val, &result); err != nil {
		return nil, 0, false
	}
	return result.Items, result.Count, true
}

func (uc *catalogUseCase) writeCache(ctx context.Context, key string, items []model.CatalogItem, count int) {
	data, err := json.Marshal(cachedList{Items: items, Count: count})
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, key, data, cacheTTL); err != nil {
		uc.logger.Warn("failed to write catalog cache", zap.String("key", key), zap.Error(err))
	}
}

func generateCacheKey(filters *dto.CatalogFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("catalog:list:%x", md5.Sum(data)), nil
}
