package usecase

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/fekuna/omnipos-storeops-service/internal/apperror"
	"github.com/fekuna/omnipos-storeops-service/internal/auth"
	"github.com/fekuna/omnipos-storeops-service/internal/catalog"
	"github.com/fekuna/omnipos-storeops-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-storeops-service/internal/catalog/repository"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
	"github.com/fekuna/omnipos-storeops-service/internal/testutil"
	"github.com/fekuna/omnipos-storeops-service/pkg/cache"
	"github.com/fekuna/omnipos-storeops-service/pkg/logger"
	"github.com/fekuna/omnipos-storeops-service/pkg/search"
)

var (
	admin = auth.UserContext{UserID: "admin-1", Role: auth.RoleAdmin, StoreID: "store-1"}
	staff = auth.UserContext{UserID: "staff-1", Role: auth.RoleStaff, StoreID: "store-1"}
)

func newUseCase(t *testing.T, es Indexer) (catalog.UseCase, *cache.MemoryCache) {
	t.Helper()
	db := testutil.NewDB(t)
	mem := cache.NewMemoryCache()
	return NewCatalogUseCase(repository.NewPGRepository(db), mem, es, logger.NewNop()), mem
}

func TestCreateItem_GeneratesCode(t *testing.T) {
	uc, _ := newUseCase(t, nil)
	ctx := context.Background()

	item, err := uc.CreateItem(ctx, &dto.CreateItemInput{Actor: admin, Kind: model.ItemKindMilk, Name: "Whole Milk", Par: 20})
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	if !regexp.MustCompile(`^MLK-[0-9A-F]{6}$`).MatchString(item.Code) {
		t.Errorf("Unexpected generated code %q", item.Code)
	}
	if !item.IsActive || item.Par != 20 {
		t.Errorf("Unexpected item %+v", item)
	}

	got, err := uc.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if got.Code != item.Code || got.Name != "Whole Milk" {
		t.Errorf("Expected stored item to match, got %+v", got)
	}
}

func TestCreateItem_Validation(t *testing.T) {
	uc, _ := newUseCase(t, nil)
	ctx := context.Background()

	_, err := uc.CreateItem(ctx, &dto.CreateItemInput{Actor: staff, Kind: model.ItemKindMilk, Name: "Oat", Par: 5})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Expected Forbidden for staff, got %v", err)
	}
	_, err = uc.CreateItem(ctx, &dto.CreateItemInput{Actor: admin, Kind: "bread", Name: "Oat", Par: 5})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Expected Validation for bad kind, got %v", err)
	}
	_, err = uc.CreateItem(ctx, &dto.CreateItemInput{Actor: admin, Kind: model.ItemKindMilk, Name: "Oat", Par: 1000})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Expected Validation for par 1000, got %v", err)
	}
	_, err = uc.CreateItem(ctx, &dto.CreateItemInput{Actor: admin, Kind: model.ItemKindMilk, Name: "  ", Par: 1})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Expected Validation for blank name, got %v", err)
	}
}

func TestSetPar_InvalidatesActiveCache(t *testing.T) {
	uc, _ := newUseCase(t, nil)
	ctx := context.Background()

	item, err := uc.CreateItem(ctx, &dto.CreateItemInput{Actor: admin, Kind: model.ItemKindRTDE, Name: "Cold Brew", Par: 10})
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	active, err := uc.ListActive(ctx, model.ItemKindRTDE)
	if err != nil || len(active) != 1 || active[0].Par != 10 {
		t.Fatalf("Unexpected active list %+v (err=%v)", active, err)
	}

	if _, err := uc.SetPar(ctx, &dto.SetParInput{Actor: staff, ID: item.ID, Par: 3}); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Expected Forbidden for staff par change, got %v", err)
	}
	if _, err := uc.SetPar(ctx, &dto.SetParInput{Actor: admin, ID: item.ID, Par: 12}); err != nil {
		t.Fatalf("SetPar failed: %v", err)
	}

	active, _ = uc.ListActive(ctx, model.ItemKindRTDE)
	if active[0].Par != 12 {
		t.Errorf("Expected cache to be invalidated and par 12 returned, got %d", active[0].Par)
	}

	if _, err := uc.SetPar(ctx, &dto.SetParInput{Actor: admin, ID: "missing", Par: 1}); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Expected NotFound, got %v", err)
	}
}

func TestUpdateItem_DeactivateHidesFromActive(t *testing.T) {
	uc, _ := newUseCase(t, nil)
	ctx := context.Background()

	item, _ := uc.CreateItem(ctx, &dto.CreateItemInput{Actor: admin, Kind: model.ItemKindMilk, Name: "Skim", Par: 8})
	uc.CreateItem(ctx, &dto.CreateItemInput{Actor: admin, Kind: model.ItemKindMilk, Name: "Whole", Par: 20})

	if _, err := uc.UpdateItem(ctx, &dto.UpdateItemInput{Actor: admin, ID: item.ID, Name: "Skim", IsActive: false}); err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}

	active, _ := uc.ListActive(ctx, model.ItemKindMilk)
	if len(active) != 1 || active[0].Name != "Whole" {
		t.Errorf("Expected only Whole to stay active, got %+v", active)
	}

	all, count, err := uc.ListItems(ctx, &dto.CatalogFilters{Kind: model.ItemKindMilk})
	if err != nil || count != 2 || len(all) != 2 {
		t.Errorf("Expected 2 milk items in full list, got %d/%d (err=%v)", len(all), count, err)
	}
}

func TestListItems_SearchFallsBackToDB(t *testing.T) {
	es := &failingIndexer{}
	uc, _ := newUseCase(t, es)
	ctx := context.Background()

	uc.CreateItem(ctx, &dto.CreateItemInput{Actor: admin, Kind: model.ItemKindRTDE, Name: "Cold Brew", Par: 10})
	uc.CreateItem(ctx, &dto.CreateItemInput{Actor: admin, Kind: model.ItemKindRTDE, Name: "Lemonade", Par: 6})

	items, count, err := uc.ListItems(ctx, &dto.CatalogFilters{SearchQuery: "brew"})
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if count != 1 || len(items) != 1 || items[0].Name != "Cold Brew" {
		t.Errorf("Expected DB fallback to find Cold Brew, got %+v", items)
	}
	if es.searches == 0 {
		t.Errorf("Expected search backend to be tried first")
	}
}

func TestSyncItem_Upserts(t *testing.T) {
	uc, _ := newUseCase(t, nil)
	ctx := context.Background()

	in := &dto.SyncItemInput{ID: "up-1", Kind: model.ItemKindMilk, Name: "2% Milk", IsActive: true, Par: 14}
	if err := uc.SyncItem(ctx, in); err != nil {
		t.Fatalf("SyncItem failed: %v", err)
	}
	first, _ := uc.GetItem(ctx, "up-1")

	in.Par = 16
	if err := uc.SyncItem(ctx, in); err != nil {
		t.Fatalf("second SyncItem failed: %v", err)
	}
	second, _ := uc.GetItem(ctx, "up-1")
	if second.Par != 16 {
		t.Errorf("Expected par 16 after resync, got %d", second.Par)
	}
	if second.Code != first.Code {
		t.Errorf("Expected generated code to be kept across syncs, got %s then %s", first.Code, second.Code)
	}

	if err := uc.SyncItem(ctx, &dto.SyncItemInput{Kind: model.ItemKindMilk}); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Expected Validation for missing id, got %v", err)
	}
}

type failingIndexer struct {
	searches int
}

func (f *failingIndexer) CreateIndex(context.Context, string, string) error { return nil }
func (f *failingIndexer) Index(context.Context, string, string, any) error  { return nil }
func (f *failingIndexer) Search(context.Context, string, map[string]interface{}) (*search.SearchResponse, error) {
	f.searches++
	return nil, errors.New("cluster unavailable")
}
