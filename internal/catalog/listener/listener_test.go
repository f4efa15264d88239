package listener

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fekuna/omnipos-storeops-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
	"github.com/fekuna/omnipos-storeops-service/pkg/logger"
	"github.com/segmentio/kafka-go"
)

type queueReader struct {
	msgs   [][]byte
	cancel context.CancelFunc
}

func (q *queueReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(q.msgs) == 0 {
		q.cancel()
		return kafka.Message{}, errors.New("drained")
	}
	m := q.msgs[0]
	q.msgs = q.msgs[1:]
	return kafka.Message{Value: m}, nil
}

type recordingUseCase struct {
	synced []*dto.SyncItemInput
}

func (r *recordingUseCase) CreateItem(context.Context, *dto.CreateItemInput) (*model.CatalogItem, error) {
	return nil, nil
}
func (r *recordingUseCase) UpdateItem(context.Context, *dto.UpdateItemInput) (*model.CatalogItem, error) {
	return nil, nil
}
func (r *recordingUseCase) SetPar(context.Context, *dto.SetParInput) (*model.CatalogItem, error) {
	return nil, nil
}
func (r *recordingUseCase) GetItem(context.Context, string) (*model.CatalogItem, error) {
	return nil, nil
}
func (r *recordingUseCase) ListItems(context.Context, *dto.CatalogFilters) ([]model.CatalogItem, int, error) {
	return nil, 0, nil
}
func (r *recordingUseCase) ListActive(context.Context, model.ItemKind) ([]model.CatalogItem, error) {
	return nil, nil
}
func (r *recordingUseCase) SyncItem(_ context.Context, in *dto.SyncItemInput) error {
	r.synced = append(r.synced, in)
	return nil
}

func TestCatalogListener_AppliesUpserts(t *testing.T) {
	upsert, _ := json.Marshal(CatalogItemEvent{
		EventID:   "e1",
		EventType: model.EventCatalogUpserted,
		Payload:   CatalogItemPayload{ID: "i1", Kind: "rtde", Name: "Cold Brew", IsActive: true, Par: 10},
	})
	other, _ := json.Marshal(CatalogItemEvent{EventID: "e2", EventType: "CatalogItemDeleted"})

	ctx, cancel := context.WithCancel(context.Background())
	reader := &queueReader{msgs: [][]byte{upsert, []byte("not json"), other}, cancel: cancel}
	uc := &recordingUseCase{}

	NewCatalogListener(reader, uc, logger.NewNop()).Start(ctx)

	if len(uc.synced) != 1 {
		t.Fatalf("Expected 1 synced item, got %d", len(uc.synced))
	}
	got := uc.synced[0]
	if got.ID != "i1" || got.Kind != model.ItemKindRTDE || got.Par != 10 {
		t.Errorf("Unexpected sync input %+v", got)
	}
}
