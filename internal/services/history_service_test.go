package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nutrisync/nutrisync-bot/internal/domain"
	"github.com/stretchr/testify/require"
)

// fakePersistence records calls and can be told to fail. Shared by the
// service tests in this package.
type fakePersistence struct {
	mu           sync.Mutex
	histories    map[string][]domain.AnalysisResult
	profiles     map[int64]domain.UserProfile
	saveHistory  int
	saveProfile  int
	clearHistory int
	failSave     bool
	failClear    bool
	failLoad     bool
}

func newFakePersistence() *fakePersistence {
	return &fakePersistence{
		histories: make(map[string][]domain.AnalysisResult),
		profiles:  make(map[int64]domain.UserProfile),
	}
}

func (f *fakePersistence) SaveHistory(ctx context.Context, ownerID string, history []domain.AnalysisResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveHistory++
	if f.failSave {
		return errors.New("storage down")
	}
	stored := make([]domain.AnalysisResult, len(history))
	copy(stored, history)
	f.histories[ownerID] = stored
	return nil
}

func (f *fakePersistence) LoadHistory(ctx context.Context, ownerID string) ([]domain.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLoad {
		return nil, errors.New("storage down")
	}
	return f.histories[ownerID], nil
}

func (f *fakePersistence) ClearHistory(ctx context.Context, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearHistory++
	if f.failClear {
		return errors.New("storage down")
	}
	delete(f.histories, ownerID)
	return nil
}

func (f *fakePersistence) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveProfile++
	if f.failSave {
		return errors.New("storage down")
	}
	f.profiles[profile.TelegramID] = *profile
	return nil
}

func resultWithID(id string) domain.AnalysisResult {
	return domain.AnalysisResult{
		ID:                 id,
		CreatedAt:          time.Now(),
		CompatibilityScore: 80,
		Biomarkers:         []domain.Biomarker{},
		FoodItems:          []domain.FoodItem{{Name: "Rice", Status: domain.FoodStatusSafe}},
		Summary:            "ok",
	}
}

func TestHistoryAppend_NewestFirst(t *testing.T) {
	svc := NewHistoryService(newFakePersistence(), 50)
	ctx := context.Background()

	svc.Append(ctx, "u1", resultWithID("first"))
	svc.Append(ctx, "u1", resultWithID("second"))

	log := svc.List(ctx, "u1")
	require.Len(t, log, 2)
	require.Equal(t, "second", log[0].ID)
	require.Equal(t, "first", log[1].ID)
}

func TestHistoryAppend_EnforcesCap(t *testing.T) {
	svc := NewHistoryService(newFakePersistence(), 50)
	ctx := context.Background()

	for i := 0; i < 51; i++ {
		svc.Append(ctx, "u1", resultWithID(fmt.Sprintf("r%d", i)))
	}

	log := svc.List(ctx, "u1")
	require.Len(t, log, 50)
	require.Equal(t, "r50", log[0].ID, "newest entry kept")
	require.Equal(t, "r1", log[49].ID, "oldest entry evicted")
}

func TestHistoryAppend_StampsOwnerAndPendingSync(t *testing.T) {
	svc := NewHistoryService(newFakePersistence(), 50)
	ctx := context.Background()

	r := resultWithID("a")
	r.OwnerID = "someone-else"
	r.Synced = true
	svc.Append(ctx, "u1", r)

	log := svc.List(ctx, "u1")
	require.Equal(t, "u1", log[0].OwnerID)
	require.False(t, log[0].Synced)
}

func TestHistoryList_Isolation(t *testing.T) {
	svc := NewHistoryService(newFakePersistence(), 50)
	ctx := context.Background()

	svc.Append(ctx, "u1", resultWithID("a"))
	svc.Append(ctx, "u2", resultWithID("b"))

	require.Len(t, svc.List(ctx, "u1"), 1)
	require.Len(t, svc.List(ctx, "u2"), 1)
	require.Equal(t, "a", svc.List(ctx, "u1")[0].ID)
}

func TestHistoryList_EmptyOwner(t *testing.T) {
	svc := NewHistoryService(newFakePersistence(), 50)
	log := svc.List(context.Background(), "nobody")
	require.NotNil(t, log)
	require.Empty(t, log)
}

func TestHistoryClear_ScopedToOwner(t *testing.T) {
	svc := NewHistoryService(newFakePersistence(), 50)
	ctx := context.Background()

	svc.Append(ctx, "u1", resultWithID("a"))
	svc.Append(ctx, "u2", resultWithID("b"))

	require.NoError(t, svc.Clear(ctx, "u1"))
	require.Empty(t, svc.List(ctx, "u1"))
	require.Len(t, svc.List(ctx, "u2"), 1)
}

func TestHistoryClear_MemoryClearedOnStorageFailure(t *testing.T) {
	store := newFakePersistence()
	store.failClear = true
	svc := NewHistoryService(store, 50)
	ctx := context.Background()

	svc.Append(ctx, "u1", resultWithID("a"))
	require.Error(t, svc.Clear(ctx, "u1"))
	require.Empty(t, svc.List(ctx, "u1"))
}

func TestHistoryGet(t *testing.T) {
	svc := NewHistoryService(newFakePersistence(), 50)
	ctx := context.Background()

	svc.Append(ctx, "u1", resultWithID("a"))

	require.NotNil(t, svc.Get(ctx, "u1", "a"))
	require.Nil(t, svc.Get(ctx, "u1", "missing"))
	require.Nil(t, svc.Get(ctx, "u2", "a"), "lookup must not cross owners")
}

func TestHistorySyncPending(t *testing.T) {
	store := newFakePersistence()
	svc := NewHistoryService(store, 50)
	ctx := context.Background()

	svc.Append(ctx, "u1", resultWithID("a"))
	require.NoError(t, svc.SyncPending(ctx, "u1"))
	require.Equal(t, 1, store.saveHistory)
	require.True(t, svc.List(ctx, "u1")[0].Synced)

	// Nothing pending now, no storage call.
	require.NoError(t, svc.SyncPending(ctx, "u1"))
	require.Equal(t, 1, store.saveHistory)
}

func TestHistoryLoad_HydratesAndTruncates(t *testing.T) {
	store := newFakePersistence()
	stored := make([]domain.AnalysisResult, 60)
	for i := range stored {
		stored[i] = resultWithID(fmt.Sprintf("r%d", i))
	}
	store.histories["u1"] = stored

	svc := NewHistoryService(store, 50)
	ctx := context.Background()

	require.NoError(t, svc.Load(ctx, "u1"))
	log := svc.List(ctx, "u1")
	require.Len(t, log, 50)
	require.True(t, log[0].Synced, "hydrated entries are already synced")
}

func TestHistoryLoad_StorageFailure(t *testing.T) {
	store := newFakePersistence()
	store.failLoad = true
	svc := NewHistoryService(store, 50)
	require.Error(t, svc.Load(context.Background(), "u1"))
}

func TestNewHistoryService_DefaultLimit(t *testing.T) {
	svc := NewHistoryService(newFakePersistence(), 0)
	require.Equal(t, 50, svc.Limit())
}
