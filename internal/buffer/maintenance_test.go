package buffer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bridgescan/interchain-indexer/internal/domain/model"
	"github.com/bridgescan/interchain-indexer/internal/store"
	storemocks "github.com/bridgescan/interchain-indexer/internal/store/mocks"
)

func alterStub(t *testing.T, buf *Buffer[*stubState], key model.MessageKey, chainID model.ChainID, block model.BlockNumber, mutate func(*stubState)) {
	t.Helper()
	err := buf.Alter(context.Background(), key, chainID, block, func(s *stubState) error {
		mutate(s)
		return nil
	})
	require.NoError(t, err)
}

func TestRunMaintenance_NotReadyEntryStaysHot(t *testing.T) {
	fs := newFakeStore()
	buf := newTestBuffer(fs)
	key := model.NewMessageKey(1, 1)

	alterStub(t, buf, key, 100, 50, func(s *stubState) { s.Counter = 1 })

	require.NoError(t, buf.RunMaintenance(context.Background()))

	_, ok := buf.Get(key)
	assert.True(t, ok, "not-ready entry must stay hot")
	assert.Empty(t, fs.records)
	assert.Empty(t, fs.pending)
	assert.Empty(t, fs.checkpoints, "hot blocks alone must not move checkpoints")
}

func TestRunMaintenance_FinalEntryFlushesAndEvicts(t *testing.T) {
	fs := newFakeStore()
	buf := newTestBuffer(fs)
	key := model.NewMessageKey(1, 1)

	// Simulate an earlier offload so finalization must clean it up.
	fs.pending[key] = []byte(`{}`)

	alterStub(t, buf, key, 100, 50, func(s *stubState) {
		s.Consolidatable = true
		s.Final = true
		s.TransferCount = 2
	})

	require.NoError(t, buf.RunMaintenance(context.Background()))

	record, ok := fs.records[key]
	require.True(t, ok)
	assert.True(t, record.IsFinal)
	assert.Len(t, record.Transfers, 2)

	_, ok = buf.Get(key)
	assert.False(t, ok, "finalized entry must leave the hot tier")
	assert.Empty(t, fs.pending, "finalized pending row must be deleted")

	pair := model.BridgeChain{BridgeID: 1, ChainID: 100}
	assert.Equal(t, model.Cursor{Backward: 50, Forward: 50}, fs.checkpoints[pair])
}

func TestRunMaintenance_FinalizationIsIdempotent(t *testing.T) {
	fs := newFakeStore()
	buf := newTestBuffer(fs)
	key := model.NewMessageKey(1, 1)

	alterStub(t, buf, key, 100, 50, func(s *stubState) {
		s.Consolidatable = true
		s.Final = true
	})

	require.NoError(t, buf.RunMaintenance(context.Background()))
	require.NoError(t, buf.RunMaintenance(context.Background()))

	// Re-ingesting the same finalized message upserts the same record again.
	alterStub(t, buf, key, 100, 50, func(s *stubState) {
		s.Consolidatable = true
		s.Final = true
	})
	require.NoError(t, buf.RunMaintenance(context.Background()))

	assert.Len(t, fs.records, 1)
	_, ok := buf.Get(key)
	assert.False(t, ok)
}

func TestRunMaintenance_PartialEntryFlushMarkedAndStaysHot(t *testing.T) {
	fs := newFakeStore()
	buf := newTestBuffer(fs)
	key := model.NewMessageKey(1, 1)

	alterStub(t, buf, key, 100, 50, func(s *stubState) { s.Consolidatable = true })

	require.NoError(t, buf.RunMaintenance(context.Background()))

	_, ok := fs.records[key]
	assert.True(t, ok, "partial record must be flushed")

	item, ok := buf.Get(key)
	require.True(t, ok, "partial entry must stay hot")
	assert.False(t, item.isDirty(), "flushed version must be recorded")

	// A clean entry must not be re-upserted on the next cycle.
	require.NoError(t, buf.RunMaintenance(context.Background()))
	assert.Len(t, fs.upsertBatches, 2)
	assert.Empty(t, fs.upsertBatches[1])
}

func TestRunMaintenance_StalePartialOffloadsAndEvicts(t *testing.T) {
	fs := newFakeStore()
	now := time.Now()
	buf := newTestBuffer(fs, WithClock[*stubState](func() time.Time { return now }))
	key := model.NewMessageKey(1, 1)

	alterStub(t, buf, key, 100, 50, func(s *stubState) { s.Consolidatable = true })

	now = now.Add(2 * time.Minute)
	require.NoError(t, buf.RunMaintenance(context.Background()))

	_, ok := fs.records[key]
	assert.True(t, ok, "stale partial must still flush")
	_, ok = fs.pending[key]
	assert.True(t, ok, "stale entry must be offloaded")
	_, ok = buf.Get(key)
	assert.False(t, ok, "stale entry must leave the hot tier")

	pair := model.BridgeChain{BridgeID: 1, ChainID: 100}
	assert.Equal(t, model.Cursor{Backward: 50, Forward: 50}, fs.checkpoints[pair])
}

func TestRunMaintenance_StaleNotReadyOffloadsAndRestores(t *testing.T) {
	fs := newFakeStore()
	now := time.Now()
	buf := newTestBuffer(fs, WithClock[*stubState](func() time.Time { return now }))
	key := model.NewMessageKey(1, 1)

	alterStub(t, buf, key, 100, 50, func(s *stubState) { s.Counter = 7 })

	now = now.Add(2 * time.Minute)
	require.NoError(t, buf.RunMaintenance(context.Background()))

	_, ok := buf.Get(key)
	require.False(t, ok)
	require.Contains(t, fs.pending, key)
	assert.Empty(t, fs.records)

	// A later observation re-admits the offloaded state.
	alterStub(t, buf, key, 100, 51, func(s *stubState) { s.Counter++ })

	item, ok := buf.Get(key)
	require.True(t, ok)
	assert.Equal(t, uint64(8), item.Inner.Counter)
}

func TestRunMaintenance_ConcurrentMutationSkipsEviction(t *testing.T) {
	fs := newFakeStore()
	now := time.Now()
	buf := newTestBuffer(fs, WithClock[*stubState](func() time.Time { return now }))
	key := model.NewMessageKey(1, 1)

	alterStub(t, buf, key, 100, 50, func(s *stubState) { s.Counter = 1 })

	// Mutate the entry while the commit is in flight: the planned eviction
	// must be skipped so the new observation is not lost.
	now = now.Add(2 * time.Minute)
	fs.onTx = func() {
		alterStub(t, buf, key, 100, 51, func(s *stubState) { s.Counter++ })
	}

	require.NoError(t, buf.RunMaintenance(context.Background()))

	item, ok := buf.Get(key)
	require.True(t, ok, "entry mutated during commit must stay hot")
	assert.Equal(t, uint64(2), item.Inner.Counter)
	assert.Equal(t, uint64(2), item.Version)
}

func TestRunMaintenance_ConcurrentMutationSkipsFlushMark(t *testing.T) {
	fs := newFakeStore()
	buf := newTestBuffer(fs)
	key := model.NewMessageKey(1, 1)

	alterStub(t, buf, key, 100, 50, func(s *stubState) { s.Consolidatable = true })

	fs.onTx = func() {
		alterStub(t, buf, key, 100, 51, func(s *stubState) { s.Counter++ })
	}

	require.NoError(t, buf.RunMaintenance(context.Background()))

	item, ok := buf.Get(key)
	require.True(t, ok)
	assert.True(t, item.isDirty(), "entry mutated during commit must flush again next cycle")
}

func TestRunMaintenance_ConsolidationErrorAborts(t *testing.T) {
	fs := newFakeStore()
	buf := newTestBuffer(fs)
	key := model.NewMessageKey(1, 1)

	alterStub(t, buf, key, 100, 50, func(s *stubState) { s.FailConsolidate = true })

	err := buf.RunMaintenance(context.Background())
	require.Error(t, err)
	assert.Empty(t, fs.records)

	_, ok := buf.Get(key)
	assert.True(t, ok, "nothing may be evicted when planning fails")
}

func TestRunMaintenance_TxFailureKeepsHotTierIntact(t *testing.T) {
	ctrl := gomock.NewController(t)
	maint := storemocks.NewMockMaintenanceStore(ctrl)
	maint.EXPECT().
		WithinMaintenanceTx(gomock.Any(), gomock.Any()).
		Return(errors.New("connection reset"))

	buf := New(testConfig(), newFakeStore(), maint, func() *stubState { return &stubState{} }, testLogger())
	key := model.NewMessageKey(1, 1)

	alterStub(t, buf, key, 100, 50, func(s *stubState) { s.Consolidatable = true })

	err := buf.RunMaintenance(context.Background())
	require.ErrorContains(t, err, "maintenance transaction")

	item, ok := buf.Get(key)
	require.True(t, ok)
	assert.True(t, item.isDirty(), "failed cycle must not mark anything flushed")
}

func TestRunMaintenance_PhaseErrorsAreWrapped(t *testing.T) {
	tests := []struct {
		name    string
		arrange func(tx *storemocks.MockMaintenanceTx, cause error)
		wantMsg string
	}{
		{
			name: "offload failure",
			arrange: func(tx *storemocks.MockMaintenanceTx, cause error) {
				tx.EXPECT().OffloadPending(gomock.Any(), gomock.Any()).Return(cause)
			},
			wantMsg: "offload stale entries",
		},
		{
			name: "flush failure",
			arrange: func(tx *storemocks.MockMaintenanceTx, cause error) {
				tx.EXPECT().OffloadPending(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().UpsertConsolidated(gomock.Any(), gomock.Any()).Return(cause)
			},
			wantMsg: "flush consolidated records",
		},
		{
			name: "delete failure",
			arrange: func(tx *storemocks.MockMaintenanceTx, cause error) {
				tx.EXPECT().OffloadPending(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().UpsertConsolidated(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().DeletePending(gomock.Any(), gomock.Any()).Return(cause)
			},
			wantMsg: "delete finalized pending rows",
		},
		{
			name: "fetch failure",
			arrange: func(tx *storemocks.MockMaintenanceTx, cause error) {
				tx.EXPECT().OffloadPending(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().UpsertConsolidated(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().DeletePending(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().FetchCheckpoints(gomock.Any(), gomock.Any()).Return(nil, cause)
			},
			wantMsg: "fetch checkpoints",
		},
		{
			name: "upsert failure",
			arrange: func(tx *storemocks.MockMaintenanceTx, cause error) {
				tx.EXPECT().OffloadPending(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().UpsertConsolidated(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().DeletePending(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().FetchCheckpoints(gomock.Any(), gomock.Any()).Return(nil, nil)
				tx.EXPECT().UpsertCheckpoints(gomock.Any(), gomock.Any()).Return(cause)
			},
			wantMsg: "upsert checkpoints",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			cause := errors.New("boom")

			tx := storemocks.NewMockMaintenanceTx(ctrl)
			tt.arrange(tx, cause)

			maint := storemocks.NewMockMaintenanceStore(ctrl)
			maint.EXPECT().
				WithinMaintenanceTx(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, fn func(store.MaintenanceTx) error) error {
					return fn(tx)
				})

			buf := New(testConfig(), newFakeStore(), maint, func() *stubState { return &stubState{} }, testLogger())
			alterStub(t, buf, model.NewMessageKey(1, 1), 100, 50, func(s *stubState) { s.Consolidatable = true })

			err := buf.RunMaintenance(context.Background())
			require.ErrorIs(t, err, cause)
			assert.ErrorContains(t, err, tt.wantMsg)
		})
	}
}

type captureNotifier struct {
	published [][]model.ConsolidatedRecord
	err       error
}

func (c *captureNotifier) PublishFinalized(_ context.Context, records []model.ConsolidatedRecord) error {
	c.published = append(c.published, records)
	return c.err
}

func TestRunMaintenance_PublishesOnlyFinalRecords(t *testing.T) {
	fs := newFakeStore()
	notifier := &captureNotifier{}
	buf := newTestBuffer(fs, WithNotifier[*stubState](notifier))

	finalKey := model.NewMessageKey(1, 1)
	partialKey := model.NewMessageKey(2, 1)

	alterStub(t, buf, finalKey, 100, 50, func(s *stubState) {
		s.Consolidatable = true
		s.Final = true
	})
	alterStub(t, buf, partialKey, 100, 51, func(s *stubState) { s.Consolidatable = true })

	require.NoError(t, buf.RunMaintenance(context.Background()))

	require.Len(t, notifier.published, 1)
	require.Len(t, notifier.published[0], 1)
	assert.Equal(t, finalKey, notifier.published[0][0].Key())
}

func TestRunMaintenance_NotifierFailureDoesNotFailCycle(t *testing.T) {
	fs := newFakeStore()
	notifier := &captureNotifier{err: errors.New("stream unavailable")}
	buf := newTestBuffer(fs, WithNotifier[*stubState](notifier))
	key := model.NewMessageKey(1, 1)

	alterStub(t, buf, key, 100, 50, func(s *stubState) {
		s.Consolidatable = true
		s.Final = true
	})

	require.NoError(t, buf.RunMaintenance(context.Background()))
	assert.Contains(t, fs.records, key)
}

func TestRunMaintenance_ExtendsExistingCheckpoint(t *testing.T) {
	fs := newFakeStore()
	now := time.Now()
	buf := newTestBuffer(fs, WithClock[*stubState](func() time.Time { return now }))

	pair := model.BridgeChain{BridgeID: 1, ChainID: 100}
	fs.checkpoints[pair] = model.Cursor{Backward: 40, Forward: 45}

	// One finalizing entry at block 50, one hot entry at block 60 acting as
	// a forward barrier.
	alterStub(t, buf, model.NewMessageKey(1, 1), 100, 50, func(s *stubState) {
		s.Consolidatable = true
		s.Final = true
	})
	alterStub(t, buf, model.NewMessageKey(2, 1), 100, 60, func(*stubState) {})
	alterStub(t, buf, model.NewMessageKey(3, 1), 100, 70, func(s *stubState) {
		s.Consolidatable = true
		s.Final = true
	})

	require.NoError(t, buf.RunMaintenance(context.Background()))

	// Forward extends through 50 but stops just before the hot block at 60;
	// the cold block at 70 beyond the barrier is unreachable.
	assert.Equal(t, model.Cursor{Backward: 40, Forward: 59}, fs.checkpoints[pair])
}

func TestRun_LoopStopsOnContextCancel(t *testing.T) {
	buf := New(
		Config{HotTTL: time.Minute, MaintenanceInterval: time.Millisecond},
		newFakeStore(), newFakeStore(),
		func() *stubState { return &stubState{} },
		testLogger(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- buf.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("maintenance loop did not stop")
	}
}
