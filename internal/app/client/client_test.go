package client

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"herdbook/internal/app/client/config"
	"herdbook/internal/domain/animal"
)

func newTestApp(t *testing.T) (*App, *fakeBackend, *MemoryStorage) {
	t.Helper()
	backend := newFakeBackend(t)
	storage := NewMemoryStorage()
	tokens := NewFileTokenSource(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, tokens.Save("token-1"))

	cfg := &config.Config{
		Env:                  "local",
		ServerAddress:        "unused",
		SyncInterval:         time.Hour,
		ConnectivityInterval: time.Hour,
		RequestTimeout:       5 * time.Second,
		PruneMissing:         true,
	}

	return NewWithDeps(cfg, slog.Default(), storage, backend.api(), tokens), backend, storage
}

func TestApp_AddRecordSyncsInBackground(t *testing.T) {
	app, backend, storage := newTestApp(t)
	ctx := context.Background()

	rec, err := app.AddRecord(ctx, animal.Fields{AnimalNumber: "ac988001"})
	require.NoError(t, err)
	assert.Equal(t, "AC988001", rec.AnimalNumber)

	app.Shutdown()

	got, err := storage.GetRecord(ctx, rec.LocalID)
	require.NoError(t, err)
	assert.True(t, got.Synced)
	assert.Equal(t, 1, backend.postCount("AC988001"))
	assert.True(t, app.Online())
}

func TestApp_AddRecordOfflineStaysPending(t *testing.T) {
	app, backend, storage := newTestApp(t)
	ctx := context.Background()
	backend.server.Close()

	rec, err := app.AddRecord(ctx, animal.Fields{AnimalNumber: "OFF1"})
	require.NoError(t, err)
	app.Shutdown()

	got, err := storage.GetRecord(ctx, rec.LocalID)
	require.NoError(t, err)
	assert.False(t, got.Synced)
	assert.False(t, app.Online())
}

func TestApp_AddRecordRejectsInvalidFields(t *testing.T) {
	app, _, _ := newTestApp(t)
	_, err := app.AddRecord(context.Background(), animal.Fields{AnimalNumber: " "})
	assert.ErrorIs(t, err, animal.ErrInvalidFields)
}

func TestApp_DeleteRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("synced record is deleted remotely then locally", func(t *testing.T) {
		app, backend, storage := newTestApp(t)
		rec, err := storage.AddRecord(ctx, animal.Fields{AnimalNumber: "DEL1"})
		require.NoError(t, err)
		_, err = app.Sync(ctx, false)
		require.NoError(t, err)

		result, err := app.DeleteRecord(ctx, rec.LocalID)
		require.NoError(t, err)
		assert.True(t, result.Found)
		assert.True(t, result.RemoteAttempted)
		assert.True(t, result.RemoteDeleted)

		_, deletes, _ := backend.counts()
		assert.Equal(t, 1, deletes)
		_, err = storage.GetRecord(ctx, rec.LocalID)
		assert.ErrorIs(t, err, ErrRecordNotFound)

		// the next pull does not bring it back
		_, err = app.Sync(ctx, false)
		require.NoError(t, err)
		all, err := storage.GetRecords(ctx, RecordFilter{})
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("unsynced record is only deleted locally", func(t *testing.T) {
		app, backend, storage := newTestApp(t)
		rec, err := storage.AddRecord(ctx, animal.Fields{AnimalNumber: "DEL2"})
		require.NoError(t, err)

		result, err := app.DeleteRecord(ctx, rec.LocalID)
		require.NoError(t, err)
		assert.True(t, result.Found)
		assert.False(t, result.RemoteAttempted)

		_, deletes, _ := backend.counts()
		assert.Equal(t, 0, deletes)
	})

	t.Run("remote failure still deletes locally", func(t *testing.T) {
		app, backend, storage := newTestApp(t)
		rec, err := storage.AddRecord(ctx, animal.Fields{AnimalNumber: "DEL3"})
		require.NoError(t, err)
		require.NoError(t, storage.MarkAsSynced(ctx, rec.LocalID, int64Ptr(99), 0))
		backend.server.Close()

		result, err := app.DeleteRecord(ctx, rec.LocalID)
		require.NoError(t, err)
		assert.True(t, result.RemoteAttempted)
		assert.False(t, result.RemoteDeleted)
		assert.Error(t, result.RemoteErr)

		_, err = storage.GetRecord(ctx, rec.LocalID)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("record unknown to server counts as deleted", func(t *testing.T) {
		app, _, storage := newTestApp(t)
		rec, err := storage.AddRecord(ctx, animal.Fields{AnimalNumber: "DEL4"})
		require.NoError(t, err)
		require.NoError(t, storage.MarkAsSynced(ctx, rec.LocalID, int64Ptr(42), 0))

		result, err := app.DeleteRecord(ctx, rec.LocalID)
		require.NoError(t, err)
		assert.True(t, result.RemoteDeleted)
		assert.NoError(t, result.RemoteErr)
	})

	t.Run("renamed before sync is deleted under the new number", func(t *testing.T) {
		app, backend, storage := newTestApp(t)
		rec, err := storage.AddRecord(ctx, animal.Fields{AnimalNumber: "OLD1"})
		require.NoError(t, err)
		_, err = app.Sync(ctx, true)
		require.NoError(t, err)

		rec, err = storage.GetRecord(ctx, rec.LocalID)
		require.NoError(t, err)
		require.NotNil(t, rec.BackendID)
		backendID := *rec.BackendID

		_, err = storage.UpdateRecord(ctx, rec.LocalID, animal.Fields{AnimalNumber: "NEW1"})
		require.NoError(t, err)

		result, err := app.DeleteRecord(ctx, rec.LocalID)
		require.NoError(t, err)
		assert.True(t, result.RemoteAttempted)
		assert.True(t, result.RemoteDeleted)
		assert.NoError(t, result.RemoteErr)

		_, onServer := backend.item(backendID)
		assert.False(t, onServer)

		_, err = app.Sync(ctx, true)
		require.NoError(t, err)
		all, err := storage.GetRecords(ctx, RecordFilter{})
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("failed pending edit is not reported as deleted", func(t *testing.T) {
		app, backend, storage := newTestApp(t)
		rec, err := storage.AddRecord(ctx, animal.Fields{AnimalNumber: "OLD2"})
		require.NoError(t, err)
		_, err = app.Sync(ctx, true)
		require.NoError(t, err)
		_, err = storage.UpdateRecord(ctx, rec.LocalID, animal.Fields{AnimalNumber: "NEW2"})
		require.NoError(t, err)
		backend.set(func(b *fakeBackend) { b.updateStatus = http.StatusInternalServerError })

		result, err := app.DeleteRecord(ctx, rec.LocalID)
		require.NoError(t, err)
		assert.True(t, result.RemoteAttempted)
		assert.False(t, result.RemoteDeleted)
		assert.Equal(t, http.StatusInternalServerError, StatusCode(result.RemoteErr))

		_, deletes, _ := backend.counts()
		assert.Equal(t, 0, deletes)
	})

	t.Run("missing record is a no-op", func(t *testing.T) {
		app, _, _ := newTestApp(t)
		result, err := app.DeleteRecord(ctx, 12345)
		require.NoError(t, err)
		assert.False(t, result.Found)
	})
}

func TestApp_EditRecordPushesUpdate(t *testing.T) {
	app, backend, storage := newTestApp(t)
	ctx := context.Background()

	rec, err := storage.AddRecord(ctx, animal.Fields{AnimalNumber: "UPD1"})
	require.NoError(t, err)
	_, err = app.Sync(ctx, false)
	require.NoError(t, err)

	_, err = app.EditRecord(ctx, rec.LocalID, animal.Fields{AnimalNumber: "UPD1", Color: strPtr("black")})
	require.NoError(t, err)
	app.Shutdown()

	puts, _, _ := backend.counts()
	assert.Equal(t, 1, puts)
	pending, err := app.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}

func TestApp_Tokens(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()

	assert.True(t, app.IsAuthenticated(ctx))
	require.NoError(t, app.ClearToken())
	assert.False(t, app.IsAuthenticated(ctx))

	result, err := app.Sync(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, SkipNoAuth, result.Skipped)

	require.NoError(t, app.SaveToken(ctx, "token-2", false))
	token, err := app.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-2", token)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, backend, storage := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := storage.AddRecord(ctx, animal.Fields{AnimalNumber: "RUN1"})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool {
		return backend.postCount("RUN1") == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop")
	}
	app.Shutdown()
}
