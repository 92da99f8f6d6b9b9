package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	gosync "sync"
	"syscall"

	"golang.org/x/exp/slog"

	"herdbook/internal/app/client/config"
	"herdbook/internal/domain/animal"
)

// TokenStore источник токена, который умеет его сохранять и удалять
type TokenStore interface {
	TokenSource
	Save(token string) error
	Clear() error
}

type App struct {
	config  *config.Config
	log     *slog.Logger
	storage Storage
	api     RemoteAPI
	tokens  TokenStore
	guard   *Guard
	sync    *SyncEngine
	monitor *ConnectivityMonitor
	wg      gosync.WaitGroup
	cancel  context.CancelFunc
	mu      gosync.Mutex
}

// DeleteResult итог двухшагового удаления
type DeleteResult struct {
	Found bool
	// RemoteAttempted запись была известна серверу и удаление на сервере запрашивалось
	RemoteAttempted bool
	RemoteDeleted   bool
	RemoteErr       error
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	var storage Storage
	sqliteStorage, err := NewSQLiteStorage(cfg.DataPath)
	if err != nil {
		log.Warn("Не удалось инициализировать SQLite, записи будут храниться только в памяти", "error", err)
		storage = NewMemoryStorage()
	} else {
		storage = sqliteStorage
	}

	return NewWithDeps(cfg, log, storage, NewHTTPClient(cfg, log), NewFileTokenSource(cfg.TokenPath)), nil
}

// NewWithDeps собирает приложение из готовых зависимостей
func NewWithDeps(cfg *config.Config, log *slog.Logger, storage Storage, api RemoteAPI, tokens TokenStore) *App {
	guard := NewGuard(false)

	app := &App{
		config:  cfg,
		log:     log,
		storage: storage,
		api:     api,
		tokens:  tokens,
		guard:   guard,
	}

	app.sync = NewSyncEngine(storage, api, tokens, guard, log, SyncConfig{
		Interval:              cfg.SyncInterval,
		PruneMissing:          cfg.PruneMissing,
		AcceptInsertWithoutID: cfg.AcceptInsertWithoutID,
	})
	app.monitor = NewConnectivityMonitor(guard, api, cfg.ConnectivityInterval, func(ctx context.Context) {
		app.sync.Trigger(ctx, "connectivity")
	}, log)

	return app
}

// Run запускает фоновую синхронизацию и ждет сигнала завершения
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.mu.Lock()
	ctx, a.cancel = context.WithCancel(ctx)
	a.mu.Unlock()

	if _, err := a.sync.RefreshPending(ctx); err != nil {
		return fmt.Errorf("ошибка чтения хранилища: %w", err)
	}

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		a.monitor.Run(ctx)
	}()
	go func() {
		defer a.wg.Done()
		a.sync.StartAutoSync(ctx)
	}()

	a.log.Info("Клиент запущен",
		"server", a.config.ServerAddress,
		"env", a.config.Env,
		"pending", a.sync.Pending(),
	)

	<-ctx.Done()
	a.log.Info("Получен сигнал завершения")
	a.wg.Wait()

	return nil
}

// Shutdown дожидается фоновых синхронизаций и закрывает хранилище
func (a *App) Shutdown() {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.mu.Unlock()

	a.wg.Wait()
	a.sync.Wait()

	if err := a.storage.Close(); err != nil {
		a.log.Error("Ошибка закрытия хранилища", "error", err)
	}
	a.log.Debug("Клиент завершил работу")
}

// CheckConnection проверяет доступность сервера и обновляет состояние сети
func (a *App) CheckConnection(ctx context.Context) bool {
	online, _ := a.monitor.Check(ctx)
	return online
}

// SetOnline внешний сигнал о состоянии сети
func (a *App) SetOnline(ctx context.Context, online bool) {
	a.monitor.Report(ctx, online)
}

// AddRecord сохраняет новую регистрацию локально и запускает синхронизацию
func (a *App) AddRecord(ctx context.Context, fields animal.Fields) (*LocalRecord, error) {
	rec, err := a.storage.AddRecord(ctx, fields)
	if err != nil {
		return nil, err
	}

	a.log.Info("Запись сохранена локально", "local_id", rec.LocalID, "animal_number", rec.AnimalNumber)
	a.syncAfterWrite(ctx)

	return rec, nil
}

// EditRecord меняет поля записи; запись снова ждет отправки
func (a *App) EditRecord(ctx context.Context, localID int64, fields animal.Fields) (*LocalRecord, error) {
	rec, err := a.storage.UpdateRecord(ctx, localID, fields)
	if err != nil {
		return nil, err
	}

	a.log.Info("Запись изменена локально", "local_id", rec.LocalID, "revision", rec.Revision)
	a.syncAfterWrite(ctx)

	return rec, nil
}

// DeleteRecord удаляет запись в два шага: если запись известна серверу,
// сначала запрашивается удаление на сервере (результат только логируется),
// затем запись удаляется локально в любом случае. Ответ 404 считается
// удалением: строки с таким id или ключом на сервере уже нет.
func (a *App) DeleteRecord(ctx context.Context, localID int64) (*DeleteResult, error) {
	result := &DeleteResult{}

	rec, err := a.storage.GetRecord(ctx, localID)
	if errors.Is(err, ErrRecordNotFound) {
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	result.Found = true

	if rec.Synced || rec.BackendID != nil {
		result.RemoteAttempted = true
		result.RemoteErr = a.deleteRemote(ctx, rec)
		switch {
		case result.RemoteErr == nil:
			result.RemoteDeleted = true
		case StatusCode(result.RemoteErr) == http.StatusNotFound:
			result.RemoteDeleted = true
			result.RemoteErr = nil
		default:
			a.log.Warn("Не удалось удалить запись на сервере", "local_id", localID, "error", result.RemoteErr)
		}
	}

	if err := a.storage.DeleteRecord(ctx, localID); err != nil {
		return nil, err
	}
	if _, err := a.sync.RefreshPending(ctx); err != nil {
		a.log.Warn("Ошибка пересчета очереди", "error", err)
	}

	a.log.Info("Запись удалена", "local_id", localID, "remote_deleted", result.RemoteDeleted)

	return result, nil
}

// deleteRemote удаляет запись на сервере по естественному ключу. Если у записи
// есть неотправленная правка, сервер знает ее под прежним номером, поэтому
// сначала отправляется правка, и только потом удаление по текущему ключу.
func (a *App) deleteRemote(ctx context.Context, rec *LocalRecord) error {
	token, err := a.tokens.Token(ctx)
	if err != nil {
		return err
	}

	if !rec.Synced && rec.BackendID != nil {
		if err := a.api.Update(ctx, token, *rec.BackendID, rec.Fields); err != nil {
			return fmt.Errorf("ошибка отправки правки перед удалением: %w", err)
		}
	}

	return a.api.Delete(ctx, token, animal.DeleteRequest{
		AnimalNumber: rec.AnimalNumber,
		CreatedAt:    rec.CreatedAt,
	})
}

// syncAfterWrite проверяет сеть и запускает синхронизацию в фоне
func (a *App) syncAfterWrite(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.monitor.Check(ctx)
		if _, err := a.sync.Sync(ctx, SyncOptions{Reason: "local_write"}); err != nil {
			a.log.Error("Ошибка синхронизации после записи", "error", err)
		}
	}()
}

// Sync выполняет проход синхронизации; force игнорирует состояние сети
func (a *App) Sync(ctx context.Context, force bool) (*SyncResult, error) {
	a.monitor.Check(ctx)
	return a.sync.Sync(ctx, SyncOptions{Force: force, Reason: "manual"})
}

// Record возвращает запись по localId
func (a *App) Record(ctx context.Context, localID int64) (*LocalRecord, error) {
	return a.storage.GetRecord(ctx, localID)
}

// Records возвращает записи от новых к старым
func (a *App) Records(ctx context.Context, filter RecordFilter) ([]*LocalRecord, error) {
	return a.storage.GetRecords(ctx, filter)
}

// RecentSynced последние синхронизированные записи
func (a *App) RecentSynced(ctx context.Context, limit int) ([]*LocalRecord, error) {
	return a.storage.GetRecentSynced(ctx, limit)
}

// Pending число записей, ожидающих отправки
func (a *App) Pending(ctx context.Context) (int, error) {
	return a.sync.RefreshPending(ctx)
}

func (a *App) Stats() SyncStats {
	return a.sync.Stats()
}

func (a *App) LastResult() *SyncResult {
	return a.sync.LastResult()
}

func (a *App) Online() bool {
	return a.guard.Online()
}

// IsAuthenticated есть ли действующий токен
func (a *App) IsAuthenticated(ctx context.Context) bool {
	_, err := a.tokens.Token(ctx)
	return err == nil
}

// SaveToken сохраняет токен, выданный внешним провайдером. Если токен выдан
// другому хозяйству, чем то, к которому привязана база, без reset возвращается
// ErrTenantMismatch и токен не сохраняется; с reset локальные записи удаляются.
func (a *App) SaveToken(ctx context.Context, token string, reset bool) error {
	sub := TokenSubject(token)

	var bound string
	if sub != "" {
		var err error
		if bound, err = a.storage.Tenant(ctx); err != nil {
			return err
		}
	}
	switched := bound != "" && bound != sub
	if switched && !reset {
		return fmt.Errorf("%w: база привязана к %q, токен выдан %q", ErrTenantMismatch, bound, sub)
	}

	if err := a.tokens.Save(token); err != nil {
		return err
	}

	if switched {
		if err := a.storage.Reset(ctx); err != nil {
			return err
		}
		if _, err := a.sync.RefreshPending(ctx); err != nil {
			a.log.Warn("Ошибка пересчета очереди", "error", err)
		}
		a.log.Warn("Локальная база очищена при смене хозяйства", "from", bound, "to", sub)
	}
	if sub != "" {
		return a.storage.BindTenant(ctx, sub)
	}
	return nil
}

// Tenant хозяйство, к которому привязана локальная база
func (a *App) Tenant(ctx context.Context) (string, error) {
	return a.storage.Tenant(ctx)
}

// ClearToken удаляет сохраненный токен
func (a *App) ClearToken() error {
	return a.tokens.Clear()
}

// Token возвращает текущий токен
func (a *App) Token(ctx context.Context) (string, error) {
	return a.tokens.Token(ctx)
}

// Config конфигурация клиента
func (a *App) Config() *config.Config {
	return a.config
}
