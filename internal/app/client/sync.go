// internal/app/client/sync.go
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"herdbook/internal/domain/animal"
)

// SyncEngine отправляет локальные записи на сервер и забирает выгрузку обратно
type SyncEngine struct {
	storage Storage
	api     RemoteAPI
	tokens  TokenSource
	guard   *Guard
	log     *slog.Logger
	config  SyncConfig
	now     func() time.Time

	mu         sync.RWMutex
	stats      SyncStats
	lastResult *SyncResult
	pending    int

	wg sync.WaitGroup
}

// SyncConfig конфигурация синхронизации
type SyncConfig struct {
	Interval time.Duration `json:"interval"`
	// PruneMissing удалять синхронизированные записи, которых больше нет на сервере
	PruneMissing bool `json:"prune_missing"`
	// AcceptInsertWithoutID считать запись синхронизированной, даже если сервер не вернул id
	AcceptInsertWithoutID bool `json:"accept_insert_without_id"`
}

// SyncOptions параметры одного прохода
type SyncOptions struct {
	// Force выполняет проход, даже если сеть считается недоступной
	Force  bool
	Reason string
}

// SyncError ошибка синхронизации отдельной записи или фазы
type SyncError struct {
	LocalID    int64     `json:"local_id,omitempty"`
	Operation  string    `json:"operation"`
	Error      string    `json:"error"`
	StatusCode int       `json:"status_code,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// SyncResult результат синхронизации
type SyncResult struct {
	Skipped   SkipReason       `json:"skipped,omitempty"`
	Inserted  int              `json:"inserted"`
	Updated   int              `json:"updated"`
	Failed    int              `json:"failed"`
	Pulled    int              `json:"pulled"`
	Reconcile ReconcileSummary `json:"reconcile"`
	Pending   int              `json:"pending"`
	Errors    []SyncError      `json:"errors"`
	Duration  time.Duration    `json:"duration"`
	StartTime time.Time        `json:"start_time"`
	EndTime   time.Time        `json:"end_time"`
}

// Pushed количество успешно отправленных записей
func (r *SyncResult) Pushed() int {
	return r.Inserted + r.Updated
}

// SyncStats статистика синхронизации
type SyncStats struct {
	TotalSyncs      int       `json:"total_syncs"`
	TotalSkipped    int       `json:"total_skipped"`
	LastSuccessful  time.Time `json:"last_successful"`
	LastFailed      time.Time `json:"last_failed"`
	TotalInserted   int       `json:"total_inserted"`
	TotalUpdated    int       `json:"total_updated"`
	TotalPulled     int       `json:"total_pulled"`
	TotalErrors     int       `json:"total_errors"`
	AvgSyncDuration float64   `json:"avg_sync_duration"`
}

// NewSyncEngine создает движок синхронизации
func NewSyncEngine(storage Storage, api RemoteAPI, tokens TokenSource, guard *Guard, log *slog.Logger, config SyncConfig) *SyncEngine {
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	return &SyncEngine{
		storage: storage,
		api:     api,
		tokens:  tokens,
		guard:   guard,
		log:     log.With("component", "sync"),
		config:  config,
		now:     time.Now,
	}
}

// Sync выполняет один проход синхронизации. Пропущенный проход не является
// ошибкой: причина возвращается в SyncResult.Skipped. Ошибка возвращается
// только при сбое локального хранилища или отмене контекста.
func (s *SyncEngine) Sync(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	result := &SyncResult{
		StartTime: s.now(),
		Errors:    []SyncError{},
	}

	if !s.guard.TryAcquire() {
		s.log.Debug("Синхронизация уже выполняется, пропуск", "reason", opts.Reason)
		result.Skipped = SkipInFlight
		return s.complete(ctx, result, nil), nil
	}

	err := s.pass(ctx, opts, result)

	return s.complete(ctx, result, err), err
}

func (s *SyncEngine) pass(ctx context.Context, opts SyncOptions, result *SyncResult) error {
	defer s.guard.Release()

	if !opts.Force && !s.guard.Online() {
		s.log.Debug("Нет соединения, синхронизация отложена", "reason", opts.Reason)
		result.Skipped = SkipOffline
		return nil
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		if !errors.Is(err, ErrAuthUnavailable) {
			s.log.Warn("Ошибка получения токена", "error", err)
		} else {
			s.log.Debug("Нет токена, синхронизация пропущена", "error", err)
		}
		result.Skipped = SkipNoAuth
		return nil
	}

	if err := checkTenant(ctx, s.storage, token); err != nil {
		if !errors.Is(err, ErrTenantMismatch) {
			return err
		}
		s.log.Error("Синхронизация остановлена", "error", err)
		result.Skipped = SkipTenantMismatch
		return nil
	}

	s.log.Info("Начало синхронизации", "reason", opts.Reason, "force", opts.Force)

	if err := s.push(ctx, token, result); err != nil {
		return err
	}

	return s.pull(ctx, token, result)
}

// push отправляет несинхронизированные записи по одной, от старых к новым
func (s *SyncEngine) push(ctx context.Context, token string, result *SyncResult) error {
	records, err := s.storage.GetRecords(ctx, RecordFilter{UnsyncedOnly: true})
	if err != nil {
		return fmt.Errorf("ошибка получения несинхронизированных записей: %w", err)
	}

	for i := len(records) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("синхронизация прервана: %w", err)
		}
		if err := s.pushRecord(ctx, token, records[i], result); err != nil {
			return err
		}
	}

	return nil
}

func (s *SyncEngine) pushRecord(ctx context.Context, token string, rec *LocalRecord, result *SyncResult) error {
	log := s.log.With("local_id", rec.LocalID, "animal_number", rec.AnimalNumber)

	if rec.BackendID != nil {
		if err := s.api.Update(ctx, token, *rec.BackendID, rec.Fields); err != nil {
			s.fail(result, rec, "update", err)
			return nil
		}
		if err := s.storage.MarkAsSynced(ctx, rec.LocalID, nil, rec.Revision); err != nil {
			return fmt.Errorf("ошибка отметки записи %d: %w", rec.LocalID, err)
		}
		log.Debug("Запись обновлена на сервере", "backend_id", *rec.BackendID)
		result.Updated++
		return nil
	}

	id, err := s.api.Insert(ctx, token, animal.InsertRequest{Fields: rec.Fields, CreatedAt: rec.CreatedAt})
	switch {
	case errors.Is(err, ErrMalformedResponse):
		if !s.config.AcceptInsertWithoutID {
			// запись создана на сервере; id подхватит сверка по естественному ключу
			log.Error("Сервер не вернул id созданной записи, запись оставлена несинхронизированной", "error", err)
			s.fail(result, rec, "insert", err)
			return nil
		}
		log.Warn("Сервер не вернул id созданной записи, запись отмечена синхронизированной без id", "error", err)
	case err != nil:
		s.fail(result, rec, "insert", err)
		return nil
	}

	if err := s.storage.MarkAsSynced(ctx, rec.LocalID, id, rec.Revision); err != nil {
		return fmt.Errorf("ошибка отметки записи %d: %w", rec.LocalID, err)
	}
	if id != nil {
		log.Debug("Запись создана на сервере", "backend_id", *id)
	}
	result.Inserted++

	return nil
}

// pull забирает полную выгрузку и сверяет ее с хранилищем.
// Сбой выгрузки не отменяет результаты отправки.
func (s *SyncEngine) pull(ctx context.Context, token string, result *SyncResult) error {
	resp, err := s.api.Export(ctx, token, ExportQuery{})
	if err != nil {
		s.log.Warn("Ошибка получения выгрузки с сервера", "error", err)
		s.markConnectivity(err)
		result.Errors = append(result.Errors, SyncError{
			Operation:  "export",
			Error:      err.Error(),
			StatusCode: StatusCode(err),
			Timestamp:  s.now(),
		})
		return nil
	}
	result.Pulled = len(resp.Items)

	local, err := s.storage.GetRecords(ctx, RecordFilter{})
	if err != nil {
		return fmt.Errorf("ошибка чтения локальных записей: %w", err)
	}

	plan := Reconcile(local, resp.Items, ReconcileOptions{PruneMissing: s.config.PruneMissing}, s.now())
	if err := s.storage.ApplyReconcile(ctx, plan); err != nil {
		return fmt.Errorf("ошибка применения сверки: %w", err)
	}
	result.Reconcile = plan.Summary()

	s.log.Debug("Сверка выполнена",
		"pulled", result.Pulled,
		"inserted", result.Reconcile.Inserted,
		"updated", result.Reconcile.Updated,
		"adopted", result.Reconcile.Adopted,
		"pruned", result.Reconcile.Pruned,
	)

	return nil
}

func (s *SyncEngine) fail(result *SyncResult, rec *LocalRecord, op string, err error) {
	s.log.Warn("Ошибка отправки записи",
		"local_id", rec.LocalID,
		"operation", op,
		"status", StatusCode(err),
		"error", err,
	)
	s.markConnectivity(err)
	result.Failed++
	result.Errors = append(result.Errors, SyncError{
		LocalID:    rec.LocalID,
		Operation:  op,
		Error:      err.Error(),
		StatusCode: StatusCode(err),
		Timestamp:  s.now(),
	})
}

func (s *SyncEngine) markConnectivity(err error) {
	if IsNetworkError(err) {
		s.guard.SetOnline(false)
	}
}

// complete пересчитывает число ожидающих записей и обновляет статистику
func (s *SyncEngine) complete(ctx context.Context, result *SyncResult, passErr error) *SyncResult {
	pending, err := s.storage.CountUnsynced(context.WithoutCancel(ctx))
	if err != nil {
		s.log.Error("Ошибка подсчета несинхронизированных записей", "error", err)
	}

	result.EndTime = s.now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		s.pending = pending
	}
	result.Pending = s.pending

	if result.Skipped != "" {
		s.stats.TotalSkipped++
		return result
	}

	s.stats.TotalSyncs++
	s.stats.TotalInserted += result.Inserted
	s.stats.TotalUpdated += result.Updated
	s.stats.TotalPulled += result.Pulled
	s.stats.TotalErrors += len(result.Errors)
	if passErr != nil || len(result.Errors) > 0 {
		s.stats.LastFailed = result.EndTime
	} else {
		s.stats.LastSuccessful = result.EndTime
	}
	n := float64(s.stats.TotalSyncs)
	s.stats.AvgSyncDuration = (s.stats.AvgSyncDuration*(n-1) + result.Duration.Seconds()) / n
	s.lastResult = result

	if passErr != nil {
		s.log.Error("Синхронизация прервана", "error", passErr)
	} else {
		s.log.Info("Синхронизация завершена",
			"inserted", result.Inserted,
			"updated", result.Updated,
			"failed", result.Failed,
			"pulled", result.Pulled,
			"pending", result.Pending,
			"duration", result.Duration,
		)
	}

	return result
}

// Trigger запускает проход в фоне
func (s *SyncEngine) Trigger(ctx context.Context, reason string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.Sync(ctx, SyncOptions{Reason: reason}); err != nil {
			s.log.Error("Ошибка фоновой синхронизации", "reason", reason, "error", err)
		}
	}()
}

// Wait дожидается завершения фоновых проходов
func (s *SyncEngine) Wait() {
	s.wg.Wait()
}

// StartAutoSync запускает периодическую синхронизацию до отмены контекста
func (s *SyncEngine) StartAutoSync(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.log.Info("Автоматическая синхронизация запущена", "interval", s.config.Interval)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Автоматическая синхронизация остановлена")
			return
		case <-ticker.C:
			if _, err := s.Sync(ctx, SyncOptions{Reason: "interval"}); err != nil && ctx.Err() == nil {
				s.log.Error("Ошибка автоматической синхронизации", "error", err)
			}
		}
	}
}

// RefreshPending пересчитывает число ожидающих записей
func (s *SyncEngine) RefreshPending(ctx context.Context) (int, error) {
	pending, err := s.storage.CountUnsynced(ctx)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.pending = pending
	s.mu.Unlock()
	return pending, nil
}

// Pending число записей, ожидающих отправки, на момент последнего пересчета
func (s *SyncEngine) Pending() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// Stats возвращает копию статистики
func (s *SyncEngine) Stats() SyncStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// LastResult результат последнего выполненного прохода
func (s *SyncEngine) LastResult() *SyncResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastResult
}

// InFlight сообщает, идет ли сейчас проход
func (s *SyncEngine) InFlight() bool {
	return s.guard.InFlight()
}
