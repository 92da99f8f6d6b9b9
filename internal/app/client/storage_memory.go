package client

import (
	"context"
	"sort"
	"sync"
	"time"

	"herdbook/internal/domain/animal"
)

// MemoryStorage хранилище в памяти. Используется в тестах и как запасной
// вариант, если файл базы недоступен.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[int64]*LocalRecord
	nextID  int64
	tenant  string
	now     func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[int64]*LocalRecord),
		nextID:  1,
		now:     time.Now,
	}
}

func (m *MemoryStorage) AddRecord(_ context.Context, fields animal.Fields) (*LocalRecord, error) {
	fields.Normalize()
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := animal.NormalizeTime(m.now())
	rec := &LocalRecord{
		LocalID:   m.nextID,
		Fields:    fields,
		CreatedAt: now,
		UpdatedAt: now,
		Revision:  1,
	}
	m.nextID++
	m.records[rec.LocalID] = rec

	return rec.Clone(), nil
}

func (m *MemoryStorage) UpdateRecord(_ context.Context, localID int64, fields animal.Fields) (*LocalRecord, error) {
	fields.Normalize()
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[localID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	rec.Fields = fields
	rec.UpdatedAt = animal.NormalizeTime(m.now())
	rec.Revision++
	rec.Synced = false
	rec.SyncedAt = nil

	return rec.Clone(), nil
}

func (m *MemoryStorage) GetRecord(_ context.Context, localID int64) (*LocalRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[localID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return rec.Clone(), nil
}

func (m *MemoryStorage) GetRecords(_ context.Context, filter RecordFilter) ([]*LocalRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*LocalRecord, 0, len(m.records))
	for _, rec := range m.records {
		if filter.UnsyncedOnly && rec.Synced {
			continue
		}
		result = append(result, rec.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LocalID > result[j].LocalID
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}

	return result, nil
}

func (m *MemoryStorage) MarkAsSynced(_ context.Context, localID int64, backendID *int64, revision int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[localID]
	if !ok {
		return nil
	}
	if rec.BackendID == nil && backendID != nil {
		rec.BackendID = int64Ptr(*backendID)
	}
	if revision > 0 && rec.Revision != revision {
		return nil
	}
	rec.Synced = true
	rec.SyncedAt = timePtr(m.now().UTC())

	return nil
}

func (m *MemoryStorage) DeleteRecord(_ context.Context, localID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, localID)
	return nil
}

func (m *MemoryStorage) GetRecentSynced(_ context.Context, limit int) ([]*LocalRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*LocalRecord, 0)
	for _, rec := range m.records {
		if rec.Synced {
			result = append(result, rec.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].LocalID > result[j].LocalID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

func (m *MemoryStorage) CountUnsynced(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, rec := range m.records {
		if !rec.Synced {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStorage) ApplyReconcile(_ context.Context, plan ReconcilePlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range plan.Actions {
		switch a.Op {
		case OpInsert:
			rec := a.Record.Clone()
			rec.LocalID = m.nextID
			m.nextID++
			m.records[rec.LocalID] = rec

		case OpUpdate:
			rec, ok := m.records[a.LocalID]
			if !ok || !rec.Synced {
				continue
			}
			rec.Fields = a.Record.Fields
			rec.BackendID = a.Record.Clone().BackendID
			rec.UpdatedAt = a.Record.UpdatedAt
			rec.SyncedAt = a.Record.Clone().SyncedAt

		case OpAdoptID:
			rec, ok := m.records[a.LocalID]
			if !ok || rec.BackendID != nil || a.Record.BackendID == nil {
				continue
			}
			rec.BackendID = int64Ptr(*a.Record.BackendID)

		case OpDelete:
			rec, ok := m.records[a.LocalID]
			if ok && rec.Synced {
				delete(m.records, a.LocalID)
			}
		}
	}

	return nil
}

func (m *MemoryStorage) Tenant(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tenant, nil
}

func (m *MemoryStorage) BindTenant(_ context.Context, tenant string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenant = tenant
	return nil
}

func (m *MemoryStorage) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[int64]*LocalRecord)
	m.tenant = ""
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
