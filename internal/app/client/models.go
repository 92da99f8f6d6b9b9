package client

import (
	"time"

	"herdbook/internal/domain/animal"
)

// LocalRecord регистрация животного в локальном хранилище
type LocalRecord struct {
	LocalID   int64  `json:"local_id"`
	BackendID *int64 `json:"backend_id,omitempty"`
	animal.Fields
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Revision  int64      `json:"revision"`
	Synced    bool       `json:"synced"`
	SyncedAt  *time.Time `json:"synced_at,omitempty"`
}

// Key возвращает естественный ключ записи
func (r *LocalRecord) Key() animal.NaturalKey {
	return animal.NewNaturalKey(r.AnimalNumber, r.CreatedAt)
}

// Clone возвращает независимую копию записи
func (r *LocalRecord) Clone() *LocalRecord {
	c := *r
	if r.BackendID != nil {
		id := *r.BackendID
		c.BackendID = &id
	}
	if r.SyncedAt != nil {
		t := *r.SyncedAt
		c.SyncedAt = &t
	}
	return &c
}

// RecordFilter фильтр выборки локальных записей
type RecordFilter struct {
	UnsyncedOnly bool
	Limit        int
}

func int64Ptr(v int64) *int64 {
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}
