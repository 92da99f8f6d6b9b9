package client

import (
	"time"

	"herdbook/internal/domain/animal"
)

// ReconcileOp вид изменения локального хранилища при сверке
type ReconcileOp int

const (
	OpInsert ReconcileOp = iota + 1
	OpUpdate
	OpAdoptID
	OpDelete
)

func (o ReconcileOp) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpAdoptID:
		return "adopt_id"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// ReconcileAction одно изменение. Для OpInsert LocalID равен нулю,
// для OpDelete Record не заполняется.
type ReconcileAction struct {
	Op      ReconcileOp
	LocalID int64
	Record  *LocalRecord
}

// ReconcilePlan результат сверки, применяется хранилищем атомарно
type ReconcilePlan struct {
	Actions   []ReconcileAction
	Unchanged int
	KeptLocal int
}

// ReconcileSummary счетчики плана
type ReconcileSummary struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Adopted   int `json:"adopted"`
	Pruned    int `json:"pruned"`
	Unchanged int `json:"unchanged"`
	KeptLocal int `json:"kept_local"`
}

// ReconcileOptions параметры сверки
type ReconcileOptions struct {
	// PruneMissing удаляет синхронизированные записи, которых нет в полной выгрузке
	PruneMissing bool
}

// Empty сообщает, что план ничего не меняет
func (p ReconcilePlan) Empty() bool {
	return len(p.Actions) == 0
}

// Summary подсчитывает действия плана
func (p ReconcilePlan) Summary() ReconcileSummary {
	s := ReconcileSummary{Unchanged: p.Unchanged, KeptLocal: p.KeptLocal}
	for _, a := range p.Actions {
		switch a.Op {
		case OpInsert:
			s.Inserted++
		case OpUpdate:
			s.Updated++
		case OpAdoptID:
			s.Adopted++
		case OpDelete:
			s.Pruned++
		}
	}
	return s
}

type reconcileTarget struct {
	rec     *LocalRecord
	orig    *LocalRecord
	matched bool
}

// Reconcile сопоставляет выгрузку сервера с локальными записями.
//
// Запись выгрузки ищется сначала по backendId, затем по естественному ключу
// (номер животного, время создания). Несинхронизированная локальная запись
// никогда не перезаписывается, но может получить backendId сервера.
// Функция чистая: повторный вызов на результате применения плана дает пустой план.
func Reconcile(local []*LocalRecord, incoming []animal.Registration, opts ReconcileOptions, now time.Time) ReconcilePlan {
	now = now.UTC()

	targets := make([]*reconcileTarget, 0, len(local)+len(incoming))
	byBackend := make(map[int64]*reconcileTarget, len(local))
	byKey := make(map[animal.NaturalKey][]*reconcileTarget, len(local))

	index := func(t *reconcileTarget) {
		if t.rec.BackendID != nil {
			byBackend[*t.rec.BackendID] = t
		}
		key := t.rec.Key()
		for _, c := range byKey[key] {
			if c == t {
				return
			}
		}
		byKey[key] = append(byKey[key], t)
	}

	for _, rec := range local {
		t := &reconcileTarget{rec: rec.Clone(), orig: rec}
		targets = append(targets, t)
		index(t)
	}

	var plan ReconcilePlan

	for _, item := range incoming {
		fields := item.Fields
		fields.Normalize()
		key := animal.NewNaturalKey(fields.AnimalNumber, item.CreatedAt)

		var t *reconcileTarget
		if item.ID != 0 {
			t = byBackend[item.ID]
		}
		if t == nil {
			for _, c := range byKey[key] {
				if item.ID == 0 || c.rec.BackendID == nil || *c.rec.BackendID == item.ID {
					t = c
					break
				}
			}
		}

		if t == nil {
			rec := &LocalRecord{
				Fields:    fields,
				CreatedAt: key.CreatedAt,
				UpdatedAt: now,
				Revision:  1,
				Synced:    true,
				SyncedAt:  timePtr(now),
			}
			if item.ID != 0 {
				rec.BackendID = int64Ptr(item.ID)
			}
			t = &reconcileTarget{rec: rec, matched: true}
			targets = append(targets, t)
			index(t)
			continue
		}

		t.matched = true

		if !t.rec.Synced {
			// локальная правка в ожидании отправки: берем только идентификатор
			if t.rec.BackendID == nil && item.ID != 0 {
				t.rec.BackendID = int64Ptr(item.ID)
				index(t)
			}
			continue
		}

		t.rec.Fields = fields
		if item.ID != 0 {
			t.rec.BackendID = int64Ptr(item.ID)
			index(t)
		}
	}

	for _, t := range targets {
		switch {
		case t.orig == nil:
			plan.Actions = append(plan.Actions, ReconcileAction{Op: OpInsert, Record: t.rec})

		case !t.orig.Synced:
			if t.orig.BackendID == nil && t.rec.BackendID != nil {
				plan.Actions = append(plan.Actions, ReconcileAction{Op: OpAdoptID, LocalID: t.orig.LocalID, Record: t.rec})
			} else if t.matched {
				plan.KeptLocal++
			}

		case !t.matched:
			if opts.PruneMissing {
				plan.Actions = append(plan.Actions, ReconcileAction{Op: OpDelete, LocalID: t.orig.LocalID})
			}

		case t.orig.Fields.Equal(t.rec.Fields) && equalID(t.orig.BackendID, t.rec.BackendID):
			plan.Unchanged++

		default:
			t.rec.SyncedAt = timePtr(now)
			t.rec.UpdatedAt = now
			plan.Actions = append(plan.Actions, ReconcileAction{Op: OpUpdate, LocalID: t.orig.LocalID, Record: t.rec})
		}
	}

	return plan
}

func equalID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
