package client

import (
	"sync"
	"time"
)

// SkipReason причина, по которой проход синхронизации не выполнялся
type SkipReason string

const (
	SkipInFlight SkipReason = "in_flight"
	SkipOffline  SkipReason = "offline"
	SkipNoAuth   SkipReason = "no_auth"
	// SkipTenantMismatch токен выдан не тому хозяйству, к которому привязана база
	SkipTenantMismatch SkipReason = "tenant_mismatch"
)

// Guard хранит состояние сети и флаг выполняющейся синхронизации.
// Одновременно выполняется не более одного прохода.
type Guard struct {
	mu        sync.Mutex
	inFlight  bool
	online    bool
	changedAt time.Time
}

func NewGuard(online bool) *Guard {
	return &Guard{online: online, changedAt: time.Now()}
}

// TryAcquire занимает флаг; false, если проход уже идет
func (g *Guard) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inFlight {
		return false
	}
	g.inFlight = true
	return true
}

// Release снимает флаг
func (g *Guard) Release() {
	g.mu.Lock()
	g.inFlight = false
	g.mu.Unlock()
}

func (g *Guard) InFlight() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

func (g *Guard) Online() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.online
}

// SetOnline обновляет состояние сети и сообщает о переходе offline -> online
func (g *Guard) SetOnline(online bool) (cameOnline bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.online == online {
		return false
	}
	g.online = online
	g.changedAt = time.Now()
	return online
}

// ChangedAt время последней смены состояния сети
func (g *Guard) ChangedAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.changedAt
}
