package client

import (
	"context"
	"time"

	"golang.org/x/exp/slog"
)

// Pinger проверяет доступность сервера
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectivityMonitor периодически проверяет сеть и запускает синхронизацию
// при каждом переходе offline -> online
type ConnectivityMonitor struct {
	guard    *Guard
	pinger   Pinger
	interval time.Duration
	onOnline func(ctx context.Context)
	log      *slog.Logger
}

func NewConnectivityMonitor(guard *Guard, pinger Pinger, interval time.Duration, onOnline func(ctx context.Context), log *slog.Logger) *ConnectivityMonitor {
	return &ConnectivityMonitor{
		guard:    guard,
		pinger:   pinger,
		interval: interval,
		onOnline: onOnline,
		log:      log.With("component", "connectivity"),
	}
}

// Check выполняет одну проверку и обновляет состояние; синхронизацию не запускает
func (m *ConnectivityMonitor) Check(ctx context.Context) (online, cameOnline bool) {
	err := m.pinger.Ping(ctx)
	online = err == nil
	cameOnline = m.guard.SetOnline(online)

	if err != nil {
		m.log.Debug("Сервер недоступен", "error", err)
	}
	return online, cameOnline
}

// Report принимает внешний сигнал о состоянии сети
func (m *ConnectivityMonitor) Report(ctx context.Context, online bool) {
	if m.guard.SetOnline(online) {
		m.log.Info("Соединение восстановлено")
		m.fire(ctx)
	} else if !online {
		m.log.Info("Соединение потеряно")
	}
}

// Run проверяет сеть с заданным интервалом до отмены контекста
func (m *ConnectivityMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *ConnectivityMonitor) tick(ctx context.Context) {
	wasOnline := m.guard.Online()
	online, cameOnline := m.Check(ctx)
	switch {
	case cameOnline:
		m.log.Info("Соединение восстановлено")
		m.fire(ctx)
	case wasOnline && !online:
		m.log.Info("Соединение потеряно")
	}
}

func (m *ConnectivityMonitor) fire(ctx context.Context) {
	if m.onOnline != nil {
		m.onOnline(ctx)
	}
}
