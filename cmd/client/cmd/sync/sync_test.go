package sync

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"herdbook/internal/app/client"
)

func TestPrintResult(t *testing.T) {
	tests := []struct {
		name     string
		result   *client.SyncResult
		contains []string
	}{
		{
			name:     "offline",
			result:   &client.SyncResult{Skipped: client.SkipOffline, Pending: 3},
			contains: []string{"синхронизация отложена", "Ожидают отправки: 3"},
		},
		{
			name:     "token for another farm",
			result:   &client.SyncResult{Skipped: client.SkipTenantMismatch, Pending: 2},
			contains: []string{"другому хозяйству", "--reset", "Ожидают отправки: 2"},
		},
		{
			name:     "in flight",
			result:   &client.SyncResult{Skipped: client.SkipInFlight},
			contains: []string{"уже выполняется"},
		},
		{
			name: "completed with errors",
			result: &client.SyncResult{
				Inserted:  2,
				Updated:   1,
				Pulled:    10,
				Reconcile: client.ReconcileSummary{Inserted: 4, Pruned: 1},
				Duration:  1500 * time.Millisecond,
				Errors: []client.SyncError{
					{LocalID: 1, Operation: "insert", Error: "a"},
					{LocalID: 2, Operation: "insert", Error: "b"},
					{LocalID: 3, Operation: "update", Error: "c"},
					{LocalID: 4, Operation: "update", Error: "d"},
					{LocalID: 5, Operation: "update", Error: "e"},
				},
			},
			contains: []string{
				"Отправлено: 3 (новых 2, изменено 1)",
				"Получено с сервера: 10",
				"добавлено 4",
				"удалено 1",
				"Ошибок: 5",
				"update #3: c",
				"... и еще 2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintResult(&buf, tt.result)
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintStatus(&buf, Status{Server: "farm:8080", Online: false, Authenticated: true, Pending: 2, Interval: time.Minute})

	out := buf.String()
	assert.Contains(t, out, "Сервер: farm:8080")
	assert.Contains(t, out, "Соединение: нет")
	assert.Contains(t, out, "Токен: есть")
	assert.Contains(t, out, "Ожидают отправки: 2")
	assert.Contains(t, out, "1m0s")
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	err := printJSON(&buf, Status{Pending: 1})
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"pending": 1`)

	assert.Error(t, printJSON(&buf, func() {}))
}
