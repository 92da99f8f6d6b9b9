package client

import (
	"context"

	"herdbook/internal/domain/animal"
)

// Storage локальное хранилище регистраций.
// Все ошибки ввода-вывода возвращаются как *StorageError.
type Storage interface {
	// AddRecord сохраняет новую запись с synced=false и возвращает ее с присвоенным LocalID
	AddRecord(ctx context.Context, fields animal.Fields) (*LocalRecord, error)
	// UpdateRecord меняет поля записи; запись снова становится несинхронизированной
	UpdateRecord(ctx context.Context, localID int64, fields animal.Fields) (*LocalRecord, error)
	GetRecord(ctx context.Context, localID int64) (*LocalRecord, error)
	// GetRecords возвращает записи от новых к старым
	GetRecords(ctx context.Context, filter RecordFilter) ([]*LocalRecord, error)
	// MarkAsSynced отмечает запись синхронизированной. backendID сохраняется, только если
	// у записи его еще нет. При revision > 0 отметка ставится, лишь если запись не
	// редактировалась после отправки. Отсутствующий localID не является ошибкой.
	MarkAsSynced(ctx context.Context, localID int64, backendID *int64, revision int64) error
	// DeleteRecord удаляет запись; повторное удаление не является ошибкой
	DeleteRecord(ctx context.Context, localID int64) error
	GetRecentSynced(ctx context.Context, limit int) ([]*LocalRecord, error)
	CountUnsynced(ctx context.Context) (int, error)
	// ApplyReconcile применяет план сверки одной транзакцией
	ApplyReconcile(ctx context.Context, plan ReconcilePlan) error
	// Tenant хозяйство, к которому привязана база; пустая строка, если привязки нет
	Tenant(ctx context.Context) (string, error)
	BindTenant(ctx context.Context, tenant string) error
	// Reset удаляет все записи и привязку к хозяйству. LocalID не переиспользуются.
	Reset(ctx context.Context) error
	Close() error
}
