package animal

import "context"

// Repository хранилище регистраций на стороне сервера
type Repository interface {
	// Insert создает регистрацию или возвращает id уже существующей с тем же естественным ключом
	Insert(ctx context.Context, reg *Registration) (int64, error)
	Update(ctx context.Context, tenantID string, id int64, fields Fields) error
	DeleteByKey(ctx context.Context, tenantID string, key NaturalKey) error
	List(ctx context.Context, tenantID string, filter ExportFilter) ([]Registration, error)
}
