package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"herdbook/internal/domain/animal"
)

const recordColumns = `local_id, backend_id, animal_number, mother_id, father_id, born_date, weight,
	gender, status, color, notes, notes_mother, scrotal_circumference, insemination_round_id,
	rp_animal, rp_mother, mother_weight, weaning_weight, created_at, updated_at, revision, synced, synced_at`

type SQLiteStorage struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, storageErr("open", fmt.Errorf("ошибка открытия базы данных: %w", err))
	}
	// одно соединение: операции хранилища сериализуются
	db.SetMaxOpenConns(1)

	storage := &SQLiteStorage{db: db, now: time.Now}

	if err := storage.initTables(); err != nil {
		db.Close()
		return nil, storageErr("init", fmt.Errorf("ошибка инициализации таблиц: %w", err))
	}

	return storage, nil
}

func (s *SQLiteStorage) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS registrations (
			local_id INTEGER PRIMARY KEY AUTOINCREMENT,
			backend_id INTEGER,
			animal_number TEXT NOT NULL,
			mother_id TEXT,
			father_id TEXT,
			born_date TEXT,
			weight TEXT,
			gender TEXT,
			status TEXT,
			color TEXT,
			notes TEXT,
			notes_mother TEXT,
			scrotal_circumference TEXT,
			insemination_round_id TEXT,
			rp_animal TEXT,
			rp_mother TEXT,
			mother_weight TEXT,
			weaning_weight TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			revision INTEGER NOT NULL DEFAULT 1,
			synced INTEGER NOT NULL DEFAULT 0,
			synced_at TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_registrations_synced ON registrations(synced);
		CREATE INDEX IF NOT EXISTS idx_registrations_backend_id ON registrations(backend_id);

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)

	return err
}

// фиксированная ширина, чтобы строки сортировались как время
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*LocalRecord, error) {
	var (
		rec                  LocalRecord
		backendID            sql.NullInt64
		createdAt, updatedAt string
		syncedAt             sql.NullString
	)

	err := row.Scan(&rec.LocalID, &backendID, &rec.AnimalNumber, &rec.MotherID, &rec.FatherID,
		&rec.BornDate, &rec.Weight, &rec.Gender, &rec.Status, &rec.Color, &rec.Notes,
		&rec.NotesMother, &rec.ScrotalCircumference, &rec.InseminationRoundID, &rec.RPAnimal,
		&rec.RPMother, &rec.MotherWeight, &rec.WeaningWeight, &createdAt, &updatedAt,
		&rec.Revision, &rec.Synced, &syncedAt)
	if err != nil {
		return nil, err
	}

	if backendID.Valid {
		rec.BackendID = int64Ptr(backendID.Int64)
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("ошибка парсинга created_at: %w", err)
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("ошибка парсинга updated_at: %w", err)
	}
	if syncedAt.Valid {
		t, err := parseTime(syncedAt.String)
		if err != nil {
			return nil, fmt.Errorf("ошибка парсинга synced_at: %w", err)
		}
		rec.SyncedAt = &t
	}

	return &rec, nil
}

func fieldArgs(f animal.Fields) []any {
	return []any{
		f.AnimalNumber, f.MotherID, f.FatherID, f.BornDate, f.Weight.Ptr(), f.Gender, f.Status,
		f.Color, f.Notes, f.NotesMother, f.ScrotalCircumference.Ptr(), f.InseminationRoundID,
		f.RPAnimal, f.RPMother, f.MotherWeight.Ptr(), f.WeaningWeight.Ptr(),
	}
}

const fieldAssignments = `animal_number = ?, mother_id = ?, father_id = ?, born_date = ?, weight = ?,
	gender = ?, status = ?, color = ?, notes = ?, notes_mother = ?, scrotal_circumference = ?,
	insemination_round_id = ?, rp_animal = ?, rp_mother = ?, mother_weight = ?, weaning_weight = ?`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertRecord(ctx context.Context, db execer, rec *LocalRecord) (int64, error) {
	var backendID any
	if rec.BackendID != nil {
		backendID = *rec.BackendID
	}
	var syncedAt any
	if rec.SyncedAt != nil {
		syncedAt = formatTime(*rec.SyncedAt)
	}

	args := append([]any{backendID}, fieldArgs(rec.Fields)...)
	args = append(args, formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt), rec.Revision, rec.Synced, syncedAt)

	res, err := db.ExecContext(ctx, `
		INSERT INTO registrations (backend_id, animal_number, mother_id, father_id, born_date, weight,
			gender, status, color, notes, notes_mother, scrotal_circumference, insemination_round_id,
			rp_animal, rp_mother, mother_weight, weaning_weight, created_at, updated_at, revision, synced, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, args...)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (s *SQLiteStorage) AddRecord(ctx context.Context, fields animal.Fields) (*LocalRecord, error) {
	fields.Normalize()
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	now := animal.NormalizeTime(s.now())
	rec := &LocalRecord{
		Fields:    fields,
		CreatedAt: now,
		UpdatedAt: now,
		Revision:  1,
	}

	id, err := insertRecord(ctx, s.db, rec)
	if err != nil {
		return nil, storageErr("add", fmt.Errorf("ошибка сохранения записи: %w", err))
	}
	rec.LocalID = id

	return rec, nil
}

func (s *SQLiteStorage) UpdateRecord(ctx context.Context, localID int64, fields animal.Fields) (*LocalRecord, error) {
	fields.Normalize()
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	args := append(fieldArgs(fields), formatTime(animal.NormalizeTime(s.now())), localID)
	res, err := s.db.ExecContext(ctx, `
		UPDATE registrations
		SET `+fieldAssignments+`, updated_at = ?, revision = revision + 1, synced = 0, synced_at = NULL
		WHERE local_id = ?
	`, args...)
	if err != nil {
		return nil, storageErr("update", fmt.Errorf("ошибка обновления записи: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrRecordNotFound
	}

	return s.GetRecord(ctx, localID)
}

func (s *SQLiteStorage) GetRecord(ctx context.Context, localID int64) (*LocalRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM registrations WHERE local_id = ?`, localID)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, storageErr("get", fmt.Errorf("ошибка получения записи: %w", err))
	}

	return rec, nil
}

func (s *SQLiteStorage) GetRecords(ctx context.Context, filter RecordFilter) ([]*LocalRecord, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + recordColumns + ` FROM registrations`)
	args := []any{}

	if filter.UnsyncedOnly {
		b.WriteString(` WHERE synced = 0`)
	}
	b.WriteString(` ORDER BY local_id DESC`)
	if filter.Limit > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, filter.Limit)
	}

	records, err := s.query(ctx, b.String(), args...)
	if err != nil {
		return nil, storageErr("list", err)
	}
	return records, nil
}

func (s *SQLiteStorage) GetRecentSynced(ctx context.Context, limit int) ([]*LocalRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM registrations WHERE synced = 1 ORDER BY created_at DESC, local_id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	records, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("recent", err)
	}
	return records, nil
}

func (s *SQLiteStorage) query(ctx context.Context, query string, args ...any) ([]*LocalRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	var records []*LocalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения записи: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (s *SQLiteStorage) MarkAsSynced(ctx context.Context, localID int64, backendID *int64, revision int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("mark_synced", err)
	}
	defer tx.Rollback()

	if backendID != nil {
		_, err = tx.ExecContext(ctx,
			`UPDATE registrations SET backend_id = ? WHERE local_id = ? AND backend_id IS NULL`,
			*backendID, localID)
		if err != nil {
			return storageErr("mark_synced", fmt.Errorf("ошибка сохранения backend_id: %w", err))
		}
	}

	query := `UPDATE registrations SET synced = 1, synced_at = ? WHERE local_id = ?`
	args := []any{formatTime(s.now()), localID}
	if revision > 0 {
		query += ` AND revision = ?`
		args = append(args, revision)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return storageErr("mark_synced", fmt.Errorf("ошибка отметки синхронизации: %w", err))
	}

	return storageErr("mark_synced", tx.Commit())
}

func (s *SQLiteStorage) DeleteRecord(ctx context.Context, localID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM registrations WHERE local_id = ?`, localID); err != nil {
		return storageErr("delete", fmt.Errorf("ошибка удаления записи: %w", err))
	}
	return nil
}

func (s *SQLiteStorage) CountUnsynced(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE synced = 0`).Scan(&count); err != nil {
		return 0, storageErr("count", err)
	}
	return count, nil
}

func (s *SQLiteStorage) ApplyReconcile(ctx context.Context, plan ReconcilePlan) error {
	if plan.Empty() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("reconcile", err)
	}
	defer tx.Rollback()

	for _, a := range plan.Actions {
		switch a.Op {
		case OpInsert:
			_, err = insertRecord(ctx, tx, a.Record)

		case OpUpdate:
			var backendID, syncedAt any
			if a.Record.BackendID != nil {
				backendID = *a.Record.BackendID
			}
			if a.Record.SyncedAt != nil {
				syncedAt = formatTime(*a.Record.SyncedAt)
			}
			args := append(fieldArgs(a.Record.Fields), backendID, formatTime(a.Record.UpdatedAt), syncedAt, a.LocalID)
			// правка, сделанная после чтения плана, сбрасывает synced и побеждает
			_, err = tx.ExecContext(ctx, `
				UPDATE registrations
				SET `+fieldAssignments+`, backend_id = ?, updated_at = ?, synced_at = ?
				WHERE local_id = ? AND synced = 1
			`, args...)

		case OpAdoptID:
			if a.Record == nil || a.Record.BackendID == nil {
				continue
			}
			_, err = tx.ExecContext(ctx,
				`UPDATE registrations SET backend_id = ? WHERE local_id = ? AND backend_id IS NULL`,
				*a.Record.BackendID, a.LocalID)

		case OpDelete:
			_, err = tx.ExecContext(ctx, `DELETE FROM registrations WHERE local_id = ? AND synced = 1`, a.LocalID)
		}
		if err != nil {
			return storageErr("reconcile", fmt.Errorf("ошибка применения %s: %w", a.Op, err))
		}
	}

	return storageErr("reconcile", tx.Commit())
}

const metaTenant = "tenant"

func (s *SQLiteStorage) Tenant(ctx context.Context) (string, error) {
	var tenant string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, metaTenant).Scan(&tenant)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", storageErr("tenant", err)
	}
	return tenant, nil
}

func (s *SQLiteStorage) BindTenant(ctx context.Context, tenant string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaTenant, tenant,
	)
	return storageErr("bind_tenant", err)
}

func (s *SQLiteStorage) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("reset", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM registrations`); err != nil {
		return storageErr("reset", fmt.Errorf("ошибка удаления записей: %w", err))
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM meta WHERE key = ?`, metaTenant); err != nil {
		return storageErr("reset", err)
	}

	return storageErr("reset", tx.Commit())
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
