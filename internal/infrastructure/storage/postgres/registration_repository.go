package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"herdbook/internal/domain/animal"
)

type RegistrationRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewRegistrationRepository(pool *pgxpool.Pool, log *slog.Logger) *RegistrationRepository {
	return &RegistrationRepository{
		pool: pool,
		log:  log.With("component", "registration_repository"),
	}
}

// Dates and numerics are exchanged with the database as text.
const selectColumns = `
	id, animal_number, mother_id, father_id, born_date::text, weight::text,
	gender, status, color, notes, notes_mother, scrotal_circumference::text,
	insemination_round_id, rp_animal, rp_mother, mother_weight::text,
	weaning_weight::text, created_at, updated_at`

func (r *RegistrationRepository) Insert(ctx context.Context, reg *animal.Registration) (int64, error) {
	const query = `
		INSERT INTO registrations (
			tenant_id, animal_number, mother_id, father_id, born_date, weight,
			gender, status, color, notes, notes_mother, scrotal_circumference,
			insemination_round_id, rp_animal, rp_mother, mother_weight,
			weaning_weight, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::text::date, $6::text::numeric,
			$7, $8, $9, $10, $11, $12::text::numeric,
			$13, $14, $15, $16::text::numeric,
			$17::text::numeric, $18, $19)
		ON CONFLICT ON CONSTRAINT registrations_natural_key DO UPDATE SET
			mother_id = EXCLUDED.mother_id,
			father_id = EXCLUDED.father_id,
			born_date = EXCLUDED.born_date,
			weight = EXCLUDED.weight,
			gender = EXCLUDED.gender,
			status = EXCLUDED.status,
			color = EXCLUDED.color,
			notes = EXCLUDED.notes,
			notes_mother = EXCLUDED.notes_mother,
			scrotal_circumference = EXCLUDED.scrotal_circumference,
			insemination_round_id = EXCLUDED.insemination_round_id,
			rp_animal = EXCLUDED.rp_animal,
			rp_mother = EXCLUDED.rp_mother,
			mother_weight = EXCLUDED.mother_weight,
			weaning_weight = EXCLUDED.weaning_weight,
			updated_at = EXCLUDED.updated_at
		RETURNING id`

	args := append([]any{reg.TenantID}, fieldArgs(reg.Fields)...)
	args = append(args, reg.CreatedAt, reg.UpdatedAt)

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&reg.ID); err != nil {
		r.log.Error("failed to insert registration",
			"tenant", reg.TenantID, "animal_number", reg.AnimalNumber, "error", err)
		return 0, fmt.Errorf("insert registration: %w", err)
	}

	return reg.ID, nil
}

func (r *RegistrationRepository) Update(ctx context.Context, tenantID string, id int64, fields animal.Fields) error {
	const query = `
		UPDATE registrations SET
			animal_number = $1, mother_id = $2, father_id = $3,
			born_date = $4::text::date, weight = $5::text::numeric,
			gender = $6, status = $7, color = $8, notes = $9, notes_mother = $10,
			scrotal_circumference = $11::text::numeric,
			insemination_round_id = $12, rp_animal = $13, rp_mother = $14,
			mother_weight = $15::text::numeric, weaning_weight = $16::text::numeric,
			updated_at = now()
		WHERE id = $17 AND tenant_id = $18`

	args := append(fieldArgs(fields), id, tenantID)

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to update registration", "tenant", tenantID, "id", id, "error", err)
		return fmt.Errorf("update registration: %w", err)
	}
	if result.RowsAffected() == 0 {
		return animal.ErrNotFound
	}

	return nil
}

func (r *RegistrationRepository) DeleteByKey(ctx context.Context, tenantID string, key animal.NaturalKey) error {
	const query = `
		DELETE FROM registrations
		WHERE tenant_id = $1 AND animal_number = $2 AND created_at = $3`

	result, err := r.pool.Exec(ctx, query, tenantID, key.AnimalNumber, key.CreatedAt)
	if err != nil {
		r.log.Error("failed to delete registration", "tenant", tenantID, "key", key.String(), "error", err)
		return fmt.Errorf("delete registration: %w", err)
	}
	if result.RowsAffected() == 0 {
		return animal.ErrNotFound
	}

	return nil
}

func (r *RegistrationRepository) List(ctx context.Context, tenantID string, filter animal.ExportFilter) ([]animal.Registration, error) {
	query, args := listQuery(tenantID, filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list registrations", "tenant", tenantID, "error", err)
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	items := make([]animal.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		reg.TenantID = tenantID
		items = append(items, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}

	return items, nil
}

func listQuery(tenantID string, filter animal.ExportFilter) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(selectColumns)
	b.WriteString("\n\tFROM registrations WHERE tenant_id = $1")

	args := []any{tenantID}
	if filter.Start != nil {
		args = append(args, filter.Start.UTC())
		fmt.Fprintf(&b, " AND created_at >= $%d", len(args))
	}
	if filter.End != nil {
		args = append(args, filter.End.UTC())
		fmt.Fprintf(&b, " AND created_at <= $%d", len(args))
	}
	b.WriteString(" ORDER BY id")

	return b.String(), args
}

func fieldArgs(f animal.Fields) []any {
	return []any{
		f.AnimalNumber, f.MotherID, f.FatherID, f.BornDate, f.Weight.Ptr(),
		f.Gender, f.Status, f.Color, f.Notes, f.NotesMother, f.ScrotalCircumference.Ptr(),
		f.InseminationRoundID, f.RPAnimal, f.RPMother, f.MotherWeight.Ptr(),
		f.WeaningWeight.Ptr(),
	}
}

func scanRegistration(row pgx.Row) (*animal.Registration, error) {
	var (
		reg                                          animal.Registration
		weight, scrotal, motherWeight, weaningWeight *string
		createdAt, updatedAt                         time.Time
	)

	err := row.Scan(
		&reg.ID, &reg.AnimalNumber, &reg.MotherID, &reg.FatherID, &reg.BornDate, &weight,
		&reg.Gender, &reg.Status, &reg.Color, &reg.Notes, &reg.NotesMother, &scrotal,
		&reg.InseminationRoundID, &reg.RPAnimal, &reg.RPMother, &motherWeight,
		&weaningWeight, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, animal.ErrNotFound
		}
		return nil, err
	}

	for _, d := range []struct {
		src *string
		dst *animal.Decimal
	}{
		{weight, &reg.Weight},
		{scrotal, &reg.ScrotalCircumference},
		{motherWeight, &reg.MotherWeight},
		{weaningWeight, &reg.WeaningWeight},
	} {
		if d.src == nil {
			continue
		}
		if *d.dst, err = animal.ParseDecimal(*d.src); err != nil {
			return nil, fmt.Errorf("parse numeric %q: %w", *d.src, err)
		}
	}

	reg.CreatedAt = animal.NormalizeTime(createdAt)
	reg.UpdatedAt = updatedAt.UTC()

	return &reg, nil
}
