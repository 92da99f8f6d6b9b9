package animal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"
)

// Service defines the business logic for registrations
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

type Servicer interface {
	Register(ctx context.Context, tenantID string, req InsertRequest) (int64, error)
	Update(ctx context.Context, tenantID string, id int64, fields Fields) error
	Delete(ctx context.Context, tenantID string, req DeleteRequest) error
	Export(ctx context.Context, tenantID string, filter ExportFilter) (ExportResponse, error)
}

// NewService creates a new registration service
func NewService(repo Repository, log *slog.Logger) Servicer {
	return &Service{
		repo: repo,
		log:  log.With("component", "registration_service"),
		now:  time.Now,
	}
}

// Register stores a registration; repeated calls with the same natural key return the same id
func (s *Service) Register(ctx context.Context, tenantID string, req InsertRequest) (int64, error) {
	fields := req.Fields
	fields.Normalize()
	if err := fields.Validate(); err != nil {
		return 0, err
	}

	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	reg := &Registration{
		TenantID:  tenantID,
		Fields:    fields,
		CreatedAt: NormalizeTime(createdAt),
		UpdatedAt: s.now().UTC(),
	}

	id, err := s.repo.Insert(ctx, reg)
	if err != nil {
		s.log.Error("failed to insert registration", "tenant", tenantID, "animal_number", fields.AnimalNumber, "error", err)
		return 0, fmt.Errorf("insert registration: %w", err)
	}

	s.log.Info("registration stored", "tenant", tenantID, "id", id, "animal_number", fields.AnimalNumber)

	return id, nil
}

// Update replaces the domain fields of an existing registration
func (s *Service) Update(ctx context.Context, tenantID string, id int64, fields Fields) error {
	if id <= 0 {
		return ErrNotFound
	}

	fields.Normalize()
	if err := fields.Validate(); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, tenantID, id, fields); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.log.Error("failed to update registration", "tenant", tenantID, "id", id, "error", err)
		return fmt.Errorf("update registration: %w", err)
	}

	s.log.Info("registration updated", "tenant", tenantID, "id", id)

	return nil
}

// Delete removes a registration identified by its natural key
func (s *Service) Delete(ctx context.Context, tenantID string, req DeleteRequest) error {
	key := NewNaturalKey(req.AnimalNumber, req.CreatedAt)
	if key.AnimalNumber == "" {
		return fmt.Errorf("%w: animal_number is required", ErrInvalidFields)
	}

	if err := s.repo.DeleteByKey(ctx, tenantID, key); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.log.Error("failed to delete registration", "tenant", tenantID, "key", key.String(), "error", err)
		return fmt.Errorf("delete registration: %w", err)
	}

	s.log.Info("registration deleted", "tenant", tenantID, "key", key.String())

	return nil
}

// Export returns every registration of the tenant matching the filter
func (s *Service) Export(ctx context.Context, tenantID string, filter ExportFilter) (ExportResponse, error) {
	if filter.Start != nil && filter.End != nil && filter.End.Before(*filter.Start) {
		return ExportResponse{}, ErrInvalidRange
	}

	items, err := s.repo.List(ctx, tenantID, filter)
	if err != nil {
		s.log.Error("failed to list registrations", "tenant", tenantID, "error", err)
		return ExportResponse{}, fmt.Errorf("list registrations: %w", err)
	}
	if items == nil {
		items = []Registration{}
	}

	return ExportResponse{
		Count: len(items),
		Items: items,
	}, nil
}
