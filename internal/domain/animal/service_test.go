package animal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Insert(ctx context.Context, reg *Registration) (int64, error) {
	args := m.Called(ctx, reg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, tenantID string, id int64, fields Fields) error {
	args := m.Called(ctx, tenantID, id, fields)
	return args.Error(0)
}

func (m *MockRepository) DeleteByKey(ctx context.Context, tenantID string, key NaturalKey) error {
	args := m.Called(ctx, tenantID, key)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, tenantID string, filter ExportFilter) ([]Registration, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Registration), args.Error(1)
}

func newTestService(repo Repository) *Service {
	return NewService(repo, slog.Default()).(*Service)
}

func TestService_Register(t *testing.T) {
	createdAt := time.Date(2025, 3, 1, 10, 0, 0, 123456789, time.UTC)

	tests := []struct {
		name    string
		req     InsertRequest
		setup   func(m *MockRepository)
		wantID  int64
		wantErr error
	}{
		{
			name: "normalizes and stores",
			req: InsertRequest{
				Fields:    Fields{AnimalNumber: " ac988001 ", Weight: MustDecimal("312.5")},
				CreatedAt: createdAt,
			},
			setup: func(m *MockRepository) {
				m.On("Insert", mock.Anything, mock.MatchedBy(func(r *Registration) bool {
					return r.AnimalNumber == "AC988001" &&
						r.TenantID == "farm-1" &&
						r.CreatedAt.Equal(createdAt.Truncate(time.Millisecond)) &&
						r.Weight.Valid
				})).Return(int64(42), nil)
			},
			wantID: 42,
		},
		{
			name:    "rejects empty animal number",
			req:     InsertRequest{Fields: Fields{AnimalNumber: "  "}},
			setup:   func(m *MockRepository) {},
			wantErr: ErrInvalidFields,
		},
		{
			name: "repository failure",
			req:  InsertRequest{Fields: Fields{AnimalNumber: "AC1"}, CreatedAt: createdAt},
			setup: func(m *MockRepository) {
				m.On("Insert", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))
			},
			wantErr: errors.New("insert registration: db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setup(repo)
			s := newTestService(repo)

			id, err := s.Register(context.Background(), "farm-1", tt.req)

			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, ErrInvalidFields) {
					assert.ErrorIs(t, err, ErrInvalidFields)
				} else {
					assert.EqualError(t, err, tt.wantErr.Error())
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Register_DefaultsCreatedAt(t *testing.T) {
	repo := new(MockRepository)
	fixed := time.Date(2025, 5, 5, 5, 5, 5, 0, time.UTC)
	s := newTestService(repo)
	s.now = func() time.Time { return fixed }

	repo.On("Insert", mock.Anything, mock.MatchedBy(func(r *Registration) bool {
		return r.CreatedAt.Equal(fixed)
	})).Return(int64(1), nil)

	_, err := s.Register(context.Background(), "farm-1", InsertRequest{Fields: Fields{AnimalNumber: "B1"}})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_Update(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Update", mock.Anything, "farm-1", int64(7), mock.Anything).Return(ErrNotFound)
		s := newTestService(repo)

		err := s.Update(context.Background(), "farm-1", 7, Fields{AnimalNumber: "x1"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("non-positive id", func(t *testing.T) {
		s := newTestService(new(MockRepository))
		err := s.Update(context.Background(), "farm-1", 0, Fields{AnimalNumber: "x1"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("success normalizes", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Update", mock.Anything, "farm-1", int64(7), mock.MatchedBy(func(f Fields) bool {
			return f.AnimalNumber == "X1"
		})).Return(nil)
		s := newTestService(repo)

		require.NoError(t, s.Update(context.Background(), "farm-1", 7, Fields{AnimalNumber: "x1"}))
		repo.AssertExpectations(t)
	})
}

func TestService_Delete(t *testing.T) {
	createdAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := new(MockRepository)
	repo.On("DeleteByKey", mock.Anything, "farm-1", NaturalKey{AnimalNumber: "AC1", CreatedAt: createdAt}).Return(nil)
	s := newTestService(repo)

	err := s.Delete(context.Background(), "farm-1", DeleteRequest{AnimalNumber: "ac1", CreatedAt: createdAt})
	require.NoError(t, err)
	repo.AssertExpectations(t)

	err = s.Delete(context.Background(), "farm-1", DeleteRequest{})
	assert.ErrorIs(t, err, ErrInvalidFields)
}

func TestService_Export(t *testing.T) {
	t.Run("empty list is not nil", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("List", mock.Anything, "farm-1", ExportFilter{}).Return(nil, nil)
		s := newTestService(repo)

		resp, err := s.Export(context.Background(), "farm-1", ExportFilter{})
		require.NoError(t, err)
		assert.Equal(t, 0, resp.Count)
		assert.NotNil(t, resp.Items)
	})

	t.Run("inverted range", func(t *testing.T) {
		start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		s := newTestService(new(MockRepository))

		_, err := s.Export(context.Background(), "farm-1", ExportFilter{Start: &start, End: &end})
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("counts items", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("List", mock.Anything, "farm-1", ExportFilter{}).Return([]Registration{{ID: 1}, {ID: 2}}, nil)
		s := newTestService(repo)

		resp, err := s.Export(context.Background(), "farm-1", ExportFilter{})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Count)
	})
}
