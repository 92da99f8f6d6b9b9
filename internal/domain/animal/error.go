package animal

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidFields = errors.New("invalid registration fields")
	ErrNotFound      = errors.New("registration not found")
	ErrInvalidRange  = errors.New("invalid export range")
)

// Validate проверяет поля регистрации
func (f *Fields) Validate() error {
	if f.AnimalNumber == "" {
		return fmt.Errorf("%w: animal_number is required", ErrInvalidFields)
	}
	if len(f.AnimalNumber) > 64 {
		return fmt.Errorf("%w: animal_number is too long", ErrInvalidFields)
	}
	if f.BornDate != nil {
		if _, err := time.Parse(BornDateLayout, *f.BornDate); err != nil {
			return fmt.Errorf("%w: born_date must be YYYY-MM-DD", ErrInvalidFields)
		}
	}

	measures := []struct {
		name  string
		valid bool
		neg   bool
	}{
		{"weight", f.Weight.Valid, f.Weight.Decimal.IsNegative()},
		{"scrotal_circumference", f.ScrotalCircumference.Valid, f.ScrotalCircumference.Decimal.IsNegative()},
		{"mother_weight", f.MotherWeight.Valid, f.MotherWeight.Decimal.IsNegative()},
		{"weaning_weight", f.WeaningWeight.Valid, f.WeaningWeight.Decimal.IsNegative()},
	}
	for _, m := range measures {
		if m.valid && m.neg {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidFields, m.name)
		}
	}

	return nil
}
