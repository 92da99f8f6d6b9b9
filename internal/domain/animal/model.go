package animal

import (
	"fmt"
	"strings"
	"time"
)

// BornDateLayout формат даты рождения животного
const BornDateLayout = "2006-01-02"

// Fields доменные поля регистрации животного
type Fields struct {
	AnimalNumber         string  `json:"animal_number" doc:"Animal number (ear tag)" minLength:"1" maxLength:"64"`
	MotherID             *string `json:"mother_id,omitempty" required:"false"`
	FatherID             *string `json:"father_id,omitempty" required:"false"`
	BornDate             *string `json:"born_date,omitempty" required:"false" doc:"YYYY-MM-DD"`
	Weight               Decimal `json:"weight" required:"false"`
	Gender               *string `json:"gender,omitempty" required:"false"`
	Status               *string `json:"status,omitempty" required:"false"`
	Color                *string `json:"color,omitempty" required:"false"`
	Notes                *string `json:"notes,omitempty" required:"false"`
	NotesMother          *string `json:"notes_mother,omitempty" required:"false"`
	ScrotalCircumference Decimal `json:"scrotal_circumference" required:"false"`
	InseminationRoundID  *string `json:"insemination_round_id,omitempty" required:"false"`
	RPAnimal             *string `json:"rp_animal,omitempty" required:"false"`
	RPMother             *string `json:"rp_mother,omitempty" required:"false"`
	MotherWeight         Decimal `json:"mother_weight" required:"false"`
	WeaningWeight        Decimal `json:"weaning_weight" required:"false"`
}

// Registration регистрация животного в том виде, в котором ее хранит сервер
type Registration struct {
	ID       int64  `json:"id,omitempty"`
	TenantID string `json:"-"`
	Fields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// NaturalKey естественный ключ записи: номер животного и время создания
type NaturalKey struct {
	AnimalNumber string
	CreatedAt    time.Time
}

// NewNaturalKey собирает ключ в нормализованном виде
func NewNaturalKey(animalNumber string, createdAt time.Time) NaturalKey {
	return NaturalKey{
		AnimalNumber: NormalizeNumber(animalNumber),
		CreatedAt:    NormalizeTime(createdAt),
	}
}

func (k NaturalKey) String() string {
	return fmt.Sprintf("%s@%s", k.AnimalNumber, k.CreatedAt.Format(time.RFC3339Nano))
}

// Key возвращает естественный ключ регистрации
func (r *Registration) Key() NaturalKey {
	return NewNaturalKey(r.AnimalNumber, r.CreatedAt)
}

// NormalizeNumber приводит номер животного к каноническому виду
func NormalizeNumber(number string) string {
	return strings.ToUpper(strings.TrimSpace(number))
}

// NormalizeTime обрезает время до миллисекунд в UTC, чтобы ключ переживал
// сериализацию в JSON и хранение в Postgres
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// Normalize приводит поля к каноническому виду
func (f *Fields) Normalize() {
	f.AnimalNumber = NormalizeNumber(f.AnimalNumber)
	f.MotherID = normalizeRef(f.MotherID)
	f.FatherID = normalizeRef(f.FatherID)
	f.BornDate = trimOptional(f.BornDate)
	f.Gender = trimOptional(f.Gender)
	f.Status = trimOptional(f.Status)
	f.Color = trimOptional(f.Color)
	f.InseminationRoundID = trimOptional(f.InseminationRoundID)
	f.RPAnimal = trimOptional(f.RPAnimal)
	f.RPMother = trimOptional(f.RPMother)
}

// Equal сравнивает поля с учетом десятичных значений
func (f Fields) Equal(o Fields) bool {
	return f.AnimalNumber == o.AnimalNumber &&
		equalString(f.MotherID, o.MotherID) &&
		equalString(f.FatherID, o.FatherID) &&
		equalString(f.BornDate, o.BornDate) &&
		equalDecimal(f.Weight, o.Weight) &&
		equalString(f.Gender, o.Gender) &&
		equalString(f.Status, o.Status) &&
		equalString(f.Color, o.Color) &&
		equalString(f.Notes, o.Notes) &&
		equalString(f.NotesMother, o.NotesMother) &&
		equalDecimal(f.ScrotalCircumference, o.ScrotalCircumference) &&
		equalString(f.InseminationRoundID, o.InseminationRoundID) &&
		equalString(f.RPAnimal, o.RPAnimal) &&
		equalString(f.RPMother, o.RPMother) &&
		equalDecimal(f.MotherWeight, o.MotherWeight) &&
		equalDecimal(f.WeaningWeight, o.WeaningWeight)
}

func normalizeRef(s *string) *string {
	if s == nil {
		return nil
	}
	v := NormalizeNumber(*s)
	if v == "" {
		return nil
	}
	return &v
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalDecimal(a, b Decimal) bool {
	if !a.Valid || !b.Valid {
		return a.Valid == b.Valid
	}
	return a.Decimal.Equal(b.Decimal)
}
