package animal

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"
)

func init() {
	// Вес и обхват передаются по сети числами, а не строками
	decimal.MarshalJSONWithoutQuotes = true
}

// Decimal необязательное десятичное значение (вес, обхват)
type Decimal struct {
	decimal.NullDecimal
}

// NewDecimal создает заданное значение
func NewDecimal(d decimal.Decimal) Decimal {
	return Decimal{NullDecimal: decimal.NullDecimal{Decimal: d, Valid: true}}
}

// ParseDecimal разбирает строку; пустая строка дает пустое значение
func ParseDecimal(s string) (Decimal, error) {
	if s == "" {
		return Decimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, err
	}
	return NewDecimal(d), nil
}

// MustDecimal как ParseDecimal, но паникует на ошибке
func MustDecimal(s string) Decimal {
	d, err := ParseDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Ptr возвращает строковое представление или nil
func (d Decimal) Ptr() *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}

// Schema описывает значение для OpenAPI как число, допускающее null
func (Decimal) Schema(_ huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type:     huma.TypeNumber,
		Nullable: true,
	}
}
