package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"herdbook/internal/domain/animal"
)

// fieldFlags флаги с доменными полями записи
type fieldFlags struct {
	number        string
	motherID      string
	fatherID      string
	bornDate      string
	weight        string
	gender        string
	status        string
	color         string
	notes         string
	notesMother   string
	scrotal       string
	round         string
	rpAnimal      string
	rpMother      string
	motherWeight  string
	weaningWeight string
}

func (f *fieldFlags) bind(flags *pflag.FlagSet) {
	flags.StringVarP(&f.number, "number", "n", "", "номер животного (бирка)")
	flags.StringVar(&f.motherID, "mother", "", "номер матери")
	flags.StringVar(&f.fatherID, "father", "", "номер отца")
	flags.StringVar(&f.bornDate, "born", "", "дата рождения, YYYY-MM-DD")
	flags.StringVarP(&f.weight, "weight", "w", "", "вес, кг")
	flags.StringVar(&f.gender, "gender", "", "пол")
	flags.StringVar(&f.status, "status", "", "статус")
	flags.StringVar(&f.color, "color", "", "масть")
	flags.StringVar(&f.notes, "notes", "", "заметки")
	flags.StringVar(&f.notesMother, "notes-mother", "", "заметки о матери")
	flags.StringVar(&f.scrotal, "scrotal", "", "обхват мошонки, см")
	flags.StringVar(&f.round, "round", "", "id тура осеменения")
	flags.StringVar(&f.rpAnimal, "rp-animal", "", "RP животного")
	flags.StringVar(&f.rpMother, "rp-mother", "", "RP матери")
	flags.StringVar(&f.motherWeight, "mother-weight", "", "вес матери, кг")
	flags.StringVar(&f.weaningWeight, "weaning-weight", "", "вес при отъеме, кг")
}

// apply переносит в fields только явно заданные флаги.
// Пустое значение флага очищает необязательное поле.
func (f *fieldFlags) apply(flags *pflag.FlagSet, fields *animal.Fields) error {
	strs := []struct {
		name string
		src  string
		dst  **string
	}{
		{"mother", f.motherID, &fields.MotherID},
		{"father", f.fatherID, &fields.FatherID},
		{"born", f.bornDate, &fields.BornDate},
		{"gender", f.gender, &fields.Gender},
		{"status", f.status, &fields.Status},
		{"color", f.color, &fields.Color},
		{"notes", f.notes, &fields.Notes},
		{"notes-mother", f.notesMother, &fields.NotesMother},
		{"round", f.round, &fields.InseminationRoundID},
		{"rp-animal", f.rpAnimal, &fields.RPAnimal},
		{"rp-mother", f.rpMother, &fields.RPMother},
	}
	decimals := []struct {
		name string
		src  string
		dst  *animal.Decimal
	}{
		{"weight", f.weight, &fields.Weight},
		{"scrotal", f.scrotal, &fields.ScrotalCircumference},
		{"mother-weight", f.motherWeight, &fields.MotherWeight},
		{"weaning-weight", f.weaningWeight, &fields.WeaningWeight},
	}

	if flags.Changed("number") {
		fields.AnimalNumber = f.number
	}

	for _, s := range strs {
		if !flags.Changed(s.name) {
			continue
		}
		if strings.TrimSpace(s.src) == "" {
			*s.dst = nil
			continue
		}
		v := s.src
		*s.dst = &v
	}

	for _, d := range decimals {
		if !flags.Changed(d.name) {
			continue
		}
		// запятая как десятичный разделитель допустима
		value, err := animal.ParseDecimal(strings.ReplaceAll(strings.TrimSpace(d.src), ",", "."))
		if err != nil {
			return fmt.Errorf("неверное значение --%s: %q", d.name, d.src)
		}
		*d.dst = value
	}

	if fields.BornDate != nil {
		if _, err := time.Parse(animal.BornDateLayout, strings.TrimSpace(*fields.BornDate)); err != nil {
			return fmt.Errorf("неверная дата --born: %q, ожидается YYYY-MM-DD", *fields.BornDate)
		}
	}

	return nil
}

func recordID(arg string) (int64, error) {
	var id int64
	if _, err := fmt.Sscan(arg, &id); err != nil || id <= 0 {
		return 0, fmt.Errorf("неверный ID записи: %q", arg)
	}
	return id, nil
}

func changedAny(cmd *cobra.Command) bool {
	changed := false
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if f.Name != "json" {
			changed = true
		}
	})
	return changed
}
