package record

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"herdbook/internal/app/client"
	"herdbook/internal/domain/animal"
)

const dateLayout = "2006-01-02 15:04"

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printRecordsSimple(w io.Writer, records []*client.LocalRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "Записи не найдены")
		return
	}

	fmt.Fprintf(w, "Найдено записей: %d\n\n", len(records))
	for i, rec := range records {
		fmt.Fprintf(w, "%d. [%s] %s\n", i+1, syncMark(rec), rec.AnimalNumber)
		fmt.Fprintf(w, "   ID: %d | Server ID: %s | Создано: %s\n",
			rec.LocalID, backendID(rec), rec.CreatedAt.Local().Format(dateLayout))
	}
}

func printRecordsTable(w io.Writer, records []*client.LocalRecord) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "Записи не найдены")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tServer ID\tНомер\tРождение\tВес\tСинхр.\tСоздано\t\n")
	fmt.Fprintf(tw, "---\t---\t---\t---\t---\t---\t---\t\n")
	for _, rec := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			rec.LocalID,
			backendID(rec),
			rec.AnimalNumber,
			str(rec.BornDate),
			dec(rec.Weight),
			syncMark(rec),
			rec.CreatedAt.Local().Format(dateLayout),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nВсего записей: %d\n", len(records))
	return nil
}

func printRecordHuman(w io.Writer, rec *client.LocalRecord) {
	rows := []struct {
		label string
		value string
	}{
		{"ID", fmt.Sprint(rec.LocalID)},
		{"Server ID", backendID(rec)},
		{"Номер", rec.AnimalNumber},
		{"Мать", str(rec.MotherID)},
		{"Отец", str(rec.FatherID)},
		{"Рождение", str(rec.BornDate)},
		{"Вес", dec(rec.Weight)},
		{"Пол", str(rec.Gender)},
		{"Статус", str(rec.Status)},
		{"Масть", str(rec.Color)},
		{"Обхват мошонки", dec(rec.ScrotalCircumference)},
		{"Вес матери", dec(rec.MotherWeight)},
		{"Вес при отъеме", dec(rec.WeaningWeight)},
		{"Тур осеменения", str(rec.InseminationRoundID)},
		{"RP животного", str(rec.RPAnimal)},
		{"RP матери", str(rec.RPMother)},
		{"Заметки", str(rec.Notes)},
		{"Заметки о матери", str(rec.NotesMother)},
		{"Создано", rec.CreatedAt.Local().Format(dateLayout)},
		{"Изменено", rec.UpdatedAt.Local().Format(dateLayout)},
		{"Синхронизирована", syncMark(rec)},
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", r.label, r.value)
	}
	tw.Flush()
}

func syncMark(rec *client.LocalRecord) string {
	if rec.Synced {
		return "✓"
	}
	return "…"
}

func backendID(rec *client.LocalRecord) string {
	if rec.BackendID == nil {
		return "-"
	}
	return fmt.Sprint(*rec.BackendID)
}

func str(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func dec(d animal.Decimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.String()
}
