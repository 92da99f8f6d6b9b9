package record

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herdbook/internal/app/client"
	"herdbook/internal/domain/animal"
)

func testRecords() []*client.LocalRecord {
	backendID := int64(42)
	born := "2024-03-01"
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	return []*client.LocalRecord{
		{
			LocalID:   1,
			BackendID: &backendID,
			Fields:    animal.Fields{AnimalNumber: "AC988001", BornDate: &born, Weight: animal.MustDecimal("32.5")},
			CreatedAt: created,
			UpdatedAt: created,
			Synced:    true,
		},
		{
			LocalID:   2,
			Fields:    animal.Fields{AnimalNumber: "AC988002"},
			CreatedAt: created.Add(time.Hour),
			UpdatedAt: created.Add(time.Hour),
		},
	}
}

func TestPrintRecords(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   []string
	}{
		{name: "table", format: "table", want: []string{"AC988001", "42", "32.5", "2024-03-01", "Всего записей: 2"}},
		{name: "simple", format: "simple", want: []string{"Найдено записей: 2", "1. [✓] AC988001", "2. […] AC988002", "Server ID: -"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetOut(&buf)

			require.NoError(t, printRecords(cmd, testRecords(), tt.format))

			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func TestPrintRecords_JSON(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	require.NoError(t, printRecords(cmd, testRecords(), "json"))

	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "AC988001", out[0]["animal_number"])
	assert.Equal(t, 32.5, out[0]["weight"])
	assert.Equal(t, true, out[0]["synced"])
}

func TestPrintRecords_EmptyAndUnknown(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	require.NoError(t, printRecords(cmd, nil, "table"))
	assert.Contains(t, buf.String(), "Записи не найдены")

	assert.Error(t, printRecords(cmd, nil, "xml"))
}

func TestPrintRecordHuman(t *testing.T) {
	var buf bytes.Buffer

	printRecordHuman(&buf, testRecords()[0])

	out := buf.String()
	assert.Contains(t, out, "AC988001")
	assert.Contains(t, out, "Мать:")
	assert.Contains(t, out, "32.5")
	assert.Contains(t, out, "✓")
}
