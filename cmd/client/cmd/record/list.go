package record

import (
	"fmt"

	"github.com/spf13/cobra"

	"herdbook/cmd/client/cmd/types"
	"herdbook/internal/app/client"
)

var (
	listFormat   string
	unsyncedOnly bool
	limit        int
	recentLimit  int
	jsonOutput   bool
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список записей",
	Long:  `Записи локальной базы от новых к старым.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		records, err := app.Records(cmd.Context(), client.RecordFilter{
			UnsyncedOnly: unsyncedOnly,
			Limit:        limit,
		})
		if err != nil {
			return fmt.Errorf("ошибка получения списка записей: %w", err)
		}

		return printRecords(cmd, records, listFormat)
	},
}

var RecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Последние синхронизированные записи",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		records, err := app.RecentSynced(cmd.Context(), recentLimit)
		if err != nil {
			return fmt.Errorf("ошибка получения записей: %w", err)
		}

		return printRecords(cmd, records, listFormat)
	},
}

func printRecords(cmd *cobra.Command, records []*client.LocalRecord, format string) error {
	w := cmd.OutOrStdout()
	switch format {
	case "json":
		return printJSON(w, records)
	case "table":
		return printRecordsTable(w, records)
	case "simple":
		printRecordsSimple(w, records)
		return nil
	default:
		return fmt.Errorf("неизвестный формат %q", format)
	}
}

func init() {
	ListCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "формат вывода (simple, table, json)")
	ListCmd.Flags().BoolVarP(&unsyncedOnly, "unsynced", "u", false, "только несинхронизированные")
	ListCmd.Flags().IntVar(&limit, "limit", 0, "ограничение количества записей, 0 без ограничения")

	RecentCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "формат вывода (simple, table, json)")
	RecentCmd.Flags().IntVar(&recentLimit, "limit", 10, "количество записей")
}
