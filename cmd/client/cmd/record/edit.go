package record

import (
	"fmt"

	"github.com/spf13/cobra"

	"herdbook/cmd/client/cmd/types"
)

var editFlags fieldFlags

var EditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Изменить запись",
	Long: `Меняет поля записи по локальному ID. Меняются только переданные флаги;
пустое значение очищает поле. После изменения запись снова ждет отправки.`,
	Example: `  herdbook record edit 3 --color black --notes ""`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		id, err := recordID(args[0])
		if err != nil {
			return err
		}

		if !changedAny(cmd) {
			return fmt.Errorf("не задано ни одного поля для изменения")
		}

		rec, err := app.Record(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("ошибка получения записи: %w", err)
		}

		fields := rec.Fields
		if err := editFlags.apply(cmd.Flags(), &fields); err != nil {
			return err
		}

		updated, err := app.EditRecord(cmd.Context(), id, fields)
		if err != nil {
			return fmt.Errorf("ошибка изменения записи: %w", err)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), updated)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Запись #%d изменена\n", updated.LocalID)
		return nil
	},
}

func init() {
	editFlags.bind(EditCmd.Flags())
	EditCmd.Flags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")
}
