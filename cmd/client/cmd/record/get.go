package record

import (
	"fmt"

	"github.com/spf13/cobra"

	"herdbook/cmd/client/cmd/types"
)

var GetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Просмотреть запись",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		id, err := recordID(args[0])
		if err != nil {
			return err
		}

		rec, err := app.Record(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("ошибка получения записи: %w", err)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), rec)
		}
		printRecordHuman(cmd.OutOrStdout(), rec)
		return nil
	},
}

func init() {
	GetCmd.Flags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")
}
