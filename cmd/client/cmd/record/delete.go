package record

import (
	"fmt"

	"github.com/spf13/cobra"

	"herdbook/cmd/client/cmd/types"
)

var DeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Удалить запись",
	Long: `Удаляет запись. Если запись уже была на сервере, сначала запрашивается
удаление на сервере; при его неудаче запись все равно удаляется локально.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		id, err := recordID(args[0])
		if err != nil {
			return err
		}

		result, err := app.DeleteRecord(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("ошибка удаления записи: %w", err)
		}

		w := cmd.OutOrStdout()
		switch {
		case !result.Found:
			fmt.Fprintf(w, "Запись #%d не найдена\n", id)
		case result.RemoteAttempted && !result.RemoteDeleted:
			fmt.Fprintf(w, "⚠️  Запись #%d удалена локально, но не на сервере: %v\n", id, result.RemoteErr)
			fmt.Fprintln(w, "   При следующей синхронизации она может вернуться.")
		default:
			fmt.Fprintf(w, "✅ Запись #%d удалена\n", id)
		}
		return nil
	},
}
