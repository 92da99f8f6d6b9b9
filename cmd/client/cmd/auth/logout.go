package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"herdbook/cmd/client/cmd/types"
)

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Удалить токен",
	Long:  `Удаляет сохраненный токен. Локальные записи остаются на устройстве.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		if err := app.ClearToken(); err != nil {
			return fmt.Errorf("ошибка удаления токена: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "✅ Токен удален")
		return nil
	},
}
