package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"herdbook/cmd/client/cmd/types"
)

var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Проверить токен",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		token, err := app.Token(cmd.Context())
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "❌ Токен недоступен: %v\n", err)
			fmt.Fprintln(cmd.OutOrStdout(), "   Выполните: herdbook auth set-token")
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), "✅ Токен задан")
		describeToken(cmd, token)

		if tenant, err := app.Tenant(cmd.Context()); err == nil && tenant != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "   База привязана к хозяйству: %s\n", tenant)
		}
		return nil
	},
}
