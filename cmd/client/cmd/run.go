package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"herdbook/cmd/client/cmd/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Запустить фоновую синхронизацию",
	Long: `Запускает клиент в режиме демона: следит за соединением с сервером,
отправляет накопленные записи при его появлении и синхронизируется
с заданным интервалом. Завершается по Ctrl+C или SIGTERM.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Herdbook запущен, сервер %s. Ctrl+C для выхода.\n", app.Config().ServerAddress)

		return app.Run(cmd.Context())
	},
}
