package record

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"herdbook/cmd/client/cmd/types"
	"herdbook/internal/domain/animal"
)

var addFlags fieldFlags

var AddCmd = &cobra.Command{
	Use:   "add",
	Short: "Зарегистрировать животное",
	Long: `Сохраняет новую запись в локальную базу. Запись отправляется на сервер
в фоне сразу, если есть соединение, иначе при следующей синхронизации.

Если номер не указан флагом --number, он будет запрошен.`,
	Example: `  herdbook record add -n AC988001 --born 2024-03-01 -w 32.5 --mother AC100`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		var fields animal.Fields
		if err := addFlags.apply(cmd.Flags(), &fields); err != nil {
			return err
		}

		if strings.TrimSpace(fields.AnimalNumber) == "" {
			fmt.Fprint(cmd.OutOrStdout(), "Номер животного: ")
			line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			fields.AnimalNumber = strings.TrimSpace(line)
		}

		rec, err := app.AddRecord(cmd.Context(), fields)
		if err != nil {
			return fmt.Errorf("ошибка сохранения записи: %w", err)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), rec)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Запись #%d (%s) сохранена\n", rec.LocalID, rec.AnimalNumber)
		return nil
	},
}

func init() {
	addFlags.bind(AddCmd.Flags())
	AddCmd.Flags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")
}
