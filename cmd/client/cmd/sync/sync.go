package sync

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"herdbook/cmd/client/cmd/types"
	"herdbook/internal/app/client"
)

var (
	forceSync  bool
	jsonOutput bool
)

const timeLayout = "2006-01-02 15:04:05"

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Синхронизировать записи с сервером",
	Long: `Отправляет несинхронизированные записи на сервер, затем забирает
полную выгрузку и сверяет ее с локальной базой.

Без соединения синхронизация пропускается; --force пробует отправить
записи, даже если сервер считается недоступным.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		if !app.IsAuthenticated(cmd.Context()) {
			return fmt.Errorf("нет токена доступа. Выполните: herdbook auth set-token")
		}

		result, err := app.Sync(cmd.Context(), forceSync)
		if err != nil {
			return fmt.Errorf("ошибка синхронизации: %w", err)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), result)
		}
		PrintResult(cmd.OutOrStdout(), result)
		return nil
	},
}

var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Показать состояние синхронизации",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		pending, err := app.Pending(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка чтения локальной базы: %w", err)
		}

		status := Status{
			Online:        app.CheckConnection(cmd.Context()),
			Authenticated: app.IsAuthenticated(cmd.Context()),
			Pending:       pending,
			Server:        app.Config().ServerAddress,
			Interval:      app.Config().SyncInterval,
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), status)
		}
		PrintStatus(cmd.OutOrStdout(), status)
		return nil
	},
}

// Status состояние клиента для вывода
type Status struct {
	Server        string        `json:"server"`
	Online        bool          `json:"online"`
	Authenticated bool          `json:"authenticated"`
	Pending       int           `json:"pending"`
	Interval      time.Duration `json:"interval"`
}

// PrintResult печатает итог прохода синхронизации
func PrintResult(w io.Writer, result *client.SyncResult) {
	switch result.Skipped {
	case client.SkipOffline:
		fmt.Fprintln(w, "Сервер недоступен, синхронизация отложена. Используйте --force, чтобы попробовать все равно.")
		fmt.Fprintf(w, "Ожидают отправки: %d\n", result.Pending)
		return
	case client.SkipInFlight:
		fmt.Fprintln(w, "Синхронизация уже выполняется")
		return
	case client.SkipNoAuth:
		fmt.Fprintln(w, "Нет действующего токена, синхронизация пропущена")
		return
	case client.SkipTenantMismatch:
		fmt.Fprintln(w, "Токен выдан другому хозяйству, синхронизация остановлена. См. herdbook auth set-token --reset")
		fmt.Fprintf(w, "Ожидают отправки: %d\n", result.Pending)
		return
	}

	fmt.Fprintf(w, "Синхронизация завершена за %v\n", result.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Отправлено: %d (новых %d, изменено %d)\n", result.Pushed(), result.Inserted, result.Updated)
	fmt.Fprintf(w, "Получено с сервера: %d\n", result.Pulled)
	s := result.Reconcile
	fmt.Fprintf(w, "Сверка: добавлено %d, обновлено %d, связано %d, удалено %d\n",
		s.Inserted, s.Updated, s.Adopted, s.Pruned)
	fmt.Fprintf(w, "Ожидают отправки: %d\n", result.Pending)

	if len(result.Errors) > 0 {
		fmt.Fprintf(w, "Ошибок: %d\n", len(result.Errors))
		for i, e := range result.Errors {
			if i == 3 {
				fmt.Fprintf(w, "  ... и еще %d\n", len(result.Errors)-3)
				break
			}
			fmt.Fprintf(w, "  • %s #%d: %s\n", e.Operation, e.LocalID, e.Error)
		}
	}
}

// PrintStatus печатает состояние клиента
func PrintStatus(w io.Writer, s Status) {
	fmt.Fprintf(w, "Сервер: %s\n", s.Server)
	fmt.Fprintf(w, "Соединение: %s\n", yesNo(s.Online, "есть", "нет"))
	fmt.Fprintf(w, "Токен: %s\n", yesNo(s.Authenticated, "есть", "нет"))
	fmt.Fprintf(w, "Ожидают отправки: %d\n", s.Pending)
	fmt.Fprintf(w, "Интервал синхронизации: %v\n", s.Interval)
}

func yesNo(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func init() {
	SyncCmd.Flags().BoolVarP(&forceSync, "force", "f", false, "синхронизировать, даже если сервер считается недоступным")
	SyncCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")
}
