package auth

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"herdbook/cmd/client/cmd/types"
	"herdbook/internal/app/client"
)

var resetStore bool

var SetTokenCmd = &cobra.Command{
	Use:   "set-token [token]",
	Short: "Сохранить токен доступа",
	Long: `Сохраняет JWT для запросов к серверу. Если токен не передан аргументом,
он будет запрошен без отображения ввода.

Локальная база привязана к хозяйству (sub токена). Токен другого хозяйства
принимается только с --reset, при этом все локальные записи удаляются.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		var token string
		if len(args) == 1 {
			token = args[0]
		} else {
			token, err = readToken(cmd)
			if err != nil {
				return fmt.Errorf("ошибка чтения токена: %w", err)
			}
		}

		token = strings.TrimSpace(token)
		if token == "" {
			return fmt.Errorf("токен не может быть пустым")
		}

		if err := app.SaveToken(cmd.Context(), token, resetStore); err != nil {
			if errors.Is(err, client.ErrTenantMismatch) {
				return fmt.Errorf("%w\nЧтобы удалить локальные записи и сменить хозяйство, повторите с --reset", err)
			}
			return fmt.Errorf("ошибка сохранения токена: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "✅ Токен сохранен")
		describeToken(cmd, token)
		return nil
	},
}

func init() {
	SetTokenCmd.Flags().BoolVar(&resetStore, "reset", false, "удалить локальные записи при смене хозяйства")
}

func readToken(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Токен: ")
	if fd := int(os.Stdin.Fd()); cmd.InOrStdin() == os.Stdin && term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.OutOrStdout())
		return string(raw), err
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return line, nil
}

func describeToken(cmd *cobra.Command, token string) {
	w := cmd.OutOrStdout()
	if sub := client.TokenSubject(token); sub != "" {
		fmt.Fprintf(w, "   Хозяйство: %s\n", sub)
	}
	exp, ok := client.TokenExpiry(token)
	if !ok {
		return
	}
	if time.Now().After(exp) {
		fmt.Fprintf(w, "⚠️  Срок действия истек %s\n", exp.Local().Format("2006-01-02 15:04"))
		return
	}
	fmt.Fprintf(w, "   Действует до: %s\n", exp.Local().Format("2006-01-02 15:04"))
}
