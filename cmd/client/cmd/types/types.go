package types

import (
	"errors"

	"github.com/spf13/cobra"

	"herdbook/internal/app/client"
)

type contextKey string

// ClientAppKey ключ, под которым приложение кладется в контекст команды
const ClientAppKey contextKey = "app"

var ErrNoApp = errors.New("приложение не инициализировано")

// App достает приложение из контекста команды
func App(cmd *cobra.Command) (*client.App, error) {
	if cmd.Context() == nil {
		return nil, ErrNoApp
	}
	app, ok := cmd.Context().Value(ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, ErrNoApp
	}
	return app, nil
}
