package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"

	"herdbook/cmd/client/cmd/auth"
	"herdbook/cmd/client/cmd/record"
	"herdbook/cmd/client/cmd/sync"
	"herdbook/cmd/client/cmd/types"
	"herdbook/internal/app/client"
	"herdbook/internal/app/client/config"
	"herdbook/internal/utils/logger"
)

var (
	cfgFile   string
	cfg       *config.Config
	log       *slog.Logger
	app       *client.App
	debug     bool
	serverURL string
)

var rootCmd = &cobra.Command{
	Use:   "herdbook",
	Short: "Herdbook - офлайн-клиент регистрации животных",
	Long: `Herdbook - клиент для регистрации животных в поле без связи.

Записи сохраняются в локальную базу сразу и отправляются на сервер,
как только появляется соединение. Изменения с сервера подтягиваются
при каждой синхронизации.`,
	PersistentPreRunE: setupApp,
	PersistentPostRun: shutdownApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = loadConfig()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	opts := []logger.Option{logger.WithLevel(cfg.LogLevel), logger.WithOutput(os.Stderr)}
	if cfg.LogFile != "" {
		opts = append(opts, logger.WithFile(cfg.LogFile))
	}
	log = logger.New(cfg.Env, opts...)

	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, types.ClientAppKey, app))

	return nil
}

func shutdownApp(_ *cobra.Command, _ []string) {
	if app != nil {
		app.Shutdown()
	}
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	return config.Load()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл (yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "включить отладочный режим")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "адрес сервера (host:port)")

	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.SetTokenCmd, auth.StatusCmd, auth.LogoutCmd)

	rootCmd.AddCommand(record.RecordCmd)
	record.RecordCmd.AddCommand(
		record.AddCmd,
		record.EditCmd,
		record.GetCmd,
		record.ListCmd,
		record.RecentCmd,
		record.DeleteCmd,
	)

	rootCmd.AddCommand(sync.SyncCmd)
	sync.SyncCmd.AddCommand(sync.StatusCmd)

	rootCmd.AddCommand(runCmd)
}
