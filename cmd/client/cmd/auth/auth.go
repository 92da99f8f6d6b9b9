package auth

import (
	"github.com/spf13/cobra"
)

// AuthCmd - родительская команда для управления токеном доступа
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Управление доступом",
	Long:  `Сохранение, проверка и удаление токена доступа к серверу.`,
}
