// Command membershipctl служебные операции сервиса абонементов: миграции,
// ручной запуск проверки истёкших подписок и выпуск токенов для отладки.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fithub/membership-service/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "membershipctl",
	Short:        "Membership service maintenance tool",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "path to config file")
	rootCmd.AddCommand(migrateCmd, sweepCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
