package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"schoolku_backend/internals/configs"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "schoolku",
	Short: "Schoolku backend: struktur biaya siswa & perhitungan beasiswa.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if envFile != "" {
			configs.LoadEnv(envFile)
			return
		}
		configs.LoadEnv()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path file .env (default .env)")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newMigrateCommand())
}

// bootstrap: config + logger (logger jadi default slog).
func bootstrap() (configs.Config, *slog.Logger, error) {
	cfg, err := configs.Load()
	if err != nil {
		return cfg, nil, err
	}
	log := configs.NewLogger(cfg)
	slog.SetDefault(log)
	return cfg, log, nil
}
