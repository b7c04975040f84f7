package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/agora/internal/app"
	"github.com/dropDatabas3/agora/internal/config"
	"github.com/dropDatabas3/agora/internal/observability/logger"
)

func main() {
	// .env es opcional, las vars de sistema tienen prioridad
	_ = godotenv.Load()

	var cfgPath string

	root := &cobra.Command{
		Use:   "agora",
		Short: "Backend de channels y topics con cache distribuido",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "ruta al config.yaml (vacío = defaults + env)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP y el consumer de invalidación",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			logger.Init(logger.Config{
				Env:         cfg.App.Env,
				ServiceName: "agora",
				Version:     app.Version,
			})
			defer logger.Sync()

			ctx := context.Background()
			container, err := app.Build(ctx, cfg)
			if err != nil {
				return fmt.Errorf("wiring: %w", err)
			}
			return container.Run(ctx)
		},
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Carga datos de demo en el store (channels, topics, usuarios)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			logger.Init(logger.Config{
				Env:         cfg.App.Env,
				ServiceName: "agora-seed",
				Version:     app.Version,
			})
			defer logger.Sync()

			ctx := context.Background()
			container, err := app.Build(ctx, cfg)
			if err != nil {
				return fmt.Errorf("wiring: %w", err)
			}
			defer container.Close(ctx)
			return runSeed(ctx, container)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Muestra la versión del binario",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(app.Version)
		},
	}

	root.AddCommand(serveCmd, seedCmd, versionCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
