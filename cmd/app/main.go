package main

import (
	"encoding/json"
	"fmt"
	"os"

	"Edelweiss/internal/di"
	"Edelweiss/pkg/config"

	"github.com/spf13/cobra"
)

var (
	version    = "2.0"
	configPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "edelweiss",
		Short: "Edelweiss Intelligence API",
		Long: `edelweiss serves next-close stock forecasts with market analytics
over HTTP (POST /predict) and from the command line.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "config file path")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(predictCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	// Wire DI: model and scaler load here; any failure aborts startup
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	defer cleanup()

	return app.Run(cmd.Context())
}

func predictCmd() *cobra.Command {
	var lookback int
	cmd := &cobra.Command{
		Use:   "predict SYMBOL",
		Short: "Run one prediction and print the JSON result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithEnv(configPath)
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			// keep stdout clean for the JSON result
			cfg.Logging.Output = "stderr"

			predictor, cleanup, err := di.InitializePredictor(cfg)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			defer cleanup()

			res, err := predictor.Predict(cmd.Context(), args[0], lookback)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().IntVarP(&lookback, "lookback", "l", 0, "window length (default: api.default_lookback)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "edelweiss version %s\n", version)
		},
	}
}
