package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/turtacn/obsdemo/internal/app"
	"github.com/turtacn/obsdemo/internal/config"
	"github.com/turtacn/obsdemo/pkg/constants"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = constants.ServiceVersion

// serveFlags holds the flags shared by the root and serve commands.
type serveFlags struct {
	configPath string
	envFile    string
}

// flagBindings maps command-line flags onto config keys. Bound flags only
// take effect when set explicitly, so file and env values still apply.
var flagBindings = map[string]string{
	"host":        "server.host",
	"port":        "server.port",
	"environment": "server.environment",
	"pprof":       "server.pprof_enabled",
	"log-level":   "log.level",
	"log-format":  "log.format",
	"log-file":    "log.file_path",
	"tracing":     "tracing.enabled",
}

func newRootCmd() *cobra.Command {
	f := &serveFlags{}

	rootCmd := &cobra.Command{
		Use:   constants.ServiceName,
		Short: "An instrumented HTTP demo service",
		Long: `obsdemo serves a handful of demo JSON endpoints and instruments every
request with Prometheus metrics, structured rotating logs and optional
OpenTelemetry traces. Running it without a subcommand starts the server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, f)
		},
	}
	addServeFlags(rootCmd, f)

	serveCmd := &cobra.Command{
		Use:          "serve",
		Short:        "Start the HTTP server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, f)
		},
	}
	addServeFlags(serveCmd, f)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", constants.ServiceName, version)
		},
	}

	rootCmd.AddCommand(serveCmd, versionCmd)
	return rootCmd
}

func addServeFlags(cmd *cobra.Command, f *serveFlags) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Path to config file (default: config.yaml in /etc/obsdemo or .)")
	cmd.Flags().StringVar(&f.envFile, "env-file", ".env", "Optional dotenv file loaded before the environment is read")
	cmd.Flags().String("host", "", "Bind address")
	cmd.Flags().IntP("port", "p", 0, "HTTP server port")
	cmd.Flags().String("environment", "", "Deployment environment reported by app_info")
	cmd.Flags().Bool("pprof", false, "Expose /debug/pprof routes")
	cmd.Flags().String("log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().String("log-format", "", "Log format (console, json)")
	cmd.Flags().String("log-file", "", "Rotating log file path")
	cmd.Flags().Bool("tracing", false, "Export traces to Jaeger")
}

// bindFlags returns a config option binding every changed flag.
func bindFlags(cmd *cobra.Command) config.Option {
	return func(v *viper.Viper) error {
		for name, key := range flagBindings {
			flag := cmd.Flags().Lookup(name)
			if flag == nil || !flag.Changed {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return fmt.Errorf("failed to bind flag %q: %w", name, err)
			}
		}
		return nil
	}
}

func loadConfig(cmd *cobra.Command, f *serveFlags) (*config.Config, error) {
	if err := config.LoadEnvFile(f.envFile); err != nil {
		return nil, err
	}
	return config.LoadConfig(f.configPath, bindFlags(cmd))
}

func runServe(cmd *cobra.Command, f *serveFlags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	application, err := app.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := application.Run(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := application.Close(closeCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
