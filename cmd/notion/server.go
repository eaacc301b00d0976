package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AlibekovAA/no-tion/internal/common/bootstrap"
	"github.com/AlibekovAA/no-tion/internal/common/config"
)

var (
	serverConfigPath string
	serverPort       int
	serverOpsPort    string
	serverWorkers    int
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the note server",
	Long: `Run the note server until SIGINT or SIGTERM.

Settings come from defaults, then the YAML file given by --config or
NOTES_CONFIG_FILE, then NOTES_* environment variables, then flags.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadServerConfig(cmd)
		if err != nil {
			return err
		}

		app, err := bootstrap.NewServerApp(cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		app.Log.Infof("configuration loaded: addr=%s ops=%q workers=%d queue=%d",
			cfg.Addr(), cfg.OpsAddr(), cfg.MaxWorkers, cfg.AcceptQueueSize)

		return app.Run(cmd.Context())
	},
}

func loadServerConfig(cmd *cobra.Command) (config.ServerConfig, error) {
	cfg, err := config.LoadServerConfig(serverConfigPath)
	if err != nil {
		return config.ServerConfig{}, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = serverPort
	}
	if flags.Changed("ops-port") {
		cfg.OpsPort = serverOpsPort
	}
	if flags.Changed("workers") {
		cfg.MaxWorkers = serverWorkers
	}

	if err := cfg.Validate(); err != nil {
		return config.ServerConfig{}, err
	}
	return cfg, nil
}

func init() {
	serverCmd.Flags().StringVar(&serverConfigPath, "config", "", "path to a YAML config file")
	serverCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "TCP port for the note protocol")
	serverCmd.Flags().StringVar(&serverOpsPort, "ops-port", "", "HTTP port for health and metrics, empty disables")
	serverCmd.Flags().IntVarP(&serverWorkers, "workers", "w", 0, "maximum number of concurrently served connections")
	rootCmd.AddCommand(serverCmd)
}
