// Command admission runs the admission lifecycle engine: the ops server,
// event handlers and scheduled jobs (serve), schema migrations (migrate),
// read-only diagnostics (inspect) and one-off job runs (jobs).
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/uclouvain/admission-core/config"
	"github.com/uclouvain/admission-core/pkg/logger"
)

// v carries defaults, the environment and the bound persistent flags.
var v = config.New()

var rootCmd = &cobra.Command{
	Use:   "admission",
	Short: "Admission proposition lifecycle engine",
	Long: `admission drives doctoral and general admission propositions from
creation to decision: supervision signatures, documents, checklist,
confirmation exam, training activities and jury.

Configuration is read from defaults, an optional admission.yaml and
ADMISSION_* environment variables (e.g. ADMISSION_DATABASE_DRIVER=postgres).
Flags override all of them.`,
	SilenceUsage: true,
}

func main() {
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addPersistentFlags() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "path to a YAML config file")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("database-driver", config.DriverMemory, "storage driver (memory, postgres)")
	flags.String("database-url", "", "PostgreSQL connection URL")
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = v.BindPFlag("database.driver", flags.Lookup("database-driver"))
	_ = v.BindPFlag("database.url", flags.Lookup("database-url"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(inspectCmd())
	rootCmd.AddCommand(jobsCmd())
}

// loadConfig reads the configuration and installs the process logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(v, path)
	if err != nil {
		return nil, nil, err
	}
	log := logger.Setup(logger.Options{
		Output:  os.Stderr,
		Level:   logger.ParseLevel(cfg.Log.Level),
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	})
	return cfg, log, nil
}
