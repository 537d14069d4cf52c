package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/moolen/poietic/internal/config"
	"github.com/moolen/poietic/internal/logging"
	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var (
	configPath        string
	logLevelFlags     []string
	dataDirFlag       string
	storePathFlag     string
	metamodelPathFlag string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "poietic",
	Short: "poietic - a versioned design graph for causal and flow-based models",
	Long: `poietic manages a design graph of typed objects (stocks, flows, causal
links and the like) under a metamodel schema, with snapshot-based
identity, undo/redo history, and a JSON persistent store.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if len(logLevelFlags) > 0 {
			c.LogLevelFlags = logLevelFlags
		}
		if dataDirFlag != "" {
			c.DataDir = dataDirFlag
		}
		if storePathFlag != "" {
			c.StorePath = storePathFlag
		}
		if metamodelPathFlag != "" {
			c.MetamodelPath = metamodelPathFlag
		}
		if err := setupLog(c.LogLevelFlags); err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringSliceVar(&logLevelFlags, "log-level", nil,
		"Log level for packages. Use 'default=level' for default, or 'package.name=level' for per-package.\n"+
			"Examples: --log-level debug (all), --log-level ident=debug --log-level graph=warn")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Directory holding the design store and metamodel (overrides config)")
	rootCmd.PersistentFlags().StringVar(&storePathFlag, "store", "", "Path to the design JSON store (overrides config)")
	rootCmd.PersistentFlags().StringVar(&metamodelPathFlag, "metamodel", "", "Path to the YAML metamodel definition (overrides config)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(framesCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(redoCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(canConnectCmd)
	rootCmd.AddCommand(serveMetricsCmd)
}

// HandleError prints err and exits with status 1.
func HandleError(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		os.Exit(1)
	}
}

// setupLog initializes the logging system from parsed log level flags.
func setupLog(flags []string) error {
	defaultLevel, packageLevels, err := parseLogLevelFlags(flags)
	if err != nil {
		return err
	}
	return logging.Initialize(defaultLevel, packageLevels)
}

// parseLogLevelFlags parses --log-level flags and LOG_LEVEL_* environment
// variables. CLI flags take precedence over environment variables.
//
// CLI format: ["debug"], ["default=info", "graph=debug"], or ["info"].
// Env vars: LOG_LEVEL_GRAPH=debug (package name uppercased, dots to
// underscores).
func parseLogLevelFlags(flags []string) (string, map[string]string, error) {
	result := make(map[string]string)

	for _, envPair := range os.Environ() {
		if strings.HasPrefix(envPair, "LOG_LEVEL_") {
			parts := strings.SplitN(envPair, "=", 2)
			if len(parts) != 2 {
				continue
			}
			result[convertEnvKeyToPackageName(parts[0])] = parts[1]
		}
	}

	for _, flag := range flags {
		if !strings.Contains(flag, "=") {
			result["default"] = flag
			continue
		}
		parts := strings.SplitN(flag, "=", 2)
		if len(parts) == 2 {
			result[parts[0]] = parts[1]
		}
	}

	defaultLevel := "info"
	if level, exists := result["default"]; exists {
		defaultLevel = level
		delete(result, "default")
	}

	if err := validateLogLevel(defaultLevel); err != nil {
		return "", nil, err
	}
	for pkg, level := range result {
		if err := validateLogLevel(level); err != nil {
			return "", nil, fmt.Errorf("invalid log level for package %q: %w", pkg, err)
		}
	}

	return defaultLevel, result, nil
}

func convertEnvKeyToPackageName(envKey string) string {
	name := strings.TrimPrefix(envKey, "LOG_LEVEL_")
	return strings.ToLower(strings.ReplaceAll(name, "_", "."))
}

func validateLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error", "fatal":
		return nil
	default:
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error, fatal)", level)
	}
}
