package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/polyglot/internal"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "polyglot [input]",
		Short: "Concurrent AI translator for i18n documents",
		Long: `polyglot translates the string values of a JSON or YAML document into
several target languages through an AI translation provider.

Keys, nesting and key order are preserved. Strings that fail to translate
are marked with "[untranslated] " and listed in errors.json.

Examples:
  polyglot zh-CN.json -l en,ja,kr            # Write locales/en.json, ja.json, kr.json
  polyglot app.yaml -l de -o out             # YAML in, YAML out
  polyglot --batch inputs.txt -l en          # Translate several documents
  polyglot serve --addr :9000                # Run the HTTP API`,
		Args:         cobra.MaximumNArgs(1),
		Version:      internal.Version,
		SilenceUsage: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

// CreateServeCommand creates the serve subcommand. Its RunE is set by the
// caller.
func CreateServeCommand(flags *Flags) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the translation engine over HTTP",
		Long: `serve exposes the translation engine as an HTTP API:

  POST /v1/translate   {"document": {...}, "languages": ["en"], "source": "zh-CN"}
  GET  /v1/languages   supported languages and aliases
  GET  /healthz        liveness probe`,
		Args: cobra.NoArgs,
	}

	serveCmd.Flags().StringVar(&flags.ServerAddress, "addr", flags.ServerAddress, "Listen address")
	bind("server.address", serveCmd.Flags().Lookup("addr"))

	return serveCmd
}

// DefaultHistoryDB returns the default run history location
func DefaultHistoryDB() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "polyglot", "history.db")
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags, shared with subcommands
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.polyglot.yaml)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "Print retries and debug output")
	pf.StringVarP(&flags.Source, "source", "s", flags.Source, "Source language of the input document")
	pf.IntVarP(&flags.MaxWorkers, "workers", "w", flags.MaxWorkers, "Maximum concurrent provider calls per language")
	pf.IntVar(&flags.MaxRetries, "max-retries", flags.MaxRetries, "Attempts per string, including the first")
	pf.DurationVar(&flags.RetryDelay, "retry-delay", flags.RetryDelay, "Pause after the first failed attempt")
	pf.Float64Var(&flags.RetryMultiplier, "retry-multiplier", flags.RetryMultiplier, "Growth factor of the retry pause")
	pf.DurationVar(&flags.BatchDelay, "batch-delay", flags.BatchDelay, "Pause between waves of dispatched strings")
	pf.DurationVar(&flags.RequestTimeout, "timeout", flags.RequestTimeout, "Timeout of a single provider call (0 = none)")
	pf.Float64Var(&flags.RequestsPerSecond, "rps", flags.RequestsPerSecond, "Provider requests per second (0 = unlimited)")

	// Provider flags
	pf.StringVarP(&flags.Provider, "provider", "p", flags.Provider, "Translation provider: openai, gemini, claude or http")
	pf.StringVarP(&flags.Model, "model", "m", "", "Model name (default depends on the provider)")
	pf.StringVar(&flags.BaseURL, "base-url", "", "Override the provider endpoint")
	pf.StringVar(&flags.Fallback, "fallback", "", "Provider to use when the primary provider fails")
	pf.IntVar(&flags.BreakerMaxFailures, "breaker-failures", flags.BreakerMaxFailures, "Consecutive failures before a language's circuit opens (0 = off)")
	pf.DurationVar(&flags.BreakerTimeout, "breaker-timeout", flags.BreakerTimeout, "How long an open circuit rejects calls")

	// Local flags
	f := cmd.Flags()
	f.StringSliceVarP(&flags.Languages, "lang", "l", nil, "Target languages (comma separated or repeated)")
	f.StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Output directory")
	f.StringVarP(&flags.Format, "format", "f", "", "Output format: json or yaml (default: same as input)")
	f.StringVar(&flags.BatchFile, "batch", "", "Process input documents listed in file (one per line)")
	f.BoolVar(&flags.Archive, "archive", false, "Move the existing output directory to archive/ before writing")
	f.IntVar(&flags.History, "history", 0, "Print the last N runs and exit")
	f.StringVar(&flags.HistoryDB, "history-db", flags.HistoryDB, "Run history database (empty disables history)")
	f.BoolVar(&flags.ListModels, "list-models", false, "List available OpenAI models for the current API key")
	f.BoolVar(&flags.Strict, "strict", false, "Exit non-zero when any language is not fully translated")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	bind("translate.source", pf.Lookup("source"))
	bind("translate.max_workers", pf.Lookup("workers"))
	bind("translate.max_retries", pf.Lookup("max-retries"))
	bind("translate.retry_delay", pf.Lookup("retry-delay"))
	bind("translate.retry_multiplier", pf.Lookup("retry-multiplier"))
	bind("translate.batch_delay", pf.Lookup("batch-delay"))
	bind("translate.request_timeout", pf.Lookup("timeout"))
	bind("translate.requests_per_second", pf.Lookup("rps"))
	bind("provider.name", pf.Lookup("provider"))
	bind("provider.model", pf.Lookup("model"))
	bind("provider.base_url", pf.Lookup("base-url"))
	bind("provider.fallback", pf.Lookup("fallback"))
	bind("breaker.max_failures", pf.Lookup("breaker-failures"))
	bind("breaker.timeout", pf.Lookup("breaker-timeout"))

	f := cmd.Flags()
	bind("translate.languages", f.Lookup("lang"))
	bind("output.directory", f.Lookup("output"))
	bind("output.format", f.Lookup("format"))
	bind("history.database", f.Lookup("history-db"))
}

func bind(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	_ = viper.BindPFlag(key, flag)
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".polyglot" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".polyglot")
	}

	// Environment variables: POLYGLOT_TRANSLATE_MAX_WORKERS etc.
	viper.SetEnvPrefix("POLYGLOT")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
