package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/conformia/internal/model"
)

// Version is set at build time with -ldflags
var Version = "dev"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "conformia",
	Short: "Conformia - document conformance checker for DOCX and PDF",
	Long: `Conformia compares a candidate document against a template and reports
every structural deviation: missing header or footer, divergent text,
paragraph and run formatting, tables, the main logo and required or
forbidden words.

Each issue carries a severity (critical, major, minor, info) and a
category, so a review can focus on what matters and CI can gate on it.

Conformia reads structure, not meaning: it never judges what the
document says.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(viper.GetBool("output.verbose"))
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Conformia.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "conformia %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	defaults := model.DefaultConfig()

	// Global flags
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.conformia/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Comparison options
	flags.String("rigor", string(defaults.Options.RigorLevel), "rigor level (light, standard, strict)")
	flags.String("image-sensitivity", string(defaults.Options.ImageSensitivity), "image sensitivity (low, medium, high)")
	flags.Float64("font-size-tolerance", defaults.Options.FontSizeTolerance, "font size tolerance in points")
	flags.Float64("image-size-tolerance", defaults.Options.ImageSizeTolerance, "logo width tolerance in percent")
	flags.Bool("ignore-case", defaults.Options.IgnoreCase, "ignore letter case in text comparison")
	flags.Bool("ignore-extra-spaces", defaults.Options.IgnoreExtraSpaces, "collapse runs of whitespace")
	flags.Bool("ignore-line-breaks", defaults.Options.IgnoreLineBreaks, "treat line breaks as spaces")
	flags.Bool("ignore-font", defaults.Options.IgnoreFontDifferences, "ignore run formatting differences (bold, italic, underline, size, color, font family)")
	flags.StringSlice("require", nil, "word that must appear in the document (repeatable)")
	flags.StringSlice("forbid", nil, "word that must not appear in the document (repeatable)")

	// Inputs and resources
	flags.Int64("max-size", defaults.Limits.MaxFileSize, "maximum input size in bytes")
	flags.Bool("no-cache", false, "disable the parsed-document cache")
	flags.String("cache-dir", defaults.Cache.DiskDir, "persist parsed documents in this directory")
	flags.Int("page-workers", defaults.Concurrency.PageWorkers, "PDF pages extracted in parallel")
	flags.Duration("http-timeout", defaults.HTTP.Timeout, "timeout for documents given as URLs")
	flags.String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	flags.String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	flags.Bool("respect-robots", defaults.HTTP.RespectRobots, "refuse remote documents disallowed by the host's robots.txt")

	// LLM narrative
	flags.String("llm-provider", "", "LLM provider for the optional narrative (openai, ollama, gemini)")
	flags.String("llm-model", "", "LLM model name")

	// Bind flags to viper
	bind := map[string]string{
		"output.verbose":                  "verbose",
		"options.rigor_level":             "rigor",
		"options.image_sensitivity":       "image-sensitivity",
		"options.font_size_tolerance":     "font-size-tolerance",
		"options.image_size_tolerance":    "image-size-tolerance",
		"options.ignore_case":             "ignore-case",
		"options.ignore_extra_spaces":     "ignore-extra-spaces",
		"options.ignore_line_breaks":      "ignore-line-breaks",
		"options.ignore_font_differences": "ignore-font",
		"options.required_words":          "require",
		"options.forbidden_words":         "forbid",
		"limits.max_file_size":            "max-size",
		"cache.disk_dir":                  "cache-dir",
		"concurrency.page_workers":        "page-workers",
		"http.timeout":                    "http-timeout",
		"http.http_proxy":                 "http-proxy",
		"http.https_proxy":                "https-proxy",
		"http.respect_robots":             "respect-robots",
		"llm.provider":                    "llm-provider",
		"llm.model":                       "llm-model",
	}
	for key, flag := range bind {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".conformia"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CONFORMIA_*
	viper.SetEnvPrefix("CONFORMIA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("llm.api_key", "CONFORMIA_LLM_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY")
	_ = viper.BindEnv("llm.base_url", "CONFORMIA_LLM_BASE_URL", "OLLAMA_BASE_URL")

	if err := viper.ReadInConfig(); err == nil && viper.GetBool("output.verbose") {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so AutomaticEnv can resolve it
func setDefaults(cfg *model.Config) {
	o := cfg.Options
	viper.SetDefault("options.ignore_extra_spaces", o.IgnoreExtraSpaces)
	viper.SetDefault("options.ignore_line_breaks", o.IgnoreLineBreaks)
	viper.SetDefault("options.ignore_case", o.IgnoreCase)
	viper.SetDefault("options.ignore_font_differences", o.IgnoreFontDifferences)
	viper.SetDefault("options.rigor_level", string(o.RigorLevel))
	viper.SetDefault("options.image_sensitivity", string(o.ImageSensitivity))
	viper.SetDefault("options.font_size_tolerance", o.FontSizeTolerance)
	viper.SetDefault("options.spacing_tolerance", o.SpacingTolerance)
	viper.SetDefault("options.image_size_tolerance", o.ImageSizeTolerance)
	viper.SetDefault("options.required_words", o.RequiredWords)
	viper.SetDefault("options.forbidden_words", o.ForbiddenWords)

	viper.SetDefault("limits.max_file_size", cfg.Limits.MaxFileSize)

	viper.SetDefault("cache.enabled", cfg.Cache.Enabled)
	viper.SetDefault("cache.memory_ttl", cfg.Cache.MemoryTTL)
	viper.SetDefault("cache.disk_dir", cfg.Cache.DiskDir)
	viper.SetDefault("cache.disk_ttl", cfg.Cache.DiskTTL)

	viper.SetDefault("http.timeout", cfg.HTTP.Timeout)
	viper.SetDefault("http.user_agent", cfg.HTTP.UserAgent)
	viper.SetDefault("http.http_proxy", cfg.HTTP.HTTPProxy)
	viper.SetDefault("http.https_proxy", cfg.HTTP.HTTPSProxy)
	viper.SetDefault("http.no_proxy", cfg.HTTP.NoProxy)
	viper.SetDefault("http.respect_robots", cfg.HTTP.RespectRobots)

	viper.SetDefault("concurrency.workers", cfg.Concurrency.Workers)
	viper.SetDefault("concurrency.page_workers", cfg.Concurrency.PageWorkers)

	viper.SetDefault("output.verbose", cfg.Output.Verbose)
	viper.SetDefault("output.include_footer", cfg.Output.IncludeFooter)

	viper.SetDefault("llm.provider", cfg.LLM.Provider)
	viper.SetDefault("llm.model", cfg.LLM.Model)
	viper.SetDefault("llm.timeout", cfg.LLM.Timeout)
	viper.SetDefault("llm.max_tokens", cfg.LLM.MaxTokens)
	viper.SetDefault("llm.requests_per_second", cfg.LLM.RequestsPerSecond)
	viper.SetDefault("llm.burst_size", cfg.LLM.BurstSize)
}

// loadConfig resolves the effective configuration: flags, then environment,
// then config file, then defaults
func loadConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}

	if err := cfg.Options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

// setupLogging installs the process-wide structured logger on stderr
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
