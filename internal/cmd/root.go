// Package cmd provides the command-line interface for linksift.
// It handles flag parsing, configuration loading, and running the
// admission filter over candidate URLs or saved page files.
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"linksift/internal/config"
	"linksift/internal/logging"
	"linksift/internal/policy"
	"linksift/internal/scraper"
	"linksift/internal/stats"
	"linksift/internal/storage"
)

var (
	cfgFile   string
	version   string
	buildTime string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "linksift [URLs...]",
	Short: "Link extraction and URL admission filtering for web crawlers",
	Long: `Linksift decides which URLs discovered during a crawl are worth
visiting. It rejects off-domain URLs, non-HTML resources, and crawler
traps, and accumulates crawl statistics with periodic checkpoints.

Candidate URLs are read from arguments, --input, or stdin; admitted
URLs are printed one per line. With --page/--page-url, saved fetched
pages are scraped and their admitted outbound links printed instead.`,
	Args: cobra.ArbitraryArgs,
	RunE: runFilter,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets version information for the CLI
func SetVersionInfo(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./linksift.yml)")

	rootCmd.Flags().Bool("show-config", false, "Display current configuration in YAML format and exit")

	// Input selection
	rootCmd.Flags().StringP("input", "i", "", "File of candidate URLs, one per line (default stdin)")
	rootCmd.Flags().StringSlice("page", []string{}, "Saved HTML page file to scrape (repeatable)")
	rootCmd.Flags().StringSlice("page-url", []string{}, "URL the matching --page was fetched from (repeatable)")

	// Admission policy flags
	rootCmd.Flags().StringSlice("allowed-domains", nil, "Root domains permitted for crawling")
	rootCmd.Flags().Int("max-path-depth", 15, "Maximum non-empty path segments")
	rootCmd.Flags().Int("max-query-params", 5, "Maximum query parameters")
	rootCmd.Flags().Int("max-url-length", 300, "Maximum URL length in characters")
	rootCmd.Flags().Int("pattern-ceiling", 100, "Sightings of a path pattern before rejection")

	// Extraction and stats flags
	rootCmd.Flags().Int64("max-body-size", 10<<20, "Skip response bodies above this many bytes")
	rootCmd.Flags().Int("min-page-tokens", 25, "Pages with fewer tokens record no stats")
	rootCmd.Flags().Int("checkpoint-interval", 100, "Checkpoint stats every N unique pages")
	rootCmd.Flags().String("stats-file", "./crawl_stats.json", "Path of the JSON stats snapshot")
	rootCmd.Flags().StringP("database", "d", "./linksift.db", "SQLite checkpoint database (empty disables)")

	// Logging flags
	rootCmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.Flags().String("log-file", "", "Log file path (rotated by size)")

	bindFlags := []struct {
		viperKey string
		flagName string
	}{
		{"allowed_domains", "allowed-domains"},
		{"max_path_depth", "max-path-depth"},
		{"max_query_params", "max-query-params"},
		{"max_url_length", "max-url-length"},
		{"pattern_ceiling", "pattern-ceiling"},
		{"max_body_size", "max-body-size"},
		{"min_page_tokens", "min-page-tokens"},
		{"checkpoint_interval", "checkpoint-interval"},
		{"stats_path", "stats-file"},
		{"database_path", "database"},
		{"log_level", "log-level"},
		{"log_file", "log-file"},
	}

	for _, bind := range bindFlags {
		if err := viper.BindPFlag(bind.viperKey, rootCmd.Flags().Lookup(bind.flagName)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind flag %s: %v\n", bind.flagName, err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("linksift")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("LS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func showCurrentConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Configuration validation failed: %v\n", err)
	}

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}

	fmt.Printf("# Current linksift configuration\n")
	fmt.Printf("# Generated at: %s\n", time.Now().Format(time.RFC3339))
	fmt.Printf("# Config file search path: ./linksift.yml, env prefix: LS_\n\n")
	fmt.Print(string(yamlData))

	return nil
}

func runFilter(cmd *cobra.Command, args []string) error {
	showConfig, _ := cmd.Flags().GetBool("show-config")

	cfg := config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if showConfig {
		return showCurrentConfig(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logOpts := logging.DefaultOptions()
	logOpts.Level = viper.GetString("log_level")
	logOpts.FilePath = viper.GetString("log_file")
	logCloser, err := logging.Setup(logOpts)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	if logCloser != nil {
		defer func() { _ = logCloser.Close() }()
	}

	var store *storage.SQLiteStore
	if cfg.DatabasePath != "" {
		store, err = storage.NewSQLiteStore(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open checkpoint database: %w", err)
		}
		defer func() { _ = store.Close() }()
	}

	admitter, err := policy.NewAdmitter(cfg)
	if err != nil {
		return fmt.Errorf("invalid admission policy: %w", err)
	}

	// A resumed crawl keeps its memory of repeating path shapes.
	if store != nil {
		counts, err := store.LoadPatternCounts()
		if err != nil {
			slog.Warn("Could not restore pattern counters", "error", err)
		} else if len(counts) > 0 {
			admitter.Tracker().Import(counts)
			slog.Info("Restored pattern counters", "patterns", len(counts))
		}
	}

	var snapStore stats.Store
	if store != nil {
		snapStore = store
	}
	collector := stats.NewCollector(cfg, snapStore)
	defer collector.Close()

	sc := scraper.New(cfg, admitter, collector)

	pages, _ := cmd.Flags().GetStringSlice("page")
	pageURLs, _ := cmd.Flags().GetStringSlice("page-url")
	inputPath, _ := cmd.Flags().GetString("input")

	var runErr error
	if len(pages) > 0 {
		runErr = scrapePages(cmd, sc, pages, pageURLs)
	} else {
		runErr = filterURLs(cmd, admitter, args, inputPath)
	}

	if store != nil {
		if err := store.SavePatternCounts(admitter.Tracker().Export()); err != nil {
			slog.Error("Failed to persist pattern counters", "error", err)
		}
		if err := store.SetMeta("last_run_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
			slog.Error("Failed to record run metadata", "error", err)
		}
	}

	return runErr
}

// scrapePages runs the full scrape pipeline over saved page files
// concurrently and prints the admitted outbound links.
func scrapePages(cmd *cobra.Command, sc *scraper.Scraper, pages, pageURLs []string) error {
	if len(pageURLs) != len(pages) {
		return fmt.Errorf("got %d --page flags but %d --page-url flags", len(pages), len(pageURLs))
	}

	out := cmd.OutOrStdout()
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(4)

	for i := range pages {
		path, pageURL := pages[i], pageURLs[i]
		g.Go(func() error {
			body, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read page %s: %w", path, err)
			}

			resp := &scraper.Response{
				StatusCode:  200,
				Body:        body,
				ContentType: "text/html",
				FinalURL:    pageURL,
			}
			links := sc.Scrape(pageURL, resp)
			slog.Info("Scraped page", "page", path, "url", pageURL, "admitted", len(links))

			mu.Lock()
			for _, link := range links {
				fmt.Fprintln(out, link)
			}
			mu.Unlock()
			return nil
		})
	}

	return g.Wait()
}

// filterURLs runs candidate URLs through the admission pipeline and
// prints the admitted ones.
func filterURLs(cmd *cobra.Command, admitter *policy.Admitter, args []string, inputPath string) error {
	out := cmd.OutOrStdout()
	emit := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			return
		}
		if admitter.Admit(raw) {
			fmt.Fprintln(out, raw)
		}
	}

	if len(args) > 0 {
		for _, arg := range args {
			emit(arg)
		}
		return nil
	}

	var in io.Reader = cmd.InOrStdin()
	if inputPath != "" {
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		emit(scanner.Text())
	}
	return scanner.Err()
}
