package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/will-x86/wordhound"
	"github.com/will-x86/wordhound/config"
	"github.com/will-x86/wordhound/fetchers"
	"github.com/will-x86/wordhound/logger"
	"github.com/will-x86/wordhound/report"
	"github.com/will-x86/wordhound/storage"
)

// NewRunCmd returns the run subcommand.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Crawl from the given seeds until the frontier drains",
		Example: `  wordhound run --seed https://example.com --word secret --word token --domain example.com
  wordhound run -c wordhound.yml --store sqlite --report report.md`,
		RunE: runCrawl,
	}

	fl := cmd.Flags()
	fl.StringP("config", "c", "", "path to a YAML config file")
	fl.StringArray("seed", nil, "seed URL to start from (repeatable)")
	fl.StringArray("word", nil, "dictionary word to hunt for (repeatable)")
	fl.String("dictionary-file", "", "file with one dictionary word per line")
	fl.StringArray("domain", nil, "interesting domain the crawler may expand into (repeatable)")
	fl.StringArray("crawled", nil, "URL to treat as already crawled (repeatable)")
	fl.IntP("concurrency", "n", config.DefaultConcurrency, "number of workers")
	fl.Duration("timeout", time.Duration(config.DefaultRequestTimeoutMS)*time.Millisecond, "per-request timeout")
	fl.Int("min-word-length", config.DefaultMinWordLength, "skip tokens shorter than this many runes")
	fl.Int("log-every", config.DefaultLogEvery, "progress log interval in processed URLs")
	fl.Int("rate-limit", 0, "global fetches per second, 0 for unlimited")
	fl.String("fetcher", config.FetcherChrome, "fetch engine: chrome or http")
	fl.String("user-agent", "", "override the fetch user agent")
	fl.Bool("headful", false, "run the browser with a window")
	fl.Bool("screenshots", false, "capture pages whose text matches")
	fl.String("screenshot-dir", config.DefaultScreenshotDir, "directory for captures")
	fl.String("store", config.StoreNone, "persist results: none, memory, file, sqlite or libsql")
	fl.String("db-path", "", "sqlite database path (defaults under the XDG data dir)")
	fl.String("store-dir", "", "file store directory (defaults under the XDG data dir)")
	fl.String("libsql-url", "", "libsql database URL")
	fl.String("report", "", "write a markdown report to this path after the run")
	fl.String("excel", "", "write an xlsx export to this path after the run")
	fl.Bool("debug", false, "verbose logging")
	return cmd
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	words := cfg.Dictionary
	if cfg.DictionaryFile != "" {
		fileWords, err := readWordFile(cfg.DictionaryFile)
		if err != nil {
			return err
		}
		words = append(words, fileWords...)
	}

	level := "info"
	if cfg.Debug {
		level = "debug"
	}
	log := logger.NewZerologLoggerWithOptions(logger.ZerologOptions{
		UseColor:   true,
		Level:      level,
		TimeFormat: "15:04:05",
	})

	fetcher, err := buildFetcher(cfg, log)
	if err != nil {
		return err
	}

	store, err := buildStore(cfg)
	if err != nil {
		return err
	}

	// Results stream to stdout as JSON lines; the store tees them off for
	// the post-run report.
	sink := wordhound.NewJSONSink(os.Stdout)
	if store != nil {
		stdout := sink
		sink = func(res *wordhound.Result) {
			stdout(res)
			if err := store.Save(res); err != nil {
				log.Error("Failed to save result for %s: %v", res.URL, err)
			}
		}
	}

	c, err := wordhound.New(wordhound.Options{
		Fetcher:            fetcher,
		Dictionary:         words,
		InterestingDomains: cfg.InterestingDomains,
		SeedCrawled:        cfg.SeedCrawled,
		Sink:               sink,
		Logger:             log,
		Concurrency:        cfg.SimultaneousRequests,
		RequestTimeout:     cfg.RequestTimeout(),
		MinWordLength:      cfg.MinWordLength,
		LogEvery:           cfg.LogEvery,
		RateLimit:          cfg.RateLimit,
		Screenshots:        cfg.Screenshots,
		ScreenshotDir:      cfg.ScreenshotDir,
	})
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := c.Init(ctx); err != nil {
		return err
	}
	for _, seed := range cfg.Seeds {
		if err := c.Seed(seed); err != nil {
			return fmt.Errorf("failed to seed %s: %w", seed, err)
		}
	}

	started := time.Now()
	runErr := c.Run(ctx)
	finished := time.Now()

	if store != nil {
		if err := writeArtifacts(cfg, c, store, len(words), started, finished, log); err != nil {
			return err
		}
		if err := store.Close(); err != nil {
			log.Warn("Failed to close store: %v", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("crawl interrupted: %w", runErr)
	}
	st := c.Stats()
	log.Info("Done: %d processed, %d added", st.Processed, st.Added)
	return nil
}

// loadConfig reads the config file (explicit flag, then search path) and
// applies flag overrides. List flags append to file values.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	fl := cmd.Flags()

	path, _ := fl.GetString("config")
	if path == "" {
		path = config.Find()
	}
	var cfg *config.Config
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if v, _ := fl.GetStringArray("seed"); len(v) > 0 {
		cfg.Seeds = append(cfg.Seeds, v...)
	}
	if v, _ := fl.GetStringArray("word"); len(v) > 0 {
		cfg.Dictionary = append(cfg.Dictionary, v...)
	}
	if v, _ := fl.GetStringArray("domain"); len(v) > 0 {
		cfg.InterestingDomains = append(cfg.InterestingDomains, v...)
	}
	if v, _ := fl.GetStringArray("crawled"); len(v) > 0 {
		cfg.SeedCrawled = append(cfg.SeedCrawled, v...)
	}
	if fl.Changed("dictionary-file") {
		cfg.DictionaryFile, _ = fl.GetString("dictionary-file")
	}
	if fl.Changed("concurrency") {
		cfg.SimultaneousRequests, _ = fl.GetInt("concurrency")
	}
	if fl.Changed("timeout") {
		d, _ := fl.GetDuration("timeout")
		cfg.RequestTimeoutMS = int(d.Milliseconds())
	}
	if fl.Changed("min-word-length") {
		cfg.MinWordLength, _ = fl.GetInt("min-word-length")
	}
	if fl.Changed("log-every") {
		cfg.LogEvery, _ = fl.GetInt("log-every")
	}
	if fl.Changed("rate-limit") {
		cfg.RateLimit, _ = fl.GetInt("rate-limit")
	}
	if fl.Changed("fetcher") {
		cfg.Fetcher, _ = fl.GetString("fetcher")
	}
	if fl.Changed("user-agent") {
		cfg.UserAgent, _ = fl.GetString("user-agent")
	}
	if fl.Changed("headful") {
		cfg.Headful, _ = fl.GetBool("headful")
	}
	if fl.Changed("screenshots") {
		cfg.Screenshots, _ = fl.GetBool("screenshots")
	}
	if fl.Changed("screenshot-dir") {
		cfg.ScreenshotDir, _ = fl.GetString("screenshot-dir")
	}
	if fl.Changed("store") {
		cfg.Store, _ = fl.GetString("store")
	}
	if fl.Changed("db-path") {
		cfg.DBPath, _ = fl.GetString("db-path")
	}
	if fl.Changed("store-dir") {
		cfg.StoreDir, _ = fl.GetString("store-dir")
	}
	if fl.Changed("libsql-url") {
		cfg.LibSQLURL, _ = fl.GetString("libsql-url")
	}
	if fl.Changed("report") {
		cfg.ReportPath, _ = fl.GetString("report")
	}
	if fl.Changed("excel") {
		cfg.ExcelPath, _ = fl.GetString("excel")
	}
	if fl.Changed("debug") {
		cfg.Debug, _ = fl.GetBool("debug")
	}
	return cfg, nil
}

func buildFetcher(cfg *config.Config, log logger.Logger) (wordhound.Fetcher, error) {
	switch cfg.Fetcher {
	case config.FetcherHTTP:
		return fetchers.NewHTTPFetcher(fetchers.HTTPOptions{
			Logger:    log,
			Timeout:   cfg.RequestTimeout(),
			UserAgent: cfg.UserAgent,
		}), nil
	case config.FetcherChrome:
		return fetchers.NewChromeFetcher(fetchers.ChromeOptions{
			Logger:    log,
			Headful:   cfg.Headful,
			UserAgent: cfg.UserAgent,
		}), nil
	default:
		return nil, config.ErrUnknownFetcher
	}
}

// buildStore returns nil when nothing should be persisted. A report
// without a persistent store gets an implicit memory store.
func buildStore(cfg *config.Config) (storage.Store, error) {
	backend := cfg.Store
	if backend == "" {
		backend = config.StoreNone
	}
	if backend == config.StoreNone && (cfg.ReportPath != "" || cfg.ExcelPath != "") {
		backend = config.StoreMemory
	}

	switch backend {
	case config.StoreNone:
		return nil, nil
	case config.StoreMemory:
		return storage.NewMemoryStore(), nil
	case config.StoreFile:
		dir := cfg.StoreDir
		if dir == "" {
			dir = config.DefaultStoreDir()
		}
		return storage.NewFileStore(dir)
	case config.StoreSQLite:
		path := cfg.DBPath
		if path == "" {
			path = config.DefaultDBPath()
		}
		return storage.NewSQLiteStore(storage.SQLiteOptions{DBPath: path})
	case config.StoreLibSQL:
		return storage.NewLibSQLStore(storage.LibSQLOptions{URL: cfg.LibSQLURL})
	default:
		return nil, config.ErrUnknownStore
	}
}

func writeArtifacts(cfg *config.Config, c *wordhound.Crawler, store storage.Store, words int, started, finished time.Time, log logger.Logger) error {
	if cfg.ReportPath == "" && cfg.ExcelPath == "" {
		return nil
	}

	results, err := store.Results()
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}
	st := c.Stats()
	sum := report.Summary{
		RunID:     c.RunID(),
		Seeds:     cfg.Seeds,
		Words:     words,
		Domains:   cfg.InterestingDomains,
		Added:     st.Added,
		Processed: st.Processed,
		Started:   started,
		Finished:  finished,
	}

	if cfg.ReportPath != "" {
		f, err := os.Create(cfg.ReportPath)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		if err := report.WriteMarkdown(f, sum, results); err != nil {
			f.Close()
			return fmt.Errorf("failed to write report: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Info("Report written to %s", cfg.ReportPath)
	}
	if cfg.ExcelPath != "" {
		if err := report.WriteExcel(cfg.ExcelPath, sum, results); err != nil {
			return err
		}
		log.Info("Excel export written to %s", cfg.ExcelPath)
	}
	return nil
}

func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary file: %w", err)
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		words = append(words, w)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary file: %w", err)
	}
	return words, nil
}
