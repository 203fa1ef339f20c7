package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/parkscout/parkscout/internal/build"
	"github.com/parkscout/parkscout/internal/cache"
	"github.com/parkscout/parkscout/internal/config"
	"github.com/parkscout/parkscout/internal/directory"
	"github.com/parkscout/parkscout/internal/extractor"
	"github.com/parkscout/parkscout/internal/fetcher"
	"github.com/parkscout/parkscout/internal/metadata"
	"github.com/parkscout/parkscout/internal/places"
	"github.com/parkscout/parkscout/internal/sites"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile       string
	cacheFile     string
	concurrency   int
	timeout       time.Duration
	userAgent     string
	searchRadius  int
	maxMatches    int
	parksBaseURL  string
	searchBaseURL string
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "parkscout",
	Short: "Browse national park sites and nearby places from the terminal.",
	Long: `parkscout is an interactive CLI that looks up the national park
sites of a U.S. state and the places near each site.

Every page and API response is cached in a single JSON file, so repeated
lookups are answered locally. The nearby-places lookup needs an API key,
read from the PARKSCOUT_API_KEY environment variable or a non-versioned
secrets.yaml file.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runShell(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", eris.ToString(err, verbose))
			os.Exit(1)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the parkscout version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("parkscout %s (built %s)\n", build.FullVersion(), build.BuildTime)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringVar(&cacheFile, "cache-file", "", "path of the JSON cache file")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "number of site detail pages fetched concurrently (1 for sequential)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().IntVar(&searchRadius, "radius", 0, "search radius in miles for nearby places")
	rootCmd.PersistentFlags().IntVar(&maxMatches, "max-matches", 0, "maximum number of nearby places returned")
	rootCmd.PersistentFlags().StringVar(&parksBaseURL, "base-url", "", "base URL of the park service site")
	rootCmd.PersistentFlags().StringVar(&searchBaseURL, "search-url", "", "base URL of the radius search API")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log fetch and cache metadata to stderr")

	rootCmd.AddCommand(versionCmd)
}

// runShell assembles the pipeline from configuration and hands control to
// the interactive session.
func runShell(cmd *cobra.Command) error {
	cfg, err := InitConfigWithError()
	if err != nil {
		return eris.Wrap(err, "failed to initialize configuration")
	}

	apiKey, err := config.LoadAPIKey()
	if err != nil {
		return eris.Wrap(err, "failed to load the radius search API key")
	}

	sink, flush, err := newMetadataSink(verbose)
	if err != nil {
		return eris.Wrap(err, "failed to initialize the metadata recorder")
	}
	defer flush()

	store := cache.Open(cfg.CacheFile(), sink)
	pageFetcher := fetcher.NewPageFetcher(sink, cfg.Timeout())
	domExtractor := extractor.NewDomExtractor(sink)

	resolver := directory.NewResolver(store, &pageFetcher, domExtractor, cfg)
	detail := sites.NewDetailFetcher(store, &pageFetcher, domExtractor, cfg)
	lister := sites.NewListFetcher(store, &pageFetcher, domExtractor, &detail, cfg)
	nearby := places.NewClient(store, &pageFetcher, cfg, apiKey, sink)

	shell := NewShell(&resolver, &lister, &nearby, cmd.InOrStdin(), cmd.OutOrStdout())
	if err := shell.Run(cmd.Context()); err != nil {
		return eris.Wrap(err, "interactive session failed")
	}
	return nil
}

// newMetadataSink picks the sink backing: a zap logger when verbose, a
// no-op otherwise. The returned func flushes buffered log entries.
func newMetadataSink(verbose bool) (metadata.MetadataSink, func(), error) {
	if !verbose {
		return &metadata.NoopSink{}, func() {}, nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, err
	}
	recorder := metadata.NewZapRecorder(logger)
	return &recorder, func() { _ = logger.Sync() }, nil
}

// InitConfig builds the effective Config, exiting on error.
func InitConfig() config.Config {
	cfg, err := InitConfigWithError()
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitConfigWithError builds the effective Config from the config file when
// one is named, otherwise from defaults overridden by CLI flags.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	configBuilder := config.WithDefault()

	if cacheFile != "" {
		configBuilder = configBuilder.WithCacheFile(cacheFile)
	}

	if concurrency > 0 {
		configBuilder = configBuilder.WithConcurrency(concurrency)
	}

	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if searchRadius > 0 {
		configBuilder = configBuilder.WithSearchRadius(searchRadius)
	}

	if maxMatches > 0 {
		configBuilder = configBuilder.WithMaxMatches(maxMatches)
	}

	if parksBaseURL != "" {
		configBuilder = configBuilder.WithParksBaseURL(parksBaseURL)
	}

	if searchBaseURL != "" {
		configBuilder = configBuilder.WithSearchBaseURL(searchBaseURL)
	}

	return configBuilder.Build()
}

func ResetFlags() {
	cfgFile = ""
	cacheFile = ""
	concurrency = 0
	timeout = 0
	userAgent = ""
	searchRadius = 0
	maxMatches = 0
	parksBaseURL = ""
	searchBaseURL = ""
	verbose = false
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetCacheFileForTest(path string) {
	cacheFile = path
}

func SetConcurrencyForTest(conc int) {
	concurrency = conc
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetSearchRadiusForTest(radius int) {
	searchRadius = radius
}

func SetMaxMatchesForTest(max int) {
	maxMatches = max
}

func SetParksBaseURLForTest(baseURL string) {
	parksBaseURL = baseURL
}

func SetSearchBaseURLForTest(baseURL string) {
	searchBaseURL = baseURL
}
