package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"s3fetch/downloader"
	"s3fetch/internal"
	"s3fetch/utils"
)

var (
	bucket        string
	region        string
	endpoint      string
	objectKey     string
	credsPath     string
	concurrency   int
	downloadDir   string
	proxyURL      string
	quiet         bool
	debug         bool
	logLevel      string
	logFile       string
	config        *internal.DownloadConfig
)

var rootCmd = &cobra.Command{
	Use:     "s3fetch [OPTIONS]",
	Short:   "Concurrent segmented downloader for S3-compatible objects",
	Version: "v1.0.0",
	Long: `s3fetch partitions a remote object served by an S3-compatible HTTP API
into contiguous byte ranges, downloads each range concurrently into a
per-segment scratch file, tolerates transport failures via unbounded retry
with byte-accurate resumption, and finally concatenates the verified
segments into the target file.

Examples:
  s3fetch --bucket my-bucket --object-key path/to/file.bin
  s3fetch -b my-bucket -k path/to/file.bin -c 16 --download-dir ./downloads
  s3fetch -b my-bucket -k path/to/file.bin --credentials ./creds.txt --endpoint https://s3.example.com

Environment Variables:
  S3FETCH_BUCKET        Bucket name
  S3FETCH_REGION        Region (default ap-east-1)
  S3FETCH_ENDPOINT      S3-compatible endpoint URL
  S3FETCH_CONCURRENCY   Number of concurrent segment workers
  S3FETCH_DOWNLOAD_DIR  Directory scratch and final files are written to
  S3FETCH_LOG_LEVEL     Log level (debug, info, warn, error)
  S3FETCH_LOG_FILE      Log file name (default download_log_<timestamp>.txt in the download dir)
  S3FETCH_DEBUG         Enable debug logging (1/true)
  S3FETCH_QUIET         Suppress the progress display (1/true)`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfiguration(); err != nil {
			return fmt.Errorf("configuration error: %v", err)
		}

		if err := internal.InitLogger(config); err != nil {
			return fmt.Errorf("failed to initialize logger: %v", err)
		}

		internal.LogInfo("s3fetch starting up")
		internal.LogDebug("configuration loaded: bucket=%s concurrency=%d debug=%v quiet=%v",
			config.Bucket, config.Concurrency, config.EnableDebug, config.QuietMode)

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeDownload()
	},
}

func loadConfiguration() error {
	config = internal.DefaultConfig()
	config.LoadFromEnv()

	if bucket != "" {
		config.Bucket = bucket
	}
	if region != "" {
		config.Region = region
	}
	if endpoint != "" {
		config.Endpoint = endpoint
	}
	if objectKey != "" {
		config.ObjectKey = utils.NormalizeObjectKey(config.Bucket, objectKey)
	}
	if downloadDir != "" {
		config.DownloadDir = downloadDir
	}
	if rootCmd.Flags().Changed("concurrency") {
		config.Concurrency = concurrency
	}
	if debug {
		config.EnableDebug = true
		config.LogLevel = "debug"
	}
	if quiet {
		config.QuietMode = true
	}
	if logLevel != "" {
		config.LogLevel = logLevel
	}
	if logFile != "" {
		config.LogFileName = logFile
	}
	if credsPath != "" {
		config.Credentials = credsPath
	}

	return config.ValidateConfig()
}

func executeDownload() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		internal.LogInfo("received signal %v, cancelling download", sig)
		if !config.QuietMode {
			fmt.Fprintf(os.Stderr, "\nreceived %v, shutting down gracefully...\n", sig)
		}
		cancel()
	}()

	httpClient := utils.NewHTTPClientWithConfig(&utils.HTTPClientConfig{
		Timeout:     0,
		ProxyURL:    proxyURL,
		RetryConfig: utils.DefaultRetryConfig(),
	})

	var credsProvider internal.CredentialProvider
	if config.Credentials != "" {
		provider, err := internal.LoadCredentialsFromFile(config.Credentials)
		if err != nil {
			return fmt.Errorf("failed to load credentials: %w", err)
		}
		credsProvider = provider
	} else if provider, err := internal.LoadCredentialsFromEnv(); err == nil {
		credsProvider = provider
	}

	transport := downloader.NewHTTPTransport(httpClient, config.Endpoint, credsProvider)
	supervisor := downloader.NewSupervisor(transport)

	if !config.QuietMode {
		fmt.Printf("downloading s3://%s/%s\n", config.Bucket, config.ObjectKey)
	}

	summary, err := supervisor.Run(ctx, config)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			internal.LogInfo("download cancelled by user")
			if !config.QuietMode {
				fmt.Println("cancelled, progress preserved for resume")
			}
			return nil
		}
		internal.LogError("download failed: %v", err)
		return fmt.Errorf("download failed: %w", err)
	}

	internal.LogInfo("download completed: %s", summary.FinalPath)
	if !config.QuietMode {
		fmt.Printf("completed: %s (%s, %s/s avg, %d retries)\n",
			summary.FinalPath, utils.FormatBytes(summary.Size), utils.FormatBytes(int64(summary.AvgSpeed)), summary.TotalRetries)
	}
	return nil
}

func init() {
	config = internal.DefaultConfig()

	rootCmd.Flags().StringVarP(&bucket, "bucket", "b", "", "Bucket name (env: S3FETCH_BUCKET)")
	rootCmd.Flags().StringVarP(&region, "region", "r", "", fmt.Sprintf("Region (env: S3FETCH_REGION) (default %q)", config.Region))
	rootCmd.Flags().StringVarP(&endpoint, "endpoint", "e", "", "S3-compatible endpoint URL (env: S3FETCH_ENDPOINT)")
	rootCmd.Flags().StringVarP(&objectKey, "object-key", "k", "", "Object key, optionally bucket-prefixed")
	rootCmd.Flags().StringVar(&credsPath, "credentials", "", "Path to a credentials file (access_key=.../secret_key=...)")
	rootCmd.Flags().IntVarP(&concurrency, "concurrency", "c", config.Concurrency, fmt.Sprintf("Number of concurrent segment workers (env: S3FETCH_CONCURRENCY) (default %d)", config.Concurrency))
	rootCmd.Flags().StringVarP(&downloadDir, "download-dir", "d", "", "Directory scratch and final files are written to (env: S3FETCH_DOWNLOAD_DIR)")
	rootCmd.Flags().StringVar(&proxyURL, "proxy", "", "HTTP/SOCKS5 proxy URL")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress the progress display (env: S3FETCH_QUIET)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging (env: S3FETCH_DEBUG)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (env: S3FETCH_LOG_LEVEL)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Log file name, relative to the download dir unless absolute (env: S3FETCH_LOG_FILE)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
