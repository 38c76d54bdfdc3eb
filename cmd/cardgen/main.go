// Command cardgen generates printable profile card PDFs from the
// command line: one URL or a newline-delimited batch file in, one
// paginated document out.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/s4yuba/x-card-generator/internal/assembler"
	"github.com/s4yuba/x-card-generator/internal/batch"
	"github.com/s4yuba/x-card-generator/internal/browser"
	"github.com/s4yuba/x-card-generator/internal/cache"
	"github.com/s4yuba/x-card-generator/internal/compositor"
	"github.com/s4yuba/x-card-generator/internal/config"
	"github.com/s4yuba/x-card-generator/internal/extractor"
	"github.com/s4yuba/x-card-generator/internal/fetcher"
	"github.com/s4yuba/x-card-generator/internal/ratelimit"
	"github.com/s4yuba/x-card-generator/internal/render"
	"github.com/s4yuba/x-card-generator/internal/validator"
)

var (
	flagURL      string
	flagFile     string
	flagOut      string
	flagPageSize string
	flagColumns  int
	flagRows     int
	flagSpacing  float64
	flagDuplex   string
)

var rootCmd = &cobra.Command{
	Use:   "cardgen",
	Short: "cardgen — turn profile URLs into printable ID card PDFs",
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a card document from one URL or a URL list file",
	Long: `Generate scrapes each profile, renders its card and tiles the cards
onto pages.

Examples:
  cardgen generate -u https://x.com/someuser -o card.pdf
  cardgen generate -f urls.txt --columns 2 --rows 4 --duplex sequential`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&flagURL, "url", "u", "", "Single profile URL")
	generateCmd.Flags().StringVarP(&flagFile, "file", "f", "", "Newline-delimited URL list file")
	generateCmd.Flags().StringVarP(&flagOut, "out", "o", "", "Output PDF path (defaults to the derived filename)")
	generateCmd.Flags().StringVar(&flagPageSize, "page-size", "A4", "Page size: A4 or Letter")
	generateCmd.Flags().IntVar(&flagColumns, "columns", 0, "Cards per row (0 = fit)")
	generateCmd.Flags().IntVar(&flagRows, "rows", 0, "Card rows per page (0 = fit)")
	generateCmd.Flags().Float64Var(&flagSpacing, "spacing", 5, "Inter-card spacing in mm")
	generateCmd.Flags().StringVar(&flagDuplex, "duplex", "none", "Back sides: none, sequential or split")
}

func main() {
	godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	urls, err := collectURLs()
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.Default()

	b, err := browser.New(&browser.Options{
		Headless: cfg.Browser.Headless,
		Timeout:  cfg.Browser.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize browser: %w", err)
	}
	defer b.Close()

	asm := assembler.New(extractor.New(logger), assembler.Options{
		Timeout:      cfg.Scraper.PollTimeout,
		PollInterval: cfg.Scraper.PollInterval,
		GracePeriod:  cfg.Scraper.GracePeriod,
	}, logger)

	renderer := render.New(
		fetcher.New(cfg.Scraper.FetchTimeout, logger),
		func(payload string, size int) ([]byte, error) {
			return qrcode.Encode(payload, qrcode.Medium, size)
		},
		logger,
	)

	orchestrator := batch.New(
		batch.NewBrowserLoader(b),
		asm,
		renderer,
		ratelimit.NewAdaptiveRateLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax),
		cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.Capacity),
		nil,
		batch.Options{MaxBatchSize: cfg.Batch.MaxSize, Validator: validator.DefaultOptions()},
		logger,
	)

	tileCfg := tileConfigFromFlags()
	tmpl := render.DefaultTemplate()

	result, err := orchestrator.ProcessBatch(context.Background(), urls, tmpl, tileCfg.Duplex != compositor.DuplexNone)
	if result != nil {
		for _, f := range result.Failed {
			fmt.Fprintf(os.Stderr, "skipped %s: %s (%s)\n", f.URL, f.Reason, f.Code)
		}
	}
	if err != nil {
		return err
	}

	pdf, err := compositor.New(logger).Compose(result.Succeeded, tileCfg, compositor.NewPDFWriter(tileCfg.PageSize))
	if err != nil {
		return err
	}

	out := flagOut
	if out == "" {
		out = compositor.DocumentFilename(result.Succeeded)
	}
	if err := os.WriteFile(out, pdf, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	fmt.Printf("wrote %s (%d cards, %d skipped)\n", out, result.SucceededCount(), result.FailedCount())
	return nil
}

func collectURLs() ([]string, error) {
	switch {
	case flagURL != "" && flagFile != "":
		return nil, fmt.Errorf("use either --url or --file, not both")
	case flagURL != "":
		return []string{flagURL}, nil
	case flagFile != "":
		f, err := os.Open(flagFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", flagFile, err)
		}
		defer f.Close()

		var urls []string
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" && !strings.HasPrefix(line, "#") {
				urls = append(urls, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", flagFile, err)
		}
		return urls, nil
	default:
		return nil, fmt.Errorf("either --url or --file is required")
	}
}

func tileConfigFromFlags() compositor.TileConfig {
	cfg := compositor.DefaultTileConfig()
	if flagPageSize == string(compositor.PageLetter) {
		cfg.PageSize = compositor.PageLetter
	}
	cfg.Columns = flagColumns
	cfg.Rows = flagRows
	if flagSpacing > 0 {
		cfg.Spacing = flagSpacing
	}
	switch flagDuplex {
	case "sequential":
		cfg.Duplex = compositor.DuplexSequential
	case "split":
		cfg.Duplex = compositor.DuplexSplit
	}
	return cfg
}
