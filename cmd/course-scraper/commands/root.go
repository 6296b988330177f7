package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	targetURL  string
	count      int
	outPath    string
)

var rootCmd = &cobra.Command{
	Use:   "course-scraper [--config path] [--url URL] [--count N] [--out path]",
	Short: "course-scraper collects paid courses from a listing into CSV datasets.",
	Long: "course-scraper drives a headless browser through a course listing, " +
		"extracts each paid course with its category and cover image, and writes " +
		"courses and categories to ';'-delimited CSV files.",
	SilenceUsage: true,
	RunE:         runScrape,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "configs/config.yaml", "Path to the YAML config.")
	rootCmd.Flags().StringVar(&targetURL, "url", "", "Listing URL; replaces the configured targets.")
	rootCmd.Flags().IntVar(&count, "count", 0, "Number of courses to collect from --url.")
	rootCmd.Flags().StringVar(&outPath, "out", "", "Courses CSV path; overrides output.courses_csv.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
