// Package cmd implements the command-line interface for redgrab.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/redgrab-cli/redgrab/batch"
	"github.com/redgrab-cli/redgrab/color"
	"github.com/redgrab-cli/redgrab/download"
	"github.com/redgrab-cli/redgrab/key"
	"github.com/redgrab-cli/redgrab/network"
	"github.com/redgrab-cli/redgrab/scrape"
	"github.com/redgrab-cli/redgrab/style"
	"github.com/redgrab-cli/redgrab/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringP("file", "f", "", "Scrape a saved page file instead of fetching a url")
	scrapeCmd.Flags().String("page-url", "", "Page url used for subreddit extraction with --file")
	scrapeCmd.Flags().IntP("delay", "d", 0, "Override the delay between post downloads (milliseconds)")
}

// scrapeCmd runs the batch scraper over a feed.
var scrapeCmd = &cobra.Command{
	Use:   "scrape [url]",
	Short: "Batch-download every unprocessed media post in a feed",
	Long: `Scan a feed's markup for media posts, skip everything the ledger has
already seen, and download the rest with a fixed delay between posts.
Scanning repeats until the feed stops yielding new posts.`,
	Args:    cobra.MaximumNArgs(1),
	Example: "  redgrab scrape https://www.reddit.com/r/EarthPorn/",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			file    = lo.Must(cmd.Flags().GetString("file"))
			pageURL = lo.Must(cmd.Flags().GetString("page-url"))
		)

		if cmd.Flags().Changed("delay") {
			viper.Set(key.ScrapePostDelay, lo.Must(cmd.Flags().GetInt("delay")))
		}

		fetcher := network.NewBrowserFetcher()

		var source batch.PageSource
		switch {
		case file != "":
			source = batch.NewFileSource(file, pageURL)
		case len(args) == 1:
			source = batch.NewURLSource(fetcher, args[0])
		default:
			handleErr(fmt.Errorf("either a feed url argument or --file is required"))
		}

		CheckDependencies()

		scraper := batch.New(
			scrape.NewLocator(scrape.MarkersFromConfig(), fetcher),
			download.New(),
			source,
		)

		scraper.OnState(func(state batch.State) {
			fmt.Println(style.Faint(util.Capitalize(string(state))))
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		report, err := scraper.Run(ctx)
		printReport(report)
		if err != nil && ctx.Err() == nil {
			handleErr(err)
		}
	},
}

func printReport(report batch.Report) {
	fmt.Printf(
		"%s downloaded %s over %s\n",
		style.Fg(color.Green)("✓"),
		util.Quantify(report.Downloaded, "post", "posts"),
		util.Quantify(report.Scans, "scan", "scans"),
	)

	if report.Skipped > 0 {
		fmt.Println(style.Faint(fmt.Sprintf("skipped %d already in the ledger", report.Skipped)))
	}

	for _, item := range report.Items {
		if item.Error != "" {
			fmt.Printf("%s %s: %s\n", style.Fg(color.HiRed)("✗"), item.PostID, item.Error)
		}
	}
}
