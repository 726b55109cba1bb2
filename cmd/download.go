// Package cmd implements the command-line interface for redgrab.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/redgrab-cli/redgrab/color"
	"github.com/redgrab-cli/redgrab/download"
	"github.com/redgrab-cli/redgrab/style"
	"github.com/redgrab-cli/redgrab/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringP("kind", "k", "", "Force the media kind (video, image)")
	downloadCmd.Flags().StringP("subreddit", "s", "unknown", "Subreddit name used for folder and filename substitution")
	downloadCmd.Flags().StringP("title", "t", "", "Post title used for overlays")
}

// downloadCmd downloads media from already-resolved source urls.
var downloadCmd = &cobra.Command{
	Use:   "download [url...]",
	Short: "Download media from one or more resolved source urls",
	Long: `Download media directly from source urls. Adaptive manifests (.m3u8)
are assembled through ffmpeg; a "video,audio" manifest pair joins both
streams. Multiple image urls are treated as one gallery.`,
	Args:    cobra.MinimumNArgs(1),
	Example: "  redgrab download https://i.redd.it/example.jpg -s pics",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			kind      = lo.Must(cmd.Flags().GetString("kind"))
			subreddit = lo.Must(cmd.Flags().GetString("subreddit"))
			title     = lo.Must(cmd.Flags().GetString("title"))
		)

		if kind == "" {
			kind = inferKind(args)
		}

		if kind == "video" {
			CheckDependencies()
		}

		request := download.Request{
			URLs:      args,
			Subreddit: subreddit,
			Title:     title,
		}

		downloader := download.New()

		var saved []string
		var err error
		if kind == "video" {
			var location string
			location, err = downloader.Video(context.Background(), request)
			saved = []string{location}
		} else {
			saved, err = downloader.Images(context.Background(), request)
		}
		handleErr(err)

		fmt.Printf(
			"%s saved %s\n",
			style.Fg(color.Green)("✓"),
			util.Quantify(len(saved), "file", "files"),
		)
		for _, location := range saved {
			fmt.Println(style.Faint(location))
		}
	},
}

func inferKind(urls []string) string {
	first := urls[0]
	if strings.Contains(first, ".m3u8") || strings.Contains(first, ".mp4") {
		return "video"
	}
	return "image"
}
