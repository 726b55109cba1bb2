// Package cmd implements the command-line interface for redgrab.
package cmd

import (
	"github.com/redgrab-cli/redgrab/bridge"
	"github.com/redgrab-cli/redgrab/download"
	"github.com/redgrab-cli/redgrab/key"
	"github.com/redgrab-cli/redgrab/network"
	"github.com/redgrab-cli/redgrab/scrape"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "Listen address for the bridge server")
}

// serveCmd exposes the pipeline as the bridge HTTP surface.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scan and download pipeline over HTTP",
	Long: `Start the message bridge: POST /api/scan submits feed markup for media
discovery, POST /api/download downloads resolved media, GET /api/status
reports current activity.`,
	Run: func(cmd *cobra.Command, args []string) {
		if address := lo.Must(cmd.Flags().GetString("address")); address != "" {
			viper.Set(key.ServeAddress, address)
		}

		CheckDependencies()

		fetcher := network.NewBrowserFetcher()
		dispatcher := bridge.NewDispatcher(
			scrape.NewLocator(scrape.MarkersFromConfig(), fetcher),
			download.New(),
		)

		handleErr(bridge.NewHandler(dispatcher).Serve())
	},
}
