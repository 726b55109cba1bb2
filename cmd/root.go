// Package cmd implements the command-line interface for redgrab.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/redgrab-cli/redgrab/color"
	"github.com/redgrab-cli/redgrab/constant"
	"github.com/redgrab-cli/redgrab/key"
	"github.com/redgrab-cli/redgrab/log"
	"github.com/redgrab-cli/redgrab/style"
	"github.com/redgrab-cli/redgrab/util"
	"github.com/redgrab-cli/redgrab/version"
	"github.com/redgrab-cli/redgrab/where"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("folder", "F", "", "Override the downloads folder pattern")
	lo.Must0(viper.BindPFlag(key.DownloadsFolder, rootCmd.PersistentFlags().Lookup("folder")))

	rootCmd.PersistentFlags().Bool("overlay-images", false, "Burn post titles into downloaded images")
	lo.Must0(viper.BindPFlag(key.OverlayImages, rootCmd.PersistentFlags().Lookup("overlay-images")))

	rootCmd.PersistentFlags().Bool("overlay-videos", false, "Burn post titles into downloaded videos")
	lo.Must0(viper.BindPFlag(key.OverlayVideos, rootCmd.PersistentFlags().Lookup("overlay-videos")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Initialize cleanup of localized temporary files on application startup.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd defines the entry point for the redgrab application.
var rootCmd = &cobra.Command{
	Use:   constant.Redgrab,
	Short: "A command-line media downloader for reddit feeds",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - A command-line media downloader for reddit feeds"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		lo.Must0(cmd.Help())
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", style.Fg(color.HiRed)("✗"), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
