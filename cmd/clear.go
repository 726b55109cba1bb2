// Package cmd implements the command-line interface for redgrab.
package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/redgrab-cli/redgrab/color"
	"github.com/redgrab-cli/redgrab/ledger"
	"github.com/redgrab-cli/redgrab/style"
	"github.com/redgrab-cli/redgrab/util"
	"github.com/redgrab-cli/redgrab/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(clearCmd)

	clearCmd.Flags().BoolP("ledger", "l", false, "clear the downloaded-posts ledger")
	clearCmd.Flags().Bool("logs", false, "clear log files")
	clearCmd.Flags().Bool("temp", false, "clear temporary files")
	clearCmd.Flags().BoolP("force", "f", false, "skip the ledger confirmation prompt")
}

// clearCmd manages the cleanup of persisted and temporary application artifacts.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear persisted and temporary application artifacts",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			clearLedger = lo.Must(cmd.Flags().GetBool("ledger"))
			clearLogs   = lo.Must(cmd.Flags().GetBool("logs"))
			clearTemp   = lo.Must(cmd.Flags().GetBool("temp"))
			force       = lo.Must(cmd.Flags().GetBool("force"))
		)

		if !clearLedger && !clearLogs && !clearTemp {
			handleErr(fmt.Errorf("nothing to clear, see --help for targets"))
		}

		if clearLedger {
			if !force && !confirmLedgerClear() {
				fmt.Println(style.Faint("ledger left untouched"))
			} else {
				handleErr(ledger.Clear())
				fmt.Printf("%s cleared the ledger\n", style.Fg(color.Green)("✓"))
			}
		}

		if clearLogs {
			handleErr(util.Delete(where.Logs()))
			fmt.Printf("%s cleared logs\n", style.Fg(color.Green)("✓"))
		}

		if clearTemp {
			handleErr(util.Delete(where.Temp()))
			fmt.Printf("%s cleared temporary files\n", style.Fg(color.Green)("✓"))
		}
	},
}

// confirmLedgerClear asks before forgetting download history, since every
// previously downloaded post becomes a download candidate again.
func confirmLedgerClear() bool {
	ids, err := ledger.IDs()
	if err != nil {
		ids = nil
	}

	var confirmed bool
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Forget %s of download history?", util.Quantify(len(ids), "post", "posts")),
		Default: false,
	}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false
	}
	return confirmed
}
