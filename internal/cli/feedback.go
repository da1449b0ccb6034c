// internal/cli/feedback.go
package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/smartbook/scout/internal/ui"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <episode-id> <rating>",
	Short: "Rate a past scrape (1-5) to correct the learned value",
	Long: `Feedback blends a human rating into the value the policy learned for the
episode's state and strategy. Ratings arrive after the fact, so the update is
a corrective delta on top of the automatic reward already applied. Each
episode can be rated once.`,
	Args: cobra.ExactArgs(2),
	RunE: runFeedback,
}

func init() {
	rootCmd.AddCommand(feedbackCmd)
}

func runFeedback(cmd *cobra.Command, args []string) error {
	a := GetApp()

	rating, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("rating must be an integer 1-5, got %q", args[1])
	}

	entry, err := a.Agent.ApplyFeedback(args[0], rating)
	if err != nil {
		return err
	}

	fmt.Printf("%s rating %d applied to episode %s\n", ui.Success("✓"), rating, args[0])
	fmt.Printf("  %-10s %.3f\n", "Estimate", entry.Estimate)
	return nil
}
