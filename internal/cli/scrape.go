// internal/cli/scrape.go
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartbook/scout/internal/ui"
	"github.com/smartbook/scout/pkg/models"
)

var (
	scrapeStrategy string
	scrapeOutput   string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Scrape a page, letting the policy pick the strategy",
	Example: `  # Let the learned policy choose
  scout scrape https://example.com/article

  # Force a specific strategy (the outcome still trains the policy)
  scout scrape --strategy static-fetch https://example.com/article

  # Save the extracted markdown
  scout scrape -o article.md https://example.com/article`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeStrategy, "strategy", "s", "",
		"Force a strategy (heavy-render, light-render, wait-render, static-fetch)")
	scrapeCmd.Flags().StringVarP(&scrapeOutput, "output", "o", "",
		"Write extracted content to file instead of stdout")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	a := GetApp()
	target := args[0]

	var result *models.ScrapeResult
	var err error
	if scrapeStrategy != "" {
		result, err = a.Agent.ScrapeWith(cmd.Context(), target, models.Action(scrapeStrategy))
	} else {
		result, err = a.Agent.Scrape(cmd.Context(), target)
	}
	if err != nil {
		return err
	}

	if scrapeOutput != "" {
		if err := os.WriteFile(scrapeOutput, []byte(result.Outcome.Content), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	if a.Config.JSONLog {
		// Content can be large; the JSON result keeps it inline for piping.
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	status := ui.Success("ok")
	if !result.Outcome.Success {
		status = ui.Error("failed")
	}
	fmt.Printf("%s %s\n", ui.Bold("Episode"), result.EpisodeID)
	fmt.Printf("  %-10s %s\n", "Status", status)
	fmt.Printf("  %-10s %s\n", "Strategy", ui.Bold(string(result.Action)))
	fmt.Printf("  %-10s %s\n", "State", ui.Info(result.State))
	fmt.Printf("  %-10s %s\n", "Elapsed", result.Outcome.Elapsed.Round(10*time.Millisecond))
	fmt.Printf("  %-10s %.2f\n", "Reward", result.Reward)
	fmt.Printf("  %-10s %.3f\n", "Estimate", result.Estimate)
	if result.Outcome.Screenshot != "" {
		fmt.Printf("  %-10s %s\n", "Screenshot", result.Outcome.Screenshot)
	}
	if scrapeOutput != "" {
		fmt.Printf("  %-10s %s\n", "Saved", scrapeOutput)
	} else if result.Outcome.Content != "" {
		fmt.Printf("\n%s\n", result.Outcome.Content)
	}
	return nil
}
