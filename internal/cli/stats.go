// internal/cli/stats.go
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smartbook/scout/internal/episode"
	"github.com/smartbook/scout/internal/ui"
	"github.com/smartbook/scout/pkg/models"
)

var statsRecent int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning and scraping statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsRecent, "recent", 0, "Also list the N most recent episodes")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	a := GetApp()

	stats, err := a.Episodes.Stats()
	if err != nil {
		return err
	}

	if a.Config.JSONLog {
		out := struct {
			*episode.Stats
			KnownStates int     `json:"known_states"`
			Epsilon     float64 `json:"epsilon"`
		}{stats, a.Table.Len(), a.Agent.Selector().Epsilon()}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	fmt.Printf("%s\n", ui.Bold("Scraping"))
	fmt.Printf("  %-14s %d\n", "Episodes", stats.Total)
	fmt.Printf("  %-14s %.1f%%\n", "Success rate", stats.SuccessRate*100)
	fmt.Printf("  %-14s %.2f\n", "Avg reward", stats.AvgReward)
	fmt.Printf("  %-14s %.0f\n", "Avg quality", stats.AvgQuality)
	fmt.Printf("  %-14s %d\n", "Rated", stats.Rated)

	fmt.Printf("\n%s\n", ui.Bold("Strategy usage"))
	for _, action := range models.Actions {
		fmt.Printf("  %-14s %d\n", action, stats.ByAction[action])
	}

	fmt.Printf("\n%s\n", ui.Bold("Learning"))
	fmt.Printf("  %-14s %d\n", "Known states", a.Table.Len())
	fmt.Printf("  %-14s %.3f\n", "Epsilon", a.Agent.Selector().Epsilon())

	if statsRecent > 0 {
		episodes, err := a.Episodes.Recent(statsRecent)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s\n", ui.Bold("Recent episodes"))
		for _, ep := range episodes {
			status := ui.Success("ok")
			if !ep.Success {
				status = ui.Error("failed")
			}
			fmt.Printf("  %s  %-13s %-6s r=%+.2f  %s\n",
				ep.ID, ep.Action, status, ep.Reward, ep.URL)
		}
	}
	return nil
}
