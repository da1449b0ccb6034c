// internal/cli/train.go
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/smartbook/scout/internal/ui"
)

var (
	trainEpisodes int
	trainURLFile  string
)

var trainCmd = &cobra.Command{
	Use:   "train [url...]",
	Short: "Run repeated scrape episodes over a URL list to train the policy",
	Example: `  # 20 episodes cycling over two URLs
  scout train -n 20 https://example.com/a https://example.com/b

  # URLs from a file, one per line
  scout train -n 50 -f urls.txt`,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().IntVarP(&trainEpisodes, "episodes", "n", 10, "Number of episodes to run")
	trainCmd.Flags().StringVarP(&trainURLFile, "file", "f", "", "File with URLs, one per line")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	a := GetApp()

	urls := args
	if trainURLFile != "" {
		fromFile, err := readURLFile(trainURLFile)
		if err != nil {
			return err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs given: pass them as arguments or via --file")
	}
	if trainEpisodes <= 0 {
		return fmt.Errorf("episodes must be > 0")
	}

	bar := progressbar.NewOptions(trainEpisodes,
		progressbar.OptionSetDescription("training"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	var totalReward float64
	successes := 0
	for i := 0; i < trainEpisodes; i++ {
		target := urls[i%len(urls)]
		result, err := a.Agent.Scrape(cmd.Context(), target)
		if err != nil {
			return err
		}
		totalReward += result.Reward
		if result.Outcome.Success {
			successes++
		}
		bar.Add(1)
	}
	bar.Finish()

	fmt.Printf("%s\n", ui.Bold("Training complete"))
	fmt.Printf("  %-14s %d\n", "Episodes", trainEpisodes)
	fmt.Printf("  %-14s %d/%d\n", "Successes", successes, trainEpisodes)
	fmt.Printf("  %-14s %.2f\n", "Avg reward", totalReward/float64(trainEpisodes))
	fmt.Printf("  %-14s %.3f\n", "Epsilon", a.Agent.Selector().Epsilon())
	fmt.Printf("  %-14s %d\n", "Known states", a.Table.Len())
	return nil
}

func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open URL file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
