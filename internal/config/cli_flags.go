package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format only")
	cmd.PersistentFlags().String("proxy", "", "Set HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
	cmd.PersistentFlags().String("data-dir", "", "Directory for the value table and episode log")
	cmd.PersistentFlags().Float64("epsilon", DefaultEpsilon, "Exploration rate in [0,1]")
	cmd.PersistentFlags().Float64("alpha", DefaultAlpha, "Learning rate in (0,1]")
	cmd.PersistentFlags().Int64("seed", 0, "Random seed for reproducible selection (0 = from clock)")
	cmd.PersistentFlags().String("config", "", "Path to configuration file (optional)")
}
