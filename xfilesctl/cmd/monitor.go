package cmd

import (
	"fmt"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Serve the monitor until interrupted.",
	Long: "`monitor --attach net.bin --open` attaches configurations, " +
		"starts the monitor and opens it in a browser. Transactions can be " +
		"inspected and killed from the page.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		cfg.Monitor = true

		if cmd.Flags().Changed("port") {
			cfg.MonitorPort, _ = cmd.Flags().GetInt("port")
		}

		p, ctx := buildPlatform(cmd, cfg)

		files, _ := cmd.Flags().GetStringSlice("attach")
		garbage, _ := cmd.Flags().GetInt("garbage")
		if len(files) > 0 || garbage > 0 {
			_, err := attach(cmd, p.Table())
			if err != nil {
				fatal("Error attaching configurations: %v", err)
			}
		}

		url := fmt.Sprintf("http://localhost:%d", p.MonitorPort())
		cmd.Printf("Monitoring at %s\n", url)

		open, _ := cmd.Flags().GetBool("open")
		if open {
			err := browser.OpenURL(url)
			if err != nil {
				cmd.PrintErrf("Error opening browser: %v\n", err)
			}
		}

		<-ctx.Done()
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	addAttachFlags(monitorCmd)

	monitorCmd.Flags().Int("port", 0, "Port of the monitor server.")
	monitorCmd.Flags().Bool("open", false, "Open the monitor in a browser.")
}
