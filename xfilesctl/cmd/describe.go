package cmd

import (
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Attach configurations and print the ASID--NNID table.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		cfg.Record = ""
		cfg.Monitor = false

		p, _ := buildPlatform(cmd, cfg)

		_, err := attach(cmd, p.Table())
		if err != nil {
			fatal("Error attaching configurations: %v", err)
		}

		err = p.Table().Describe(cmd.OutOrStdout())
		if err != nil {
			fatal("Error describing table: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	addAttachFlags(describeCmd)
}
