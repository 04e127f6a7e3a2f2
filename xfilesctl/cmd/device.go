package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
)

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Print the identification of the accelerator.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		cfg.Monitor = false

		p, _ := buildPlatform(cmd, cfg)

		id, err := p.Manager().ID()
		if err != nil {
			fatal("Error reading ID: %v", err)
		}

		cmd.Printf("%#016x: %s\n", uint64(id), id)
	},
}

var echoCmd = &cobra.Command{
	Use:   "echo VALUE",
	Short: "Send a value to the accelerator and print what comes back.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		value, err := strconv.ParseUint(args[0], 0, 32)
		if err != nil {
			fatal("Error: invalid value %q: %v", args[0], err)
		}

		cfg := loadConfig(cmd)
		cfg.Monitor = false

		p, _ := buildPlatform(cmd, cfg)

		rsp, err := p.Manager().DebugEcho(uint32(value))
		if err != nil {
			fatal("Error: %v", err)
		}

		cmd.Printf("%#x\n", rsp)
	},
}

func init() {
	rootCmd.AddCommand(idCmd)
	rootCmd.AddCommand(echoCmd)
}
