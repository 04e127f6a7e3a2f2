// Package cmd provides the command-line interface of xfilesctl.
package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/xfiles/ant"
	"github.com/sarchlab/xfiles/config"
	"github.com/sarchlab/xfiles/logging"
	"github.com/sarchlab/xfiles/platform"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "xfilesctl",
	Short: "xfilesctl runs neural network transactions on a DANA accelerator.",
	Long: `xfilesctl builds an X-FILES host with an ASID--NNID table and a ` +
		`DANA accelerator, attaches configurations and runs transactions ` +
		`against them. Settings come from .env files, XFILES_* variables ` +
		`and flags, in increasing priority.`,
	SilenceUsage: true,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringSlice("env-file", nil,
		"Env files to read. Defaults to .env when it exists.")
	f.Int("asids", 0, "Number of ASIDs in the table.")
	f.Int("configs-per-asid", 0, "Configurations each ASID can hold.")
	f.Int("tids", 0, "Number of transaction IDs.")
	f.Int("pes", 0, "Number of processing elements.")
	f.Int("cache-entries", 0, "Configuration cache entries.")
	f.Int("latency", 0, "Cycles each neuron takes on a processing element.")
	f.String("log-level", "", "Log level spec, for example warn,DANA=debug.")
	f.String("log-format", "", "Log format, text or json.")
	f.String("record", "", "Record the trace into this sqlite3 file.")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func loadConfig(cmd *cobra.Command) config.Config {
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")
	if len(envFiles) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			envFiles = []string{".env"}
		}
	}

	cfg, err := config.Load(envFiles...)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	overrideInt(cmd, "asids", &cfg.NumASIDs)
	overrideInt(cmd, "configs-per-asid", &cfg.ConfigsPerASID)
	overrideInt(cmd, "tids", &cfg.NumTIDs)
	overrideInt(cmd, "pes", &cfg.NumPEs)
	overrideInt(cmd, "cache-entries", &cfg.CacheEntries)
	overrideInt(cmd, "latency", &cfg.Latency)

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}

	if cmd.Flags().Changed("log-format") {
		s, _ := cmd.Flags().GetString("log-format")
		cfg.LogFormat, err = logging.ParseFormat(s)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
	}

	if cmd.Flags().Changed("record") {
		cfg.Record, _ = cmd.Flags().GetString("record")
	}

	err = cfg.Validate()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	return cfg
}

func overrideInt(cmd *cobra.Command, flag string, dst *int) {
	if !cmd.Flags().Changed(flag) {
		return
	}

	*dst, _ = cmd.Flags().GetInt(flag)
}

// buildPlatform builds and starts a platform. The platform is terminated
// when the process exits through atexit.
func buildPlatform(cmd *cobra.Command, cfg config.Config) (
	*platform.Platform, context.Context,
) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}

	p, err := platform.MakeBuilder().
		WithConfig(cfg).
		WithLogger(logger).
		Build()
	if err != nil {
		log.Fatalf("Error building platform: %v", err)
	}

	atexit.Register(p.Terminate)

	ctx, stop := signal.NotifyContext(cmd.Context(),
		os.Interrupt, syscall.SIGTERM)
	atexit.Register(stop)

	p.Start(ctx)

	return p, ctx
}

func addAttachFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("attach", nil,
		"Configuration files to attach, in NNID order.")
	cmd.Flags().Int("garbage", 0,
		"Number of garbage configurations to attach after the files.")
	cmd.Flags().Uint16("asid", 0, "ASID to attach to and run under.")
}

// attach attaches the configurations named by the attach flags and returns
// the ASID they were attached to.
func attach(cmd *cobra.Command, table *ant.Table) (ant.ASID, error) {
	files, _ := cmd.Flags().GetStringSlice("attach")
	garbage, _ := cmd.Flags().GetInt("garbage")
	asidValue, _ := cmd.Flags().GetUint16("asid")
	asid := ant.ASID(asidValue)

	for _, file := range files {
		nnid, err := table.AttachFile(asid, file)
		if err != nil {
			return asid, err
		}

		cmd.Printf("Attached %s as NNID %d\n", file, nnid)
	}

	for range garbage {
		nnid, err := table.AttachGarbage(asid)
		if err != nil {
			return asid, err
		}

		cmd.Printf("Attached garbage as NNID %d\n", nnid)
	}

	if len(files) == 0 && garbage == 0 {
		return asid, errors.New("nothing to attach, use --attach or --garbage")
	}

	return asid, nil
}

func fatal(format string, args ...any) {
	log.Printf(format, args...)
	atexit.Exit(1)
}
