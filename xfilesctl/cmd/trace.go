package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/xfiles/tracing"
	"github.com/sarchlab/xfiles/xfiles"
)

var traceCmd = &cobra.Command{
	Use:   "trace FILE",
	Short: "Print the tasks of a recorded trace.",
	Long: "`trace xfiles.sqlite3` lists the transactions recorded by a run " +
		"with --record, oldest first.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f := cmd.Flags()
		kind, _ := f.GetString("kind")
		result, _ := f.GetString("result")
		limit, _ := f.GetInt("limit")
		withSteps, _ := f.GetBool("steps")
		withAttachments, _ := f.GetBool("attachments")

		reader, err := tracing.OpenTrace(args[0])
		if err != nil {
			fatal("Error opening trace: %v", err)
		}
		defer reader.Close()

		ctx := cmd.Context()

		if withAttachments {
			attachments, err := reader.ListAttachments(ctx)
			if err != nil {
				fatal("Error reading attachments: %v", err)
			}

			for _, a := range attachments {
				cmd.Printf("ASID %d NNID %d %d words from %s\n",
					a.ASID, a.NNID, a.Size, a.Source)
			}
		}

		tasks, total, err := reader.ListTasks(ctx,
			tracing.TaskQuery{Kind: kind, Result: result, Limit: limit})
		if err != nil {
			fatal("Error reading tasks: %v", err)
		}

		for _, t := range tasks {
			cmd.Printf("%-22s %-16s %-10s %12v %s\n",
				t.ID, t.What, t.Location,
				time.Duration(t.EndTime-t.StartTime), t.Result)

			if !withSteps {
				continue
			}

			steps, err := reader.ListSteps(ctx, t.ID)
			if err != nil {
				fatal("Error reading steps of %s: %v", t.ID, err)
			}

			for _, s := range steps {
				cmd.Printf("  +%-12v %s\n", time.Duration(s.Time-t.StartTime), s.What)
			}
		}

		cmd.Printf("%d of %d task(s)\n", len(tasks), total)
	},
}

func init() {
	rootCmd.AddCommand(traceCmd)

	f := traceCmd.Flags()
	f.String("kind", xfiles.TaskKind, "Only list tasks of this kind. "+
		"Empty lists every kind.")
	f.String("result", "", "Only list tasks that ended with this result.")
	f.Int("limit", 0, "Maximum number of tasks to list. 0 lists all.")
	f.Bool("steps", false, "Also list the steps of every task.")
	f.Bool("attachments", false, "Also list the attached configurations.")
}
