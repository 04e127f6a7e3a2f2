package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/xfiles/accel"
	"github.com/sarchlab/xfiles/ant"
	"github.com/sarchlab/xfiles/monitoring"
	"github.com/sarchlab/xfiles/xfiles"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Attach configurations and run a transaction.",
	Long: "`run --attach net.bin --input 1,2` runs one feed-forward " +
		"transaction on NNID 0 and prints its outputs. Passing --expected " +
		"runs an incremental learning transaction instead.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		p, ctx := buildPlatform(cmd, cfg)

		asid, err := attach(cmd, p.Table())
		if err != nil {
			fatal("Error attaching configurations: %v", err)
		}

		err = p.Manager().SetASID(asid)
		if err != nil {
			fatal("Error selecting ASID: %v", err)
		}

		job, err := parseJob(cmd)
		if err != nil {
			fatal("Error: %v", err)
		}

		var bar *monitoring.ProgressBar
		if p.Monitor() != nil && job.repeat > 1 {
			bar = p.Monitor().CreateProgressBar("run", uint64(job.repeat))
		}

		for i := range job.repeat {
			if bar != nil {
				bar.IncrementInProgress(1)
			}

			out, err := job.run(ctx, p.Manager())
			if err != nil {
				fatal("Error in transaction %d: %v", i, err)
			}

			if bar != nil {
				bar.MoveInProgressToFinished(1)
			}

			cmd.Println(formatElements(out))
		}

		if bar != nil {
			p.Monitor().CompleteProgressBar(bar)
		}

		avg, count := p.AverageLatency()
		cmd.Printf("%d transaction(s), average latency %v\n", count, avg)

		names, counts := p.StepCounts()
		for i, name := range names {
			cmd.Printf("  %-20s %d\n", name, counts[i])
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addAttachFlags(runCmd)

	f := runCmd.Flags()
	f.Uint16("nnid", 0, "NNID of the configuration to run.")
	f.IntSlice("input", nil, "Input elements.")
	f.IntSlice("expected", nil,
		"Expected outputs. Runs incremental learning when set.")
	f.Int("outputs", 0, "Number of outputs to read. Defaults to the "+
		"number of inputs.")
	f.Bool("staged", false,
		"Write all inputs but the last one before starting.")
	f.Int("repeat", 1, "Number of times to run the transaction.")
}

type job struct {
	nnid       ant.NNID
	inputs     []accel.Element
	expected   []accel.Element
	numOutputs int
	staged     bool
	repeat     int
}

func parseJob(cmd *cobra.Command) (job, error) {
	f := cmd.Flags()

	nnid, _ := f.GetUint16("nnid")
	inputs, _ := f.GetIntSlice("input")
	expected, _ := f.GetIntSlice("expected")
	numOutputs, _ := f.GetInt("outputs")
	staged, _ := f.GetBool("staged")
	repeat, _ := f.GetInt("repeat")

	j := job{
		nnid:       ant.NNID(nnid),
		inputs:     toElements(inputs),
		expected:   toElements(expected),
		numOutputs: numOutputs,
		staged:     staged,
		repeat:     repeat,
	}

	if len(j.inputs) == 0 {
		return j, fmt.Errorf("no inputs, use --input")
	}

	if j.repeat < 1 {
		return j, fmt.Errorf("invalid repeat count %d", j.repeat)
	}

	if j.numOutputs == 0 {
		j.numOutputs = len(j.inputs)
	}

	if len(j.expected) > 0 {
		j.numOutputs = len(j.expected)
	}

	return j, nil
}

func (j job) run(ctx context.Context, m *xfiles.Manager) ([]accel.Element, error) {
	learningType := accel.FeedForward
	if len(j.expected) > 0 {
		learningType = accel.TrainIncremental
	}

	tid, err := m.NewWriteRequest(j.nnid, learningType, len(j.expected))
	if err != nil {
		return nil, err
	}

	switch {
	case learningType == accel.TrainIncremental:
		err = m.WriteDataTrainIncremental(tid, j.inputs, j.expected)
	case j.staged:
		err = m.WriteDataExceptLast(tid, j.inputs)
		if err == nil {
			err = m.WriteDataLast(tid, j.inputs[len(j.inputs)-1:])
		}
	default:
		err = m.WriteData(tid, j.inputs)
	}

	if err != nil {
		_ = m.KillTransaction(tid)
		_ = m.Retire(tid)

		return nil, err
	}

	out := make([]accel.Element, j.numOutputs)

	err = m.ReadData(ctx, tid, out)
	if err != nil {
		return nil, err
	}

	return out, nil
}

func toElements(values []int) []accel.Element {
	elements := make([]accel.Element, len(values))
	for i, v := range values {
		elements[i] = accel.Element(v)
	}

	return elements
}

func formatElements(elements []accel.Element) string {
	s := make([]string, len(elements))
	for i, e := range elements {
		s[i] = fmt.Sprint(e)
	}

	return strings.Join(s, " ")
}
