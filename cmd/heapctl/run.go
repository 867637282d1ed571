package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/cmd/heapctl/logger"
	"github.com/joshuapare/heapkit/heap/alloc"
)

// exitFunc terminates the process from the --abort-on-oom hook.
var exitFunc = os.Exit

// exitOOM is the status used when --abort-on-oom fires.
const exitOOM = 3

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <trace.yaml>",
		Short: "Replay an allocation trace",
		Long: `The run command replays a YAML trace of alloc, free, reset and check
steps against a fresh heap region and prints each step's outcome followed
by the allocator's usage counters.

Failed allocations are reported and replay continues, unless
--abort-on-oom is set.

Example:
  heapctl run trace.yaml
  heapctl run trace.yaml --allocator bump --size 4096
  heapctl run trace.yaml --coalesce=false --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(args)
		},
	}
	return cmd
}

// traceReport is the --json shape of run and demo output.
type traceReport struct {
	Policy string       `json:"policy"`
	Size   int          `json:"size"`
	Steps  []StepResult `json:"steps"`
	Failed int          `json:"failed"`
	Stats  alloc.Stats  `json:"stats"`
}

func runTrace(args []string) error {
	t, err := loadTrace(args[0])
	if err != nil {
		return fmt.Errorf("failed to load trace: %w", err)
	}

	if abortOnOOM {
		prev := alloc.SetAllocErrorHook(func(l alloc.Layout) {
			logger.Error("allocation failed, aborting", "size", l.Size, "align", l.Align)
			printError("out of memory: %s\n", l)
			exitFunc(exitOOM)
		})
		defer alloc.SetAllocErrorHook(prev)
	}

	s, err := newSession(heapSize)
	if err != nil {
		return err
	}
	defer s.Close()

	printVerbose("Replaying %d steps with %s over %d bytes\n", len(t.Steps), s.policy(), s.region.Size())
	rep := replay(s, t, abortOnOOM)
	logger.Info("trace replayed", "path", args[0], "steps", len(rep.Steps), "failed", rep.Failed)

	if jsonOut {
		return printJSON(rep)
	}
	printReport(rep)
	return nil
}

func replay(s *session, t *Trace, must bool) traceReport {
	steps := newReplayer(s, must).run(t)
	failed := 0
	for _, r := range steps {
		if !r.OK {
			failed++
		}
	}
	return traceReport{
		Policy: s.policy(),
		Size:   s.region.Size(),
		Steps:  steps,
		Failed: failed,
		Stats:  s.stats(),
	}
}

func printReport(rep traceReport) {
	for _, r := range rep.Steps {
		printInfo("%s\n", formatStep(r))
	}
	printInfo("\n")
	printStats(rep.Policy, rep.Size, rep.Stats)
	if rep.Failed > 0 {
		printInfo("%d of %d steps failed\n", rep.Failed, len(rep.Steps))
	}
}

func formatStep(r StepResult) string {
	var what string
	switch r.Op {
	case opAlloc:
		what = fmt.Sprintf("alloc %-8s size=%d align=%d", r.ID, r.Size, r.Align)
	case opFree:
		what = fmt.Sprintf("free  %s", r.ID)
	default:
		what = r.Op
	}

	switch {
	case !r.OK:
		return fmt.Sprintf("#%-3d %-36s FAILED: %s", r.Index, what, r.Error)
	case r.Ptr.IsNull():
		return fmt.Sprintf("#%-3d %-36s ok", r.Index, what)
	default:
		return fmt.Sprintf("#%-3d %-36s -> %s", r.Index, what, r.Ptr)
	}
}

func printStats(policy string, size int, st alloc.Stats) {
	printInfo("Allocator: %s\n", policy)
	printInfo("Region:    %d bytes\n", size)
	printInfo("Live:      %d allocations, %d bytes\n", st.LiveAllocs, st.LiveBytes)
	printInfo("Free:      %d blocks, %d bytes\n", st.FreeBlocks, st.FreeBytes)
	printInfo("Calls:     %d alloc, %d free, %d failed\n", st.AllocCalls, st.FreeCalls, st.Failures)
	printVerbose("Splits:    %d\n", st.SplitCount)
	printVerbose("Coalesces: %d\n", st.CoalesceCount)
}
