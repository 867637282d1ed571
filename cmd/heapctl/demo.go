package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/objects"
)

const demoHeapSize = 1024

// demoTrace allocates 100 bytes, fails a 1000-byte request against the
// ~924 bytes left, frees the first block and asks for 900. Whether that last
// step succeeds, and where, depends on the allocator policy.
var demoTrace = Trace{Steps: []Step{
	{Op: opAlloc, ID: "small", Size: 100, Align: 8},
	{Op: opAlloc, ID: "huge", Size: 1000, Align: 8},
	{Op: opFree, ID: "small"},
	{Op: opAlloc, ID: "large", Size: 900, Align: 8},
	{Op: opCheck},
}}

var demoObjects bool

func init() {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the 1 KiB end-to-end allocation scenario",
		Long: `The demo command builds a 1024-byte region under the configured
allocator policy and runs a fixed scenario: allocate 100 bytes, attempt
1000 bytes (expected to fail), free the first block, then allocate 900.

With --objects it then builds a growable vector and a string on a fresh
region to show the containers allocating through the same allocator.

Example:
  heapctl demo
  heapctl demo --coalesce=false
  heapctl demo --allocator bump --objects`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
	cmd.Flags().BoolVar(&demoObjects, "objects", false, "Also build a vector and a string on the heap")
	rootCmd.AddCommand(cmd)
}

// objectsReport summarises the --objects phase.
type objectsReport struct {
	VecLen int    `json:"vec_len"`
	VecCap int    `json:"vec_cap"`
	VecSum uint64 `json:"vec_sum"`
	Text   string `json:"text"`
	Peak   int    `json:"live_bytes_peak"`
}

type demoReport struct {
	traceReport
	Objects *objectsReport `json:"objects,omitempty"`
}

func runDemo() error {
	s, err := newSession(demoHeapSize)
	if err != nil {
		return err
	}
	defer s.Close()

	rep := demoReport{traceReport: replay(s, &demoTrace, false)}

	if demoObjects {
		obj, err := runObjectsDemo()
		if err != nil {
			return fmt.Errorf("objects demo: %w", err)
		}
		rep.Objects = obj
	}

	if jsonOut {
		return printJSON(rep)
	}

	printReport(rep.traceReport)
	if last := rep.Steps[3]; last.OK {
		printInfo("900-byte allocation succeeded at %s\n", last.Ptr)
	} else {
		printInfo("900-byte allocation failed under %s\n", rep.Policy)
	}
	if o := rep.Objects; o != nil {
		printInfo("\nVec:    len=%d cap=%d sum=%d\n", o.VecLen, o.VecCap, o.VecSum)
		printInfo("String: %q\n", o.Text)
		printInfo("Peak:   %d live bytes\n", o.Peak)
	}
	return nil
}

// runObjectsDemo pushes the squares 0..15 into a Vec and copies a string
// onto a fresh region, then releases both.
func runObjectsDemo() (*objectsReport, error) {
	s, err := newSession(demoHeapSize)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	v, err := objects.NewVec(s.alloc, 8, 8)
	if err != nil {
		return nil, err
	}
	for i := range 16 {
		if err := v.PushU64(uint64(i * i)); err != nil {
			return nil, err
		}
	}

	rep := &objectsReport{VecLen: v.Len(), VecCap: v.Cap()}
	for i := range v.Len() {
		x, err := v.U64(i)
		if err != nil {
			return nil, err
		}
		rep.VecSum += x
	}

	str, err := objects.NewString(s.alloc, "allocated by heapctl")
	if err != nil {
		return nil, err
	}
	rep.Text = str.String()
	rep.Peak = s.stats().LiveBytes

	if err := str.Release(); err != nil {
		return nil, err
	}
	if err := v.Release(); err != nil {
		return nil, err
	}
	return rep, nil
}
