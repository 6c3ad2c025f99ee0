package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quantum/internal/prof"
)

// setupProfiling starts the profilers requested by the persistent flags.
// The returned cleanup reports write failures on stderr.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()
	var p prof.Paths
	p.CPU, _ = flags.GetString("cpu-profile")
	p.Mem, _ = flags.GetString("mem-profile")
	p.Trace, _ = flags.GetString("runtime-trace")
	if !p.Enabled() {
		return func() {}, nil
	}
	s, err := prof.Start(p)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := s.Stop(); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "profiling:", err)
		}
	}, nil
}
