// stats_table.go - human readable statistics table
//
// Grounded on the per-worker columns the original implementation's
// print_stat prints; rendered with text/tabwriter rather than a
// hand-rolled column-width pass.
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.
package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/opencoff/dirload"
	"github.com/opencoff/go-utils"
)

// printStatsTable renders one row per worker: role, input path, repeat
// count, stat/read/write counters, and elapsed time.
func printStatsTable(w io.Writer, stats []dirload.Stats) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GID\tROLE\tINPUT\tREPEAT\tSTAT\tREAD\tREAD-BYTES\tWRITE\tWRITE-BYTES\tELAPSED")
	for i, s := range stats {
		role := "writer"
		if s.IsReader {
			role = "reader"
		}
		elapsed := elapsedOf(s)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%s\t%d\t%s\t%s\n",
			i, role, s.InputPath, s.NumRepeat, s.NumStat,
			s.NumRead, utils.HumanizeSize(uint64(s.NumReadBytes)),
			s.NumWrite, utils.HumanizeSize(uint64(s.NumWriteBytes)),
			elapsed)
	}
	tw.Flush()
}

func elapsedOf(s dirload.Stats) time.Duration {
	if s.TimeEnd.IsZero() {
		if s.TimeBegin.IsZero() {
			return 0
		}
		return time.Since(s.TimeBegin).Round(time.Second)
	}
	return s.TimeEnd.Sub(s.TimeBegin).Round(time.Second)
}

// printSummary prints the non-zero tail the spec requires: interrupt
// count, failure count, and remaining write-paths.
func printSummary(w io.Writer, numInterrupted, numError, numRemaining int) {
	if numInterrupted > 0 {
		fmt.Fprintf(w, "%d worker(s) interrupted\n", numInterrupted)
	}
	if numError > 0 {
		fmt.Fprintf(w, "%d worker(s) failed\n", numError)
	}
	if numRemaining > 0 {
		fmt.Fprintf(w, "%d write-path(s) remaining\n", numRemaining)
	}
}
