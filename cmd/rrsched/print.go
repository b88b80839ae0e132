package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/SanjoDeundiak/process-scheduler/pkg/lib/schedule"
)

// result describes how a process ended, or "-" while it is still alive.
func result(e schedule.Entry) string {
	switch {
	case e.Status.ExitCode != nil:
		return fmt.Sprintf("exit %d", *e.Status.ExitCode)
	case e.Status.Signal != 0:
		return "signal " + e.Status.Signal.String()
	case e.Status.EndTime != nil:
		return "gone"
	default:
		return "-"
	}
}

func elapsed(e schedule.Entry) time.Duration {
	if e.Status.EndTime == nil {
		return 0
	}
	return e.Status.EndTime.Sub(e.Status.StartTime).Round(time.Millisecond)
}

func summaryAttrs(e schedule.Entry) []any {
	return []any{
		"program", e.Name,
		"pid", e.PID,
		"state", e.Status.State,
		"turns", e.Status.Turns,
		"result", result(e),
		"elapsed", elapsed(e),
	}
}

func printSummaryTable(w io.Writer, entries []schedule.Entry) {
	headers := []string{"PID", "STATE", "TURNS", "RESULT", "COMMAND"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(e.PID),
			e.Status.State.String(),
			strconv.Itoa(e.Status.Turns),
			result(e),
			strings.Join(e.Spec.Args, " "),
		})
	}

	// Determine column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
		for _, row := range rows {
			widths[i] = max(widths[i], len(row[i]))
		}
	}

	var sep strings.Builder
	sep.WriteString("+")
	for _, wd := range widths {
		sep.WriteString(strings.Repeat("-", wd+2) + "+")
	}
	sep.WriteString("\n")

	fmt.Fprint(w, sep.String())
	printRow(w, headers, widths)
	fmt.Fprint(w, sep.String())
	for _, row := range rows {
		printRow(w, row, widths)
	}
	fmt.Fprint(w, sep.String())
}

func printRow(w io.Writer, cells []string, widths []int) {
	fmt.Fprint(w, "|")
	for i, c := range cells {
		fmt.Fprintf(w, " %s |", pad(c, widths[i]))
	}
	fmt.Fprintln(w)
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}
