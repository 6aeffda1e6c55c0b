package repl

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"logistics-dashboard/internal/adapters/cli"
	"logistics-dashboard/internal/app"
)

func printHelp(w io.Writer) {
	fmt.Fprintln(w, cli.Usage)
	fmt.Fprintln(w, "  new-shipment | new              create a shipment step by step")
	fmt.Fprintln(w, "  help | h                        this list")
	fmt.Fprintln(w, "  exit | quit                     leave")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Prefix commands with /. Anything else is read as a shipment search, e.g.")
	fmt.Fprintln(w, "  delayed shipments out of Leeds, newest first")
}

// printQuery shows the filter the AI chose so the user can check it.
func printQuery(w io.Writer, r *app.InterpretResult) {
	q := r.Query
	var parts []string
	if q.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", q.Search))
	}
	if len(q.Statuses) > 0 {
		parts = append(parts, "status "+strings.Join(q.Statuses, "|"))
	}
	names := make([]string, 0, len(q.Flags))
	for name := range q.Flags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%t", name, q.Flags[name]))
	}
	if q.SortField != "" {
		dir := string(q.SortDir)
		if dir == "" {
			dir = "asc"
		}
		parts = append(parts, "sort "+q.SortField+" "+dir)
	}
	if len(parts) == 0 {
		parts = append(parts, "all shipments")
	}

	fmt.Fprintf(w, "\nFILTER:    %s\n", strings.Join(parts, ", "))
	if r.Reasoning != "" {
		fmt.Fprintf(w, "REASONING: %s\n", r.Reasoning)
	}
}
