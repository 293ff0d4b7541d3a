package orchestrator

import (
	"fmt"
	"io"
	"strings"
)

// PrintSummary writes a human readable summary of a run to w.
func PrintSummary(w io.Writer, result *Result) {
	if result == nil {
		return
	}

	title := "GENERATION COMPLETE"
	if result.DryRun {
		title = "DRY RUN COMPLETE (nothing written)"
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 60))
	fmt.Fprintf(w, "🎉 %s\n", title)
	fmt.Fprintln(w, strings.Repeat("=", 60))

	fmt.Fprintf(w, "\n📖 Schema:   %s (%d models)\n", result.SchemaPath, result.Models)
	fmt.Fprintf(w, "📂 Output:   %s\n", result.OutputRoot)
	if result.ManifestLocation != "" {
		fmt.Fprintf(w, "🗂️  Manifest: %s\n", result.ManifestLocation)
	}

	if changed := changedPaths(result); len(changed) > 0 {
		verb := "Written"
		if result.DryRun {
			verb = "Would write"
		}
		fmt.Fprintf(w, "\n✏️  %s:\n", verb)
		for _, p := range changed {
			fmt.Fprintf(w, "   • %s\n", p)
		}
	}

	fmt.Fprintf(w, "\n📊 Views: %d rendered, %d changed, %d unchanged\n", result.Rendered, result.Changed, result.Unchanged)
	fmt.Fprintf(w, "⏱️  Duration: %v\n", result.Duration)

	if len(result.Warnings) > 0 {
		fmt.Fprintln(w, "\n⚠️  Warnings:")
		for _, warn := range result.Warnings {
			fmt.Fprintf(w, "   • %s\n", warn)
		}
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 60))
}

func changedPaths(result *Result) []string {
	var out []string
	for _, ev := range result.Events {
		if ev.Changed {
			out = append(out, ev.Path)
		}
	}
	return out
}
