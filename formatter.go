package specrun

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/specrun/specrun/runner"
	"github.com/specrun/specrun/types"
)

// ResultFormatter is responsible for formatting and displaying run results.
type ResultFormatter interface {
	FormatResults(result *runner.RunResult) error
}

// ConsoleResultFormatter implements the ResultFormatter interface.
type ConsoleResultFormatter struct {
	logger log.Logger
}

// NewConsoleResultFormatter creates a new ConsoleResultFormatter.
func NewConsoleResultFormatter(logger log.Logger) *ConsoleResultFormatter {
	return &ConsoleResultFormatter{
		logger: logger,
	}
}

// FormatResults formats and displays the run results as a tree-shaped table.
func (f *ConsoleResultFormatter) FormatResults(result *runner.RunResult) error {
	f.logger.Info("Printing results...")
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("Spec Run Results (%s)", formatDuration(result.Duration)))

	// Configure columns
	t.AppendHeader(table.Row{
		"Type", "ID", "Duration", "Cases", "Passed", "Failed", "Skipped", "Status", "Error",
	})

	// Set column configurations for better readability
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Type", AutoMerge: true},
		{Name: "ID", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Cases", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Error", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	// Nodes are recorded in finish order; restore declaration order so rows
	// read top to bottom the way the specs were written.
	nodes := make([]runner.NodeResult, len(result.Nodes))
	copy(nodes, result.Nodes)
	runner.SortTreeOrder(nodes)

	for _, node := range nodes {
		if node.Kind == types.KindContainer {
			t.AppendRow(table.Row{
				containerLabel(node.Depth),
				treePrefix(node.Depth) + node.Name,
				formatDuration(node.Duration),
				"-", // Containers are not counted as cases
				"", "", "",
				getResultString(node.Outcome.Status),
				firstErrorLine(node.Outcome.Err),
			})
			continue
		}

		t.AppendRow(table.Row{
			"Case",
			treePrefix(node.Depth) + node.Name,
			formatDuration(node.Duration),
			"1",
			boolToInt(node.Outcome.Status == types.OutcomePass),
			boolToInt(node.Outcome.Status == types.OutcomeFail),
			boolToInt(node.Outcome.Status == types.OutcomeSkip),
			getResultString(node.Outcome.Status),
			firstErrorLine(node.Outcome.Err),
		})
	}

	// Update the table style setting based on result status
	if result.Status == types.OutcomePass {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	} else if result.Status == types.OutcomeSkip {
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	// Add summary footer
	t.AppendFooter(table.Row{
		"TOTAL",
		"",
		formatDuration(result.Duration),
		result.Stats.Total,
		result.Stats.Passed,
		result.Stats.Failed,
		result.Stats.Skipped,
		getResultString(result.Status),
		"",
	})

	t.Render()

	fmt.Println(result.String())
	return nil
}

// containerLabel names a container row by its depth under the engine root.
func containerLabel(depth int) string {
	if depth <= 1 {
		return "Spec"
	}
	return "Group"
}

// treePrefix indents a row to reflect its depth in the node tree.
func treePrefix(depth int) string {
	if depth <= 1 {
		return ""
	}
	return strings.Repeat("   ", depth-2) + "└─ "
}
