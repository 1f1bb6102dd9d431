package executor

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/olekukonko/tablewriter"

	"github.com/archivekeeper/curator/internal/planpkg"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5F5FFF")).
			Padding(0, 1)

	classLabels = map[planpkg.Kind]string{
		planpkg.KindPreCleanup:  "Pre-cleanup",
		planpkg.KindDuplicate:   "Duplicates",
		planpkg.KindOrphan:      "Orphans",
		planpkg.KindReorganize:  "Reorganize",
		planpkg.KindPermissions: "Permissions",
		planpkg.KindOwnership:   "Ownership",
		planpkg.KindPostCleanup: "Post-cleanup",
	}
)

// CLIConfirmer implements Confirmer against an interactive terminal, using
// promptui for prompts and lipgloss/tablewriter/fatih-color for display.
// When YesToAll is set every class-level prompt is answered automatically
// (the --yes-to-all flag for unattended runs), so the confirmation state
// machine in executor.go has a single implementation either way.
type CLIConfirmer struct {
	YesToAll bool
}

func (c *CLIConfirmer) ConfirmClass(kind planpkg.Kind, ops []planpkg.Operation) (Decision, error) {
	if c.YesToAll {
		return DecisionYesToAll, nil
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf(" %s — %d item(s) ", classLabels[kind], len(ops))))
	renderSummaryTable(ops)

	prompt := promptui.Select{
		Label: "Apply this class of operations",
		Items: []string{"yes", "yes-to-all", "no", "show", "cancel"},
	}
	_, result, err := prompt.Run()
	if err != nil {
		return DecisionCancel, fmt.Errorf("class prompt: %w", err)
	}
	return parseDecision(result), nil
}

func (c *CLIConfirmer) ConfirmItem(op planpkg.Operation) (Decision, error) {
	if c.YesToAll {
		return DecisionYesToAll, nil
	}

	prompt := promptui.Select{
		Label: describeOperation(op),
		Items: []string{"yes", "yes-to-all", "no", "show", "cancel"},
	}
	_, result, err := prompt.Run()
	if err != nil {
		return DecisionCancel, fmt.Errorf("item prompt: %w", err)
	}
	return parseDecision(result), nil
}

func (c *CLIConfirmer) Show(ops []planpkg.Operation) {
	for _, op := range ops {
		fmt.Println(describeOperation(op))
	}
}

func parseDecision(s string) Decision {
	switch s {
	case "yes":
		return DecisionYes
	case "yes-to-all":
		return DecisionYesToAll
	case "no":
		return DecisionNo
	case "show":
		return DecisionShow
	default:
		return DecisionCancel
	}
}

func describeOperation(op planpkg.Operation) string {
	switch op.Kind {
	case planpkg.KindPermissions:
		return fmt.Sprintf("%s: chmod %s -> %o (was %o)", op.Path, op.Reason, op.DesiredMode, op.CurrentMode)
	case planpkg.KindOwnership:
		return fmt.Sprintf("%s: chown %s -> %s:%s (was %s:%s)", op.Path, op.Reason, op.DesiredOwner, op.DesiredGroup, op.CurrentOwner, op.CurrentGroup)
	default:
		msg := fmt.Sprintf("%s -> %s", op.Path, op.MoveTo)
		if op.Reason != "" {
			msg += " (" + op.Reason + ")"
		}
		if len(op.SidecarFiles) > 0 {
			msg += " +sidecars[" + strings.Join(op.SidecarFiles, ",") + "]"
		}
		return msg
	}
}

func renderSummaryTable(ops []planpkg.Operation) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Path", "Destination/Change", "Reason")
	for _, op := range ops {
		dest := op.MoveTo
		if op.Kind == planpkg.KindPermissions {
			dest = fmt.Sprintf("mode %o", op.DesiredMode)
		} else if op.Kind == planpkg.KindOwnership {
			dest = fmt.Sprintf("%s:%s", op.DesiredOwner, op.DesiredGroup)
		}
		table.Append(op.Path, dest, op.Reason)
	}
	table.Render()
}

// Warnf prints a colored warning to stderr, used by cmd/curator alongside
// this package's confirmation flow.
func Warnf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, color.YellowString(format, args...))
}

// Errorf prints a colored error to stderr.
func Errorf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, color.RedString(format, args...))
}
