package output

import (
	"fmt"
	"strings"
	"time"

	rangehttp "github.com/tanq16/rangedl/internal/downloaders/http"
	"github.com/tanq16/rangedl/internal/scheduler"
	"github.com/tanq16/rangedl/internal/utils"
)

// OutcomeLine renders one job result as a single status line.
func OutcomeLine(outcome scheduler.Outcome) string {
	indent := strings.Repeat(" ", 2)
	elapsed := outcome.Elapsed.Round(time.Millisecond).String()
	if outcome.Failed() {
		return fmt.Sprintf("%s%s %s %s %s",
			indent,
			errorStyle.Render(StyleSymbols["fail"]),
			debugStyle.Render(elapsed),
			errorStyle.Render(outcome.Job.Spec.OutputName),
			errorStyle.Render(fmt.Sprintf("(%s) %v", outcome.Result.State, outcome.Err)))
	}
	if outcome.Result.State == rangehttp.StatePlanEmpty {
		return fmt.Sprintf("%s%s %s %s",
			indent,
			infoStyle.Render(StyleSymbols["info"]),
			debugStyle.Render(elapsed),
			infoStyle.Render(fmt.Sprintf("%s is empty, nothing written", outcome.Job.Spec.URI)))
	}
	how := outcome.Result.Decision.Kind.String()
	if n := len(outcome.Result.Decision.Blocks); n > 0 {
		how = fmt.Sprintf("%d blocks", n)
	}
	return fmt.Sprintf("%s%s %s %s %s %s",
		indent,
		successStyle.Render(StyleSymbols["pass"]),
		debugStyle.Render(elapsed),
		successStyle.Render(outcome.Result.Path),
		debugStyle.Render(StyleSymbols["bullet"]),
		debugStyle.Render(fmt.Sprintf("%s via %s", utils.FormatBytes(outcome.Result.Bytes), how)))
}

// ShowSummary prints every outcome followed by success and failure counts.
// Failure lines and the failure count go to stderr.
func ShowSummary(outcomes []scheduler.Outcome) {
	for _, outcome := range outcomes {
		if outcome.Failed() {
			fmt.Fprintln(Stderr, OutcomeLine(outcome))
		} else {
			fmt.Fprintln(Stdout, OutcomeLine(outcome))
		}
	}
	if len(outcomes) <= 1 {
		return
	}
	failures := scheduler.Failures(outcomes)
	fmt.Fprintln(Stdout)
	PrintSuccess(fmt.Sprintf("%sCompleted %d of %d", strings.Repeat(" ", 2), len(outcomes)-failures, len(outcomes)))
	if failures > 0 {
		PrintError(fmt.Sprintf("%sFailed %d of %d", strings.Repeat(" ", 2), failures, len(outcomes)))
	}
}
