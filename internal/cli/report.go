package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/mvp-joe/intl-extract/internal/diag"
	"github.com/mvp-joe/intl-extract/internal/runner"
)

// reporter renders diagnostics and run summaries.
type reporter struct {
	out   io.Writer // summaries
	err   io.Writer // diagnostics
	root  string
	quiet bool

	errorColor *color.Color
	warnColor  *color.Color
	okColor    *color.Color
	dimColor   *color.Color
}

func newReporter(out, err io.Writer, root string, quiet, noColor bool) *reporter {
	r := &reporter{
		out:        out,
		err:        err,
		root:       root,
		quiet:      quiet,
		errorColor: color.New(color.FgRed, color.Bold),
		warnColor:  color.New(color.FgYellow, color.Bold),
		okColor:    color.New(color.FgGreen, color.Bold),
		dimColor:   color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{r.errorColor, r.warnColor, r.okColor, r.dimColor} {
			c.DisableColor()
		}
	}
	return r
}

// report prints every diagnostic of the report followed by its summary.
func (r *reporter) report(rep *runner.Report) {
	for _, d := range rep.Diagnostics() {
		r.diagnostic(d)
	}
	r.summary(rep.Summary)
}

// diagnostic prints file:line:col: severity: [Code] message.
func (r *reporter) diagnostic(d *diag.Diagnostic) {
	if r.quiet && !d.IsFatal() {
		return
	}
	shown := *d
	shown.File = r.relative(d.File)

	sev := r.warnColor
	if d.IsFatal() {
		sev = r.errorColor
	}
	fmt.Fprintf(r.err, "%s: %s: %s %s\n",
		shown.Location(),
		sev.Sprint(d.Severity),
		r.dimColor.Sprintf("[%s]", d.Code),
		d.Message,
	)
}

func (r *reporter) summary(s runner.Summary) {
	if r.quiet {
		return
	}

	var details []string
	if s.Reused > 0 {
		details = append(details, fmt.Sprintf("%s reused", formatNumber(s.Reused)))
	}
	if s.Skipped > 0 {
		details = append(details, fmt.Sprintf("%s without messages", formatNumber(s.Skipped)))
	}
	if s.Warnings > 0 {
		details = append(details, fmt.Sprintf("%s warnings", formatNumber(s.Warnings)))
	}
	suffix := ""
	if len(details) > 0 {
		suffix = " (" + strings.Join(details, ", ") + ")"
	}

	if s.Failed > 0 {
		fmt.Fprintf(r.out, "%s %s of %s files failed, %s messages extracted%s\n",
			r.errorColor.Sprint("✗"),
			formatNumber(s.Failed), formatNumber(s.Files), formatNumber(s.Messages), suffix)
		return
	}
	fmt.Fprintf(r.out, "%s Extracted %s messages from %s files in %.1fs%s\n",
		r.okColor.Sprint("✓"),
		formatNumber(s.Messages), formatNumber(s.Files), s.Duration.Seconds(), suffix)
}

func (r *reporter) relative(path string) string {
	if path == "" || r.root == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(r.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func (r *reporter) errorf(format string, args ...any) {
	fmt.Fprintf(r.err, "%s %s\n", r.errorColor.Sprint("error:"), fmt.Sprintf(format, args...))
}
