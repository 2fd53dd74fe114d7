package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mvp-joe/intl-extract/internal/diag"
	"github.com/mvp-joe/intl-extract/internal/runner"
)

// Test Plan for reporter and progress helpers:
// - Diagnostics use paths relative to the root
// - Quiet drops warnings and summaries but keeps errors
// - Summary lists reused, skipped and warning counts
// - formatNumber inserts thousand separators

func TestReporter_Diagnostic(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	r := newReporter(&out, &errOut, "/project", false, true)

	r.diagnostic(diag.New(diag.ArgumentShapeError, "/project/src/a.js", 3, 7, "bad call"))
	r.diagnostic(diag.New(diag.MissingDefaultMessage, "/elsewhere/b.js", 1, 1, "dropped"))

	assert.Equal(t,
		"src/a.js:3:7: error: [ArgumentShapeError] bad call\n"+
			"/elsewhere/b.js:1:1: warning: [MissingDefaultMessage] dropped\n",
		errOut.String())
	assert.Empty(t, out.String())
}

func TestReporter_Quiet(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	r := newReporter(&out, &errOut, "/project", true, true)

	r.diagnostic(diag.New(diag.MissingDefaultMessage, "/project/a.js", 1, 1, "dropped"))
	r.summary(runner.Summary{Files: 1})
	assert.Empty(t, errOut.String())
	assert.Empty(t, out.String())

	r.diagnostic(diag.New(diag.SyntaxError, "/project/a.js", 1, 1, "unable to parse source"))
	assert.Contains(t, errOut.String(), "[SyntaxError]")
}

func TestReporter_Summary(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	r := newReporter(&out, &bytes.Buffer{}, "", false, true)

	r.summary(runner.Summary{Files: 1200, Messages: 3400, Reused: 2, Skipped: 5, Warnings: 1, Duration: 1500 * time.Millisecond})
	assert.Equal(t, "✓ Extracted 3,400 messages from 1,200 files in 1.5s (2 reused, 5 without messages, 1 warnings)\n", out.String())

	out.Reset()
	r.summary(runner.Summary{Files: 3, Failed: 1, Messages: 2})
	assert.Equal(t, "✗ 1 of 3 files failed, 2 messages extracted\n", out.String())
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,234", formatNumber(1234))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
	assert.Equal(t, "-1,000", formatNumber(-1000))
}
