// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"golang.org/x/term"

	"github.com/podenv/podenv/internal/build"
	"github.com/podenv/podenv/internal/capability"
	"github.com/podenv/podenv/internal/config"
	"github.com/podenv/podenv/internal/container"
	"github.com/podenv/podenv/internal/execctx"
	"github.com/podenv/podenv/internal/issue"
	"github.com/podenv/podenv/internal/render"
	"github.com/podenv/podenv/internal/runner"
	"github.com/podenv/podenv/pkg/application"
)

// errNoApplications is returned when no application file defines anything.
var errNoApplications = errors.New("no applications defined")

// issueSentinels maps core sentinel errors to their catalog entries. The
// first match wins.
var issueSentinels = []struct {
	err error
	id  issue.Id
}{
	{errNoApplications, issue.NoApplicationsId},
	{config.ErrInvalidConfig, issue.ConfigLoadFailedId},
	{application.ErrInvalidApplication, issue.AppFileParseErrorId},
	{application.ErrDuplicateApplication, issue.AppFileParseErrorId},
	{application.ErrSelectorNotFound, issue.SelectorNotFoundId},
	{application.ErrAmbiguousSelector, issue.AmbiguousSelectorId},
	{capability.ErrUnknownCapability, issue.UnknownCapabilityId},
	{execctx.ErrInvalidMountSpec, issue.InvalidMountSpecId},
	{render.ErrUnsupportedOnTarget, issue.UnsupportedOnTargetId},
	{container.ErrEngineNotAvailable, issue.ContainerEngineNotFoundId},
	{build.ErrBuildRequiredButMissing, issue.BuildRequiredButMissingId},
	{build.ErrBuildFailed, issue.BuildFailedId},
	{runner.ErrExecutionFailed, issue.ExecutionFailedId},
	{os.ErrPermission, issue.PermissionDeniedId},
}

// issueID returns the catalog entry explaining err, or 0.
func issueID(err error) issue.Id {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.Issue != 0 {
		return ae.Issue
	}
	for _, s := range issueSentinels {
		if errors.Is(err, s.err) {
			return s.id
		}
	}
	return 0
}

// actionable wraps err with the operation that failed and links its issue.
func actionable(err error, operation, resource string, suggestions ...string) error {
	return issue.NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		WithSuggestion(suggestions...).
		WithIssue(issueID(err)).
		Wrap(err).
		BuildError()
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderError is the fang error handler. Exit codes passed through from the
// runtime and interrupts print nothing; verbose mode appends the issue
// explanation rendered as markdown.
func (a *App) renderError(w io.Writer, _ fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}

	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, a.verbose))

	id := issueID(err)
	if id == 0 {
		return
	}
	if !a.verbose {
		fmt.Fprintln(w, WarningStyle.Render("Run with --verbose for more details."))
		return
	}
	explanation := issue.Get(id)
	if explanation == nil {
		return
	}
	md, rerr := explanation.Render(markdownStyle(w))
	if rerr != nil {
		return
	}
	fmt.Fprint(w, md)
}

// markdownStyle picks the glamour style for w.
func markdownStyle(w io.Writer) string {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "dark"
	}
	return "notty"
}
