// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/podenv/podenv/internal/build"
	"github.com/podenv/podenv/internal/config"
	"github.com/podenv/podenv/internal/container"
	"github.com/podenv/podenv/internal/issue"
	"github.com/podenv/podenv/internal/render"
	"github.com/podenv/podenv/internal/resolve"
	"github.com/podenv/podenv/internal/runner"
	"github.com/podenv/podenv/pkg/application"
)

// run selects an application, resolves its context and executes it.
func (a *App) run(ctx context.Context, global globalFlags, flags *runFlags, args []string) error {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: global.configPath})
	if err != nil {
		return err
	}
	target, err := resolveTarget(cfg, global)
	if err != nil {
		return usageError(err)
	}
	catalog, err := loadCatalog(cfg, flags.expr)
	if err != nil {
		return err
	}
	if flags.list {
		return a.listApplications(catalog)
	}

	selector := ""
	if len(args) > 0 {
		selector, args = args[0], args[1:]
	}
	app, err := catalog.Select(selector)
	if err != nil {
		return actionable(err, "select application", selector,
			"Run 'podenv --list' to see the defined applications")
	}
	overrides, err := flags.overrides(args)
	if err != nil {
		return usageError(err)
	}
	if overrides.Home, err = homeDir(overrides.Home, a.Host.Home); err != nil {
		return usageError(err)
	}

	builder := resolve.NewBuilder(a.Host, resolve.WithShell(cfg.Shell...))
	c, err := builder.Build(app, flags.mode(), overrides, flags.name)
	if err != nil {
		return actionable(err, "resolve application", app.Name,
			"Run 'podenv capabilities' to see the capability names",
			"Mounts use the form name|hostPath[:containerPath[:ro]]")
	}
	slog.Debug("resolved context", "app", app.Name, "image", c.Image, "network", c.Network)

	if flags.ociSpec {
		data, err := json.MarshalIndent(render.OCISpec(c), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode OCI spec: %w", err)
		}
		fmt.Fprintln(a.stdout, string(data))
		return nil
	}

	// The cluster cannot pull an image that only exists in local storage.
	if target == render.TargetKubernetes && app.NeedsBuild() && overrides.Image == "" {
		return actionable(&render.UnsupportedOnTargetError{
			Capability: "containerfile",
			Target:     target,
			Detail:     "image " + app.BuildTag() + " is only built locally",
		}, "render command line", target.String(),
			"Push the image to a registry and pass it with --image",
			"Use --target podman to build and run it locally")
	}

	argv, err := render.Render(c, target)
	if err != nil {
		return actionable(err, "render command line", target.String(),
			"Use --target podman, or disable the capability with --no-<id>")
	}
	if target == render.TargetKubernetes && cfg.KubeNamespace != "" {
		argv = append([]string{"--namespace=" + cfg.KubeNamespace}, argv...)
	}

	engine := container.NewPodmanEngine(cfg.Engine)
	r := runner.New(
		runner.WithProgram(render.TargetPodman, cfg.Engine),
		runner.WithProgram(render.TargetKubernetes, cfg.Kubectl),
		runner.WithKiller(render.TargetPodman, engine.Kill),
		runner.WithStdio(a.stdin, a.stdout, a.stderr),
	)

	// The cluster pulls images itself; only the local engine is gated.
	var env build.Env
	if target == render.TargetPodman {
		imageApp := app
		if overrides.Image != "" {
			imageApp = app.WithImage(overrides.Image)
		}
		env, err = build.ForApplication(imageApp, engine, build.WithOutput(a.stderr, a.stderr))
		if err != nil {
			return actionable(err, "prepare image", app.Name,
				"Declare either image or containerfile for the application")
		}
		if flags.show && imageApp.NeedsBuild() {
			fmt.Fprintln(a.stdout, env.Info())
		}
	}

	if flags.show {
		fmt.Fprintln(a.stdout, render.JoinArgs(append([]string{r.Program(target)}, argv...)))
		return nil
	}

	if env != nil {
		if !engine.Available(ctx) {
			return actionable(&container.EngineNotAvailableError{Engine: cfg.Engine, Reason: "it does not answer 'version'"},
				"prepare image", app.Name,
				"Install podman or set 'engine' in the podenv configuration")
		}
		if err := prepareImage(ctx, env, flags); err != nil {
			return err
		}
	}

	code, err := r.Run(ctx, target, c.Name, argv)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return &ExitError{Code: code, Err: err}
		}
		return &ExitError{Code: code, Err: actionable(err, "run application", app.Name,
			"Check that "+r.Program(target)+" is installed and working")}
	}
	if !code.IsSuccess() {
		return &ExitError{Code: code}
	}
	return nil
}

// resolveTarget returns the --target flag, or the configured target.
func resolveTarget(cfg *config.Config, global globalFlags) (render.Target, error) {
	target := render.Target(cfg.Target)
	if global.target != "" {
		target = render.Target(global.target)
	}
	if err := target.Validate(); err != nil {
		return "", err
	}
	return target, nil
}

// loadCatalog reads every configured application file, or only the
// applications of expr when one is given.
func loadCatalog(cfg *config.Config, expr string) (*application.Catalog, error) {
	source := strings.Join(cfg.Apps, ", ")
	var (
		catalog *application.Catalog
		err     error
	)
	if expr != "" {
		source = "--expr"
		catalog, err = parseExpr(expr)
	} else {
		catalog, err = application.LoadCatalog(cfg.Apps...)
	}
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load applications").
			WithResource(source).
			WithSuggestion("Run 'podenv schema' to see the expected record shape").
			WithIssue(issue.AppFileParseErrorId).
			Wrap(err).
			BuildError()
	}
	if catalog.Len() == 0 {
		return nil, issue.NewErrorContext().
			WithOperation("load applications").
			WithSuggestion("Create " + config.ConfigDir() + "/apps.cue or list files under 'apps' in the configuration").
			WithIssue(issue.NoApplicationsId).
			Wrap(errNoApplications).
			BuildError()
	}
	return catalog, nil
}

// parseExpr decodes an inline #Apps document such as
// `apps: hello: {image: "alpine", command: "echo hi"}`.
func parseExpr(expr string) (*application.Catalog, error) {
	apps, err := application.ParseCUE([]byte(expr), "--expr")
	if err != nil {
		return nil, err
	}
	return application.NewCatalog(apps...)
}

// homeDir resolves the --home directory on the host: "~" expands against
// hostHome, symlinks are followed and the result must be a directory.
func homeDir(dir, hostHome string) (string, error) {
	if dir == "" {
		return "", nil
	}
	expanded := dir
	if rest, ok := strings.CutPrefix(dir, "~"); ok && (rest == "" || strings.HasPrefix(rest, "/")) {
		expanded = filepath.Join(hostHome, rest)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("--home %s: %w", dir, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("--home %s: %w", dir, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("--home %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("--home %s: %w", dir, errHomeNotDirectory)
	}
	return resolved, nil
}

// prepareImage runs the build gate. --update refreshes and --rebuild builds
// even when the image is present.
func prepareImage(ctx context.Context, env build.Env, flags *runFlags) error {
	switch {
	case flags.update:
		return build.Update(ctx, env)
	case flags.rebuild:
		return build.Execute(ctx, env)
	case build.NeedsBuild(ctx, env):
		return build.Execute(ctx, env)
	default:
		return nil
	}
}
