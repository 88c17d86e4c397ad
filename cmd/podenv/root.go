// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand builds the podenv command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	var (
		global globalFlags
		flags  runFlags
	)

	root := &cobra.Command{
		Use:   "podenv [flags] [APP [ARGS...]]",
		Short: "Run applications in containers from declarative definitions",
		Long: TitleStyle.Render("podenv") + SubtitleStyle.Render(" - run applications in containers") + `

podenv composes a container invocation from an application definition,
its capabilities, and the overrides given on the command line, then hands
it to podman or kubectl.

APP selects an application by name or by a unique name prefix; it may be
omitted when only one application is defined. Flags must come before APP:
everything after it is appended to the application command.`,
		Example: `  podenv --list                 List the defined applications
  podenv firefox                Run the 'firefox' application
  podenv --network --shell fed  Open a shell in 'fedora' with network access
  podenv --show firefox         Print the command line instead of running it`,
		Args: cobra.ArbitraryArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.verbose = global.verbose || global.debug
			setupLogging(app, global)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd.Context(), global, &flags, args)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&global.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/podenv/config.cue)")
	pf.StringVar(&global.target, "target", "", "runtime target: podman or kubernetes (default from config)")
	pf.BoolVarP(&global.verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVar(&global.debug, "debug", false, "enable debug logging")

	f := root.Flags()
	f.SetInterspersed(false)
	f.BoolVar(&flags.list, "list", false, "list the defined applications")
	f.BoolVar(&flags.show, "show", false, "print the Containerfile and the command line instead of running")
	f.BoolVar(&flags.ociSpec, "oci-spec", false, "print the resolved context as an OCI runtime-spec document")
	f.BoolVar(&flags.shell, "shell", false, "start an interactive shell instead of the application command")
	f.BoolVar(&flags.update, "update", false, "rebuild without cache, or pull again, before running")
	f.BoolVar(&flags.rebuild, "rebuild", false, "build the image again before running")
	f.StringVar(&flags.namespace, "namespace", "", "share the namespaces of the container named KEY")
	f.StringVar(&flags.name, "name", "", "container name (default is the application name)")
	f.StringVar(&flags.image, "image", "", "run IMAGE instead of the application image")
	f.StringVar(&flags.home, "home", "", "bind-mount an existing host directory and use it as HOME")
	f.StringVarP(&flags.expr, "expr", "E", "", "read applications from an inline CUE expression instead of the application files")
	f.StringArrayVarP(&flags.env, "env", "e", nil, "set an environment variable (KEY=VALUE, repeatable)")
	f.StringArrayVar(&flags.volumes, "volume", nil, "add a mount (name|hostPath[:containerPath[:ro]], repeatable)")
	addCapabilityFlags(root, &flags.toggles)

	root.AddCommand(
		newCapabilitiesCommand(app),
		newSchemaCommand(app),
		newConfigCommand(app, &global),
	)
	return root
}

// setupLogging routes slog through charmbracelet/log on stderr.
func setupLogging(app *App, global globalFlags) {
	level := log.WarnLevel
	switch {
	case global.debug:
		level = log.DebugLevel
	case global.verbose:
		level = log.InfoLevel
	}
	logger := log.NewWithOptions(app.stderr, log.Options{
		Prefix:          "podenv",
		Level:           level,
		ReportCaller:    global.debug,
		ReportTimestamp: global.debug,
	})
	slog.SetDefault(slog.New(logger))
}

// Main runs podenv with the process arguments and returns the exit code.
func Main() int {
	app := NewApp(Dependencies{})
	err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.renderError),
	)
	return int(exitCodeFor(err))
}
