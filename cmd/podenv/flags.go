// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"slices"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/podenv/podenv/internal/capability"
	"github.com/podenv/podenv/internal/resolve"
)

var (
	errUpdateAndRebuild = errors.New("--update and --rebuild cannot be combined")
	errHomeNotDirectory = errors.New("not a directory")
)

var _ pflag.Value = (*toggleValue)(nil)

type (
	// runFlags holds the flags of the root command.
	runFlags struct {
		namespace string
		name      string
		image     string
		home      string
		expr      string
		env       []string
		volumes   []string
		shell     bool
		list      bool
		show      bool
		ociSpec   bool
		update    bool
		rebuild   bool
		toggles   toggleList
	}

	// globalFlags are shared by every command.
	globalFlags struct {
		configPath string
		target     string
		verbose    bool
		debug      bool
	}

	// toggleList records capability flags in command-line order.
	toggleList struct {
		toggles []resolve.Toggle
	}

	// toggleValue is the pflag.Value behind one --<id> or --no-<id> flag.
	toggleValue struct {
		id      capability.ID
		enabled bool
		list    *toggleList
	}
)

func (v *toggleValue) String() string { return "false" }

func (v *toggleValue) Type() string { return "bool" }

// Set appends a toggle. An explicit false flips the flag, so --no-x=false
// behaves like --x.
func (v *toggleValue) Set(s string) error {
	on, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	v.list.toggles = append(v.list.toggles, resolve.Toggle{ID: string(v.id), Enabled: on == v.enabled})
	return nil
}

// addCapabilityFlags registers --<id> and --no-<id> for every capability.
// When both are given the last one wins.
func addCapabilityFlags(cmd *cobra.Command, list *toggleList) {
	for _, c := range capability.All() {
		on := cmd.Flags().VarPF(&toggleValue{id: c.ID, enabled: true, list: list}, string(c.ID), "", c.Description)
		on.NoOptDefVal = "true"
		off := cmd.Flags().VarPF(&toggleValue{id: c.ID, enabled: false, list: list}, "no-"+string(c.ID), "", "Disable "+string(c.ID))
		off.NoOptDefVal = "true"
	}
}

// mode returns the context mode selected by --shell.
func (f *runFlags) mode() resolve.Mode {
	if f.shell {
		return resolve.ModeShell
	}
	return resolve.ModeRegular
}

// overrides converts the flags and the trailing arguments.
func (f *runFlags) overrides(args []string) (resolve.Overrides, error) {
	if f.update && f.rebuild {
		return resolve.Overrides{}, errUpdateAndRebuild
	}
	o := resolve.Overrides{
		Namespace:    f.namespace,
		Volumes:      slices.Clone(f.volumes),
		Capabilities: slices.Clone(f.toggles.toggles),
		Args:         slices.Clone(args),
		Image:        f.image,
		Home:         f.home,
	}
	for _, text := range f.env {
		kv, err := resolve.ParseEnvVar(text)
		if err != nil {
			return resolve.Overrides{}, err
		}
		o.Env = append(o.Env, kv)
	}
	return o, nil
}
