// SPDX-License-Identifier: MPL-2.0

package render_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/podenv/podenv/internal/capability"
	"github.com/podenv/podenv/internal/execctx"
	"github.com/podenv/podenv/internal/render"
	"github.com/podenv/podenv/internal/resolve"
	"github.com/podenv/podenv/pkg/application"
)

func TestEchoHi_EndToEnd(t *testing.T) {
	t.Parallel()

	caps, err := capability.NewSet(map[string]bool{"network": false})
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	app := application.Application{
		Name:         "hello",
		Image:        "fedora",
		Command:      []string{"echo", "hi"},
		Capabilities: caps,
	}

	c, err := resolve.NewBuilder(execctx.Host{Home: "/home/u"}).Build(app, resolve.ModeRegular, resolve.Overrides{}, "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	args, err := render.Render(c, render.TargetPodman)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	for i, a := range args {
		if a == "--network" && args[i+1] != "none" {
			t.Errorf("network enabled: --network %s", args[i+1])
		}
		if a == "--network=host" || a == "--net=host" {
			t.Errorf("network-enabling flag %q", a)
		}
	}
	if !slices.Equal(args[len(args)-2:], []string{"echo", "hi"}) {
		t.Errorf("command is not the literal echo hi: %q", args)
	}

	human, err := render.Human(c, render.TargetPodman)
	if err != nil {
		t.Fatalf("Human: %v", err)
	}
	if !strings.HasSuffix(human, "fedora echo hi") {
		t.Errorf("Human() = %q", human)
	}
}
