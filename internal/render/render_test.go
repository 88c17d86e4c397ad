// SPDX-License-Identifier: MPL-2.0

package render

import (
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"

	specs "github.com/opencontainers/runtime-spec/specs-go"

	"github.com/podenv/podenv/internal/execctx"
)

func fullContext() *execctx.Context {
	c := execctx.New()
	c.Name = "web"
	c.Image = "fedora"
	c.Command = []string{"sh", "-c", "echo $HOME"}
	c.SetEnv("PORT", "8080")
	c.SetEnv("LANG", "C.UTF-8")
	c.AddMount(execctx.Mount{Name: "site", Source: "/home/u/site", ContainerPath: "/srv", Kind: execctx.MountBind, Origin: execctx.OriginVolume})
	c.AddMount(execctx.Mount{Name: "cache", Source: "cache", ContainerPath: "/volumes/cache", ReadOnly: true, Kind: execctx.MountNamed, Origin: execctx.OriginVolume})
	c.AddDevice(execctx.Device{Path: "/dev/kvm", Origin: "kvm"})
	c.AddSecurity(execctx.SecurityPtrace)
	c.AddSecurity(execctx.SecurityPrivileged)
	c.AddSecurity(execctx.SecurityLabelDisable)
	c.Network = execctx.NetworkPrivate
	c.Terminal = true
	c.Interactive = true
	c.RunAsRoot = true
	c.WorkDir = "/srv"
	return c
}

func TestRender_Podman(t *testing.T) {
	t.Parallel()

	got, err := Render(fullContext(), TargetPodman)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := []string{
		"run", "--rm", "--name", "web", "-i", "-t",
		"--network", "private",
		"--cap-add", "SYS_PTRACE",
		"--security-opt", "label=disable",
		"--privileged",
		"--user", "0",
		"--workdir", "/srv",
		"--device", "/dev/kvm",
		"--env", "LANG=C.UTF-8",
		"--env", "PORT=8080",
		"--volume", "/home/u/site:/srv",
		"--volume", "cache:/volumes/cache:ro",
		"fedora", "sh", "-c", "echo $HOME",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Render() =\n%q\nwant\n%q", got, want)
	}
}

func TestRender_PodmanMinimal(t *testing.T) {
	t.Parallel()

	c := execctx.New()
	c.Image = "fedora"
	got, err := Render(c, TargetPodman)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if want := []string{"run", "--rm", "--network", "none", "fedora"}; !slices.Equal(got, want) {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_PodmanSharedNamespace(t *testing.T) {
	t.Parallel()

	c := execctx.New()
	c.Image = "fedora"
	c.Namespace = execctx.SharedNamespace("dev")
	c.Network = execctx.NetworkShared

	got, err := Render(c, TargetPodman)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	joined := strings.Join(got, " ")
	for _, want := range []string{"--network container:dev", "--pid container:dev", "--ipc container:dev"} {
		if !strings.Contains(joined, want) {
			t.Errorf("%q missing from %q", want, joined)
		}
	}
}

func TestRender_EachFieldOnce(t *testing.T) {
	t.Parallel()

	got, err := Render(fullContext(), TargetPodman)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, flag := range []string{"--name", "-i", "-t", "--network", "--user", "--workdir", "--privileged", "--cap-add"} {
		count := 0
		for _, a := range got {
			if a == flag {
				count++
			}
		}
		if count != 1 {
			t.Errorf("flag %s appears %d times", flag, count)
		}
	}
}

func TestRender_Errors(t *testing.T) {
	t.Parallel()

	c := execctx.New()
	if _, err := Render(c, TargetPodman); !errors.Is(err, ErrIncompleteContext) {
		t.Errorf("missing image: error = %v", err)
	}
	c.Image = "fedora"
	if _, err := Render(c, Target("lxc")); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("unknown target: error = %v", err)
	}
}

func TestRender_Kubernetes(t *testing.T) {
	t.Parallel()

	c := execctx.New()
	c.Name = "web"
	c.Image = "fedora"
	c.Command = []string{"python3", "-m", "http.server"}
	c.Network = execctx.NetworkPrivate
	c.SetEnv("PORT", "8000")
	c.Interactive = true
	c.Terminal = true

	got, err := Render(c, TargetKubernetes)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := []string{
		"run", "web", "--image=fedora", "--restart=Never", "--rm", "--stdin", "--tty",
		"--env=PORT=8000",
		"--command", "--", "python3", "-m", "http.server",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Render() =\n%q\nwant\n%q", got, want)
	}
}

func TestRender_KubernetesOverride(t *testing.T) {
	t.Parallel()

	c := execctx.New()
	c.Name = "tools"
	c.Image = "fedora"
	c.Network = execctx.NetworkHost
	c.RunAsRoot = true
	c.WorkDir = "/work"
	c.AddSecurity(execctx.SecurityPtrace)
	c.AddMount(execctx.Mount{Name: "src", Source: "/home/u/src", ContainerPath: "/work", Kind: execctx.MountBind, Origin: execctx.OriginVolume})
	c.AddMount(execctx.Mount{Name: "db", Source: "db", ContainerPath: "/volumes/db", Kind: execctx.MountNamed, Origin: execctx.OriginVolume})

	got, err := Render(c, TargetKubernetes)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !slices.Contains(got, "--attach") || !slices.Contains(got, "--override-type=strategic") {
		t.Fatalf("missing --attach or --override-type in %q", got)
	}

	var raw string
	for _, a := range got {
		if v, ok := strings.CutPrefix(a, "--overrides="); ok {
			raw = v
		}
	}
	var doc struct {
		APIVersion string `json:"apiVersion"`
		Spec       struct {
			HostNetwork bool `json:"hostNetwork"`
			Containers  []struct {
				Name            string `json:"name"`
				WorkingDir      string `json:"workingDir"`
				SecurityContext struct {
					RunAsUser    *int64 `json:"runAsUser"`
					Capabilities struct {
						Add []string `json:"add"`
					} `json:"capabilities"`
				} `json:"securityContext"`
				VolumeMounts []struct {
					MountPath string `json:"mountPath"`
				} `json:"volumeMounts"`
			} `json:"containers"`
			Volumes []struct {
				HostPath *struct {
					Path string `json:"path"`
				} `json:"hostPath"`
				PersistentVolumeClaim *struct {
					ClaimName string `json:"claimName"`
				} `json:"persistentVolumeClaim"`
			} `json:"volumes"`
		} `json:"spec"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("invalid override json %q: %v", raw, err)
	}
	if doc.APIVersion != "v1" || !doc.Spec.HostNetwork {
		t.Errorf("override header = %+v", doc)
	}
	if len(doc.Spec.Containers) != 1 || doc.Spec.Containers[0].Name != "tools" {
		t.Fatalf("override containers = %+v", doc.Spec.Containers)
	}
	ctr := doc.Spec.Containers[0]
	if ctr.WorkingDir != "/work" || ctr.SecurityContext.RunAsUser == nil || *ctr.SecurityContext.RunAsUser != 0 {
		t.Errorf("container = %+v", ctr)
	}
	if !slices.Equal(ctr.SecurityContext.Capabilities.Add, []string{"SYS_PTRACE"}) {
		t.Errorf("capabilities = %v", ctr.SecurityContext.Capabilities.Add)
	}
	if len(ctr.VolumeMounts) != 2 || ctr.VolumeMounts[0].MountPath != "/work" {
		t.Errorf("volume mounts = %+v", ctr.VolumeMounts)
	}
	if len(doc.Spec.Volumes) != 2 || doc.Spec.Volumes[0].HostPath == nil || doc.Spec.Volumes[1].PersistentVolumeClaim == nil {
		t.Errorf("volumes = %+v", doc.Spec.Volumes)
	}
}

func TestRender_KubernetesUnsupported(t *testing.T) {
	t.Parallel()

	base := func() *execctx.Context {
		c := execctx.New()
		c.Name = "app"
		c.Image = "fedora"
		c.Network = execctx.NetworkPrivate
		return c
	}

	tests := []struct {
		name       string
		mutate     func(*execctx.Context)
		capability string
	}{
		{"no network", func(c *execctx.Context) { c.Network = execctx.NetworkNone }, "network"},
		{"shared namespace", func(c *execctx.Context) { c.Namespace = execctx.SharedNamespace("dev") }, "namespace"},
		{"device", func(c *execctx.Context) { c.AddDevice(execctx.Device{Path: "/dev/dri", Origin: "dri"}) }, "dri"},
		{"host socket", func(c *execctx.Context) {
			c.AddMount(execctx.Mount{Source: "/tmp/.X11-unix", ContainerPath: "/tmp/.X11-unix", Kind: execctx.MountBind, Origin: "x11"})
		}, "x11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := base()
			tt.mutate(c)
			_, err := Render(c, TargetKubernetes)
			var unsupported *UnsupportedOnTargetError
			if !errors.As(err, &unsupported) {
				t.Fatalf("error = %v, want UnsupportedOnTargetError", err)
			}
			if unsupported.Capability != tt.capability || unsupported.Target != TargetKubernetes {
				t.Errorf("got %+v, want capability %q", unsupported, tt.capability)
			}
			if !errors.Is(err, ErrUnsupportedOnTarget) {
				t.Error("error does not wrap ErrUnsupportedOnTarget")
			}
		})
	}
}

func TestHuman(t *testing.T) {
	t.Parallel()

	got, err := Human(fullContext(), TargetPodman)
	if err != nil {
		t.Fatalf("Human: %v", err)
	}
	if !strings.HasPrefix(got, "podman run --rm --name web ") {
		t.Errorf("Human() = %q", got)
	}
	if !strings.HasSuffix(got, `fedora sh -c 'echo $HOME'`) {
		t.Errorf("Human() did not quote the command: %q", got)
	}
}

func TestJoinArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []string
		want string
	}{
		{[]string{"echo", "hi"}, "echo hi"},
		{[]string{"echo", "hello world"}, "echo 'hello world'"},
		{[]string{"echo", ""}, "echo ''"},
	}
	for _, tt := range tests {
		if got := JoinArgs(tt.in); got != tt.want {
			t.Errorf("JoinArgs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOCISpec(t *testing.T) {
	t.Parallel()

	spec := OCISpec(fullContext())
	if !slices.Equal(spec.Process.Args, []string{"sh", "-c", "echo $HOME"}) {
		t.Errorf("Args = %q", spec.Process.Args)
	}
	if !slices.Equal(spec.Process.Env, []string{"LANG=C.UTF-8", "PORT=8080"}) {
		t.Errorf("Env = %q", spec.Process.Env)
	}
	if spec.Process.Cwd != "/srv" || !spec.Process.Terminal {
		t.Errorf("Process = %+v", spec.Process)
	}
	if len(spec.Mounts) != 2 || spec.Mounts[1].Type != "volume" || !slices.Contains(spec.Mounts[1].Options, "ro") {
		t.Errorf("Mounts = %+v", spec.Mounts)
	}
	if spec.Annotations[AnnotationImage] != "fedora" {
		t.Errorf("Annotations = %v", spec.Annotations)
	}
	if _, ok := spec.Annotations[AnnotationDevices]; !ok && len(spec.Linux.Devices) != 1 {
		t.Errorf("/dev/kvm neither exported nor annotated: %+v", spec.Linux.Devices)
	}
	hasNet := slices.ContainsFunc(spec.Linux.Namespaces, func(ns specs.LinuxNamespace) bool { return ns.Type == specs.NetworkNamespace })
	if !hasNet {
		t.Error("private network must keep a network namespace")
	}
}

func TestOCISpec_Devices(t *testing.T) {
	t.Parallel()

	c := execctx.New()
	c.Image = "fedora"
	c.AddDevice(execctx.Device{Path: "/dev/kvm", Origin: "kvm"})
	c.AddDevice(execctx.Device{Path: "/dev/dri", Origin: "gpu"})

	lookup := func(path string) (specs.LinuxDevice, error) {
		if path == "/dev/kvm" {
			return specs.LinuxDevice{Type: "c", Major: 10, Minor: 232}, nil
		}
		return specs.LinuxDevice{}, errors.New("no such device")
	}
	spec := OCISpec(c, WithDeviceLookup(lookup))

	want := []specs.LinuxDevice{{Path: "/dev/kvm", Type: "c", Major: 10, Minor: 232}}
	if !reflect.DeepEqual(spec.Linux.Devices, want) {
		t.Errorf("Devices = %+v, want %+v", spec.Linux.Devices, want)
	}
	if spec.Linux.Resources == nil || len(spec.Linux.Resources.Devices) != 1 {
		t.Fatalf("Resources = %+v", spec.Linux.Resources)
	}
	rule := spec.Linux.Resources.Devices[0]
	if !rule.Allow || rule.Type != "c" || *rule.Major != 10 || *rule.Minor != 232 || rule.Access != "rwm" {
		t.Errorf("cgroup rule = %+v", rule)
	}
	if got := spec.Annotations[AnnotationDevices]; got != "/dev/dri" {
		t.Errorf("unresolved devices annotation = %q", got)
	}
}
