// SPDX-License-Identifier: MPL-2.0

package render

import (
	"encoding/json"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/podenv/podenv/internal/execctx"
)

// podOverride is the strategic-merge document passed to `kubectl run
// --overrides`. Containers merge by name, so the fields set by kubectl's own
// flags (image, env, command) survive.
type podOverride struct {
	metav1.TypeMeta `json:",inline"`
	Spec            corev1.PodSpec `json:"spec"`
}

func renderKubernetes(c *execctx.Context) ([]string, error) {
	if err := checkKubernetes(c); err != nil {
		return nil, err
	}
	if c.Name == "" {
		return nil, fmt.Errorf("%w: kubectl run needs a container name", ErrIncompleteContext)
	}

	args := []string{"run", c.Name, "--image=" + c.Image, "--restart=Never", "--rm"}
	if c.Interactive {
		args = append(args, "--stdin")
	} else {
		args = append(args, "--attach")
	}
	if c.Terminal {
		args = append(args, "--tty")
	}
	for _, k := range c.EnvKeys() {
		args = append(args, "--env="+k+"="+c.Environment[k])
	}

	if override, ok := kubernetesOverride(c); ok {
		data, err := json.Marshal(override)
		if err != nil {
			return nil, fmt.Errorf("failed to encode pod override: %w", err)
		}
		args = append(args, "--override-type=strategic", "--overrides="+string(data))
	}

	if len(c.Command) > 0 {
		args = append(args, "--command", "--")
		args = append(args, c.Command...)
	}
	return args, nil
}

// checkKubernetes rejects every context field a pod cannot reproduce.
func checkKubernetes(c *execctx.Context) error {
	if c.Network == execctx.NetworkNone {
		return &UnsupportedOnTargetError{
			Capability: "network",
			Target:     TargetKubernetes,
			Detail:     "pods always get a network interface; enable the network capability",
		}
	}
	if c.Namespace.IsShared() {
		return &UnsupportedOnTargetError{
			Capability: "namespace",
			Target:     TargetKubernetes,
			Detail:     fmt.Sprintf("cannot join the namespaces of %q", c.Namespace.Key()),
		}
	}
	if len(c.Devices) > 0 {
		d := c.Devices[0]
		return &UnsupportedOnTargetError{Capability: d.Origin, Target: TargetKubernetes, Detail: "device " + d.Path}
	}
	for _, m := range c.Mounts {
		if m.Origin != execctx.OriginVolume {
			return &UnsupportedOnTargetError{Capability: m.Origin, Target: TargetKubernetes, Detail: "host path " + m.Source}
		}
	}
	return nil
}

func kubernetesOverride(c *execctx.Context) (podOverride, bool) {
	container := corev1.Container{Name: c.Name, WorkingDir: c.WorkDir}
	spec := corev1.PodSpec{HostNetwork: c.Network == execctx.NetworkHost}

	for i, m := range c.Mounts {
		name := fmt.Sprintf("podenv-vol-%d", i)
		container.VolumeMounts = append(container.VolumeMounts, corev1.VolumeMount{
			Name:      name,
			MountPath: m.ContainerPath,
			ReadOnly:  m.ReadOnly,
		})
		vol := corev1.Volume{Name: name}
		if m.Kind == execctx.MountNamed {
			vol.PersistentVolumeClaim = &corev1.PersistentVolumeClaimVolumeSource{ClaimName: m.Source}
		} else {
			vol.HostPath = &corev1.HostPathVolumeSource{Path: m.Source}
		}
		spec.Volumes = append(spec.Volumes, vol)
	}

	if sc := securityContext(c); sc != nil {
		container.SecurityContext = sc
	}

	needed := spec.HostNetwork || len(spec.Volumes) > 0 || container.SecurityContext != nil || container.WorkingDir != ""
	if !needed {
		return podOverride{}, false
	}
	spec.Containers = []corev1.Container{container}
	return podOverride{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Pod"},
		Spec:     spec,
	}, true
}

func securityContext(c *execctx.Context) *corev1.SecurityContext {
	if len(c.Security) == 0 && !c.RunAsRoot {
		return nil
	}
	sc := &corev1.SecurityContext{}
	if c.HasSecurity(execctx.SecurityPrivileged) {
		privileged := true
		sc.Privileged = &privileged
	}
	if c.HasSecurity(execctx.SecurityPtrace) {
		sc.Capabilities = &corev1.Capabilities{Add: []corev1.Capability{"SYS_PTRACE"}}
	}
	if c.HasSecurity(execctx.SecurityLabelDisable) {
		sc.SELinuxOptions = &corev1.SELinuxOptions{Type: "spc_t"}
	}
	if c.RunAsRoot {
		root := int64(0)
		nonRoot := false
		sc.RunAsUser = &root
		sc.RunAsNonRoot = &nonRoot
	}
	return sc
}
