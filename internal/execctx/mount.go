// SPDX-License-Identifier: MPL-2.0

package execctx

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

const (
	// MountBind bind-mounts a host path.
	MountBind MountKind = "bind"
	// MountNamed mounts a runtime-managed named volume.
	MountNamed MountKind = "named"

	// OriginVolume marks mounts declared by the application or the --volume flag.
	OriginVolume = "volume"

	// DefaultVolumeRoot is the container directory under which named volumes
	// are mounted when the spec does not name a container path.
	DefaultVolumeRoot = "/volumes"
)

// ErrInvalidMountSpec is the sentinel error wrapped by InvalidMountSpecError.
var ErrInvalidMountSpec = errors.New("invalid mount spec")

type (
	// MountKind distinguishes bind mounts from named volumes.
	MountKind string

	// Mount is a single volume mount of the container.
	Mount struct {
		// Name is the label given before the '|' separator.
		Name string
		// Source is the host path of a bind mount, or the volume name.
		Source string
		// ContainerPath is the mount target inside the container.
		ContainerPath string
		ReadOnly      bool
		Kind          MountKind
		// Origin is the capability id that added the mount, or OriginVolume.
		Origin string
	}

	// InvalidMountSpecError is returned when a mount-spec string does not
	// follow the NAME|HOSTPATH[:CONTAINERPATH] grammar.
	InvalidMountSpecError struct {
		Text   string
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidMountSpecError) Error() string {
	return fmt.Sprintf("invalid mount spec %q: %s", e.Text, e.Reason)
}

// Unwrap returns ErrInvalidMountSpec for errors.Is() compatibility.
func (e *InvalidMountSpecError) Unwrap() error { return ErrInvalidMountSpec }

// ParseMount parses the textual mount form NAME|HOSTPATH[:CONTAINERPATH[:ro]].
//
// A missing container path defaults to the host path for bind mounts and to
// DefaultVolumeRoot/NAME for named volumes. Host paths may start with "~",
// which ExpandHome resolves later against the host home directory.
func ParseMount(text string) (Mount, error) {
	name, rest, found := strings.Cut(text, "|")
	if !found {
		return Mount{}, &InvalidMountSpecError{Text: text, Reason: "missing '|' separator (expected name|hostPath[:containerPath])"}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Mount{}, &InvalidMountSpecError{Text: text, Reason: "volume name must not be empty"}
	}
	if strings.ContainsAny(name, ":/") {
		return Mount{}, &InvalidMountSpecError{Text: text, Reason: "volume name must not contain ':' or '/'"}
	}

	parts := strings.Split(rest, ":")
	if len(parts) > 3 {
		return Mount{}, &InvalidMountSpecError{Text: text, Reason: "too many ':' separators"}
	}

	m := Mount{Name: name, Origin: OriginVolume}
	hostPath := parts[0]
	containerPath := ""
	if len(parts) >= 2 {
		containerPath = parts[1]
		if containerPath == "" {
			return Mount{}, &InvalidMountSpecError{Text: text, Reason: "container path must not be empty after ':'"}
		}
		if !path.IsAbs(containerPath) {
			return Mount{}, &InvalidMountSpecError{Text: text, Reason: "container path must be absolute"}
		}
	}
	if len(parts) == 3 {
		switch parts[2] {
		case "ro":
			m.ReadOnly = true
		case "rw":
		default:
			return Mount{}, &InvalidMountSpecError{Text: text, Reason: fmt.Sprintf("unknown mount option %q (valid: ro, rw)", parts[2])}
		}
	}

	if hostPath == "" {
		m.Kind = MountNamed
		m.Source = name
		m.ContainerPath = containerPath
		if m.ContainerPath == "" {
			m.ContainerPath = path.Join(DefaultVolumeRoot, name)
		}
		return m, nil
	}

	if !path.IsAbs(hostPath) && hostPath != "~" && !strings.HasPrefix(hostPath, "~/") {
		return Mount{}, &InvalidMountSpecError{Text: text, Reason: "host path must be absolute or start with '~/'"}
	}
	m.Kind = MountBind
	m.Source = hostPath
	m.ContainerPath = containerPath
	if m.ContainerPath == "" {
		m.ContainerPath = hostPath
	}
	return m, nil
}

// ExpandHome resolves a leading "~" in the source and container path of a
// bind mount against home. Named volumes are returned unchanged.
func (m Mount) ExpandHome(home string) Mount {
	if m.Kind != MountBind || home == "" {
		return m
	}
	m.Source = expandTilde(m.Source, home)
	m.ContainerPath = expandTilde(m.ContainerPath, home)
	return m
}

// String returns the mount in "source:containerPath[:ro]" form.
func (m Mount) String() string {
	s := m.Source + ":" + m.ContainerPath
	if m.ReadOnly {
		s += ":ro"
	}
	return s
}

func expandTilde(p, home string) string {
	if p == "~" {
		return home
	}
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		return path.Join(home, rest)
	}
	return p
}
