// SPDX-License-Identifier: MPL-2.0

package execctx

import (
	"errors"
	"testing"
)

func TestParseMount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want Mount
	}{
		{
			name: "bind mount defaults container path to host path",
			text: "data|/home/x",
			want: Mount{Name: "data", Source: "/home/x", ContainerPath: "/home/x", Kind: MountBind, Origin: OriginVolume},
		},
		{
			name: "bind mount with container path",
			text: "cache|/tmp/a:/cache",
			want: Mount{Name: "cache", Source: "/tmp/a", ContainerPath: "/cache", Kind: MountBind, Origin: OriginVolume},
		},
		{
			name: "read-only bind mount",
			text: "etc|/etc/hosts:/etc/hosts:ro",
			want: Mount{Name: "etc", Source: "/etc/hosts", ContainerPath: "/etc/hosts", ReadOnly: true, Kind: MountBind, Origin: OriginVolume},
		},
		{
			name: "explicit rw option",
			text: "src|/src:/work:rw",
			want: Mount{Name: "src", Source: "/src", ContainerPath: "/work", Kind: MountBind, Origin: OriginVolume},
		},
		{
			name: "named volume with default path",
			text: "db|",
			want: Mount{Name: "db", Source: "db", ContainerPath: "/volumes/db", Kind: MountNamed, Origin: OriginVolume},
		},
		{
			name: "named volume with container path",
			text: "db|:/var/lib/db",
			want: Mount{Name: "db", Source: "db", ContainerPath: "/var/lib/db", Kind: MountNamed, Origin: OriginVolume},
		},
		{
			name: "home relative host path is kept for later expansion",
			text: "cfg|~/.config/app",
			want: Mount{Name: "cfg", Source: "~/.config/app", ContainerPath: "~/.config/app", Kind: MountBind, Origin: OriginVolume},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseMount(tt.text)
			if err != nil {
				t.Fatalf("ParseMount(%q) returned error: %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("ParseMount(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseMount_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{"missing pipe", "/home/x:/x"},
		{"empty string", ""},
		{"empty name", "|/home/x"},
		{"name with slash", "a/b|/home/x"},
		{"relative host path", "data|home/x"},
		{"relative container path", "data|/home/x:x"},
		{"empty container path", "data|/home/x:"},
		{"unknown option", "data|/home/x:/x:zz"},
		{"too many separators", "data|/a:/b:ro:z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseMount(tt.text)
			if err == nil {
				t.Fatalf("ParseMount(%q) expected error, got nil", tt.text)
			}
			if !errors.Is(err, ErrInvalidMountSpec) {
				t.Errorf("error does not wrap ErrInvalidMountSpec: %v", err)
			}
			var specErr *InvalidMountSpecError
			if !errors.As(err, &specErr) {
				t.Fatalf("error is not *InvalidMountSpecError: %T", err)
			}
			if specErr.Text != tt.text {
				t.Errorf("InvalidMountSpecError.Text = %q, want %q", specErr.Text, tt.text)
			}
		})
	}
}

func TestMount_ExpandHome(t *testing.T) {
	t.Parallel()

	m, err := ParseMount("cfg|~/.config/app")
	if err != nil {
		t.Fatalf("ParseMount: %v", err)
	}
	got := m.ExpandHome("/home/user")
	if got.Source != "/home/user/.config/app" || got.ContainerPath != "/home/user/.config/app" {
		t.Errorf("ExpandHome = %+v", got)
	}

	named, err := ParseMount("db|")
	if err != nil {
		t.Fatalf("ParseMount: %v", err)
	}
	if named.ExpandHome("/home/user") != named {
		t.Error("ExpandHome must not alter named volumes")
	}
}

func TestMount_String(t *testing.T) {
	t.Parallel()

	m := Mount{Source: "/a", ContainerPath: "/b", ReadOnly: true}
	if got := m.String(); got != "/a:/b:ro" {
		t.Errorf("String() = %q, want %q", got, "/a:/b:ro")
	}
}
