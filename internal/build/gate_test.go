// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"errors"
	"testing"
)

type fakeEnv struct {
	ready    bool
	err      error
	executed int
	updated  int
}

func (f *fakeEnv) Name() string { return "fake" }
func (f *fakeEnv) Info() string { return "fake env" }
func (f *fakeEnv) Ready(context.Context) bool { return f.ready }
func (f *fakeEnv) Execute(context.Context) error { f.executed++; return f.err }
func (f *fakeEnv) Update(context.Context) error { f.updated++; return f.err }

func TestNeedsBuild(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  Env
		want bool
	}{
		{"no env", nil, false},
		{"ready", &fakeEnv{ready: true}, false},
		{"not ready", &fakeEnv{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NeedsBuild(t.Context(), tt.env); got != tt.want {
				t.Errorf("NeedsBuild() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	t.Parallel()

	if err := Execute(t.Context(), nil); err != nil {
		t.Errorf("Execute(nil) = %v", err)
	}

	env := &fakeEnv{}
	if err := Execute(t.Context(), env); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if env.executed != 1 || env.updated != 0 {
		t.Errorf("executed=%d updated=%d", env.executed, env.updated)
	}
}

func TestExecute_Failure(t *testing.T) {
	t.Parallel()

	cause := errors.New("no space left")
	err := Execute(t.Context(), &fakeEnv{err: cause})
	if !errors.Is(err, ErrBuildFailed) || !errors.Is(err, cause) {
		t.Fatalf("Execute error = %v", err)
	}
	var fe *FailedError
	if !errors.As(err, &fe) || fe.Env != "fake" || fe.Op != "build" {
		t.Errorf("unexpected error: %#v", err)
	}
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	// Update runs even when the env is ready.
	env := &fakeEnv{ready: true}
	if err := Update(t.Context(), env); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if env.updated != 1 || env.executed != 0 {
		t.Errorf("executed=%d updated=%d", env.executed, env.updated)
	}

	var fe *FailedError
	err := Update(t.Context(), &fakeEnv{err: errors.New("offline")})
	if !errors.As(err, &fe) || fe.Op != "update" {
		t.Errorf("Update error = %v", err)
	}
}
