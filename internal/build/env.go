// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/podenv/podenv/internal/container"
	"github.com/podenv/podenv/pkg/application"
)

// LabelContainerfileDigest records the digest of the recipe a local image
// was built from.
const LabelContainerfileDigest = "io.podenv.containerfile.digest"

// Compile-time interface checks
var (
	_ Env = (*ContainerfileEnv)(nil)
	_ Env = (*ImageEnv)(nil)
)

type (
	// ContainerfileEnv builds an application's inline Containerfile into a
	// digest-tagged local image.
	ContainerfileEnv struct {
		app      application.Application
		engine   container.Engine
		cacheDir string
		stdout   io.Writer
		stderr   io.Writer
	}

	// ImageEnv pulls an application's image when it is missing locally.
	ImageEnv struct {
		image  string
		engine container.Engine
		stdout io.Writer
		stderr io.Writer
	}

	// Option configures the environments returned by ForApplication.
	Option func(*options)

	options struct {
		cacheDir string
		stdout   io.Writer
		stderr   io.Writer
	}
)

// WithCacheDir sets the directory holding build contexts.
func WithCacheDir(dir string) Option {
	return func(o *options) { o.cacheDir = dir }
}

// WithOutput sets where engine output is streamed.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(o *options) {
		o.stdout = stdout
		o.stderr = stderr
	}
}

// DefaultCacheDir returns the per-user directory for build contexts.
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, "podenv", "build")
}

// ForApplication returns the environment preparing app's image on engine.
func ForApplication(app application.Application, engine container.Engine, opts ...Option) (Env, error) {
	o := options{cacheDir: DefaultCacheDir(), stdout: os.Stderr, stderr: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}
	switch {
	case app.NeedsBuild():
		return &ContainerfileEnv{app: app, engine: engine, cacheDir: o.cacheDir, stdout: o.stdout, stderr: o.stderr}, nil
	case app.Image != "":
		return &ImageEnv{image: app.Image, engine: engine, stdout: o.stdout, stderr: o.stderr}, nil
	default:
		return nil, &RequiredButMissingError{App: app.Name}
	}
}

// Name returns the image tag being built.
func (e *ContainerfileEnv) Name() string { return e.app.BuildTag() }

// Info returns the Containerfile.
func (e *ContainerfileEnv) Info() string {
	return fmt.Sprintf("# Containerfile for %s\n%s", e.app.BuildTag(), e.app.Containerfile)
}

// Ready reports whether the tagged image exists. Engine failures count as
// not ready so the build surfaces the real error.
func (e *ContainerfileEnv) Ready(ctx context.Context) bool {
	exists, err := e.engine.ImageExists(ctx, e.app.BuildTag())
	if err != nil {
		slog.Debug("image check failed", "image", e.app.BuildTag(), "error", err)
		return false
	}
	return exists
}

// Execute builds the image using the cache.
func (e *ContainerfileEnv) Execute(ctx context.Context) error {
	return e.build(ctx, false)
}

// Update rebuilds the image without cache, refreshing base images.
func (e *ContainerfileEnv) Update(ctx context.Context) error {
	return e.build(ctx, true)
}

func (e *ContainerfileEnv) build(ctx context.Context, fresh bool) error {
	dir := filepath.Join(e.cacheDir, e.app.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create build context: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Containerfile"), []byte(e.app.Containerfile), 0o644); err != nil {
		return fmt.Errorf("failed to write Containerfile: %w", err)
	}
	return e.engine.Build(ctx, container.BuildOptions{
		ContextDir:    dir,
		Containerfile: "Containerfile",
		Tag:           e.app.BuildTag(),
		Labels:        e.labels(),
		NoCache:       fresh,
		Pull:          fresh,
		Stdout:        e.stdout,
		Stderr:        e.stderr,
	})
}

func (e *ContainerfileEnv) labels() map[string]string {
	labels := map[string]string{
		ocispec.AnnotationTitle:   e.app.Name,
		LabelContainerfileDigest: digest.FromString(e.app.Containerfile).String(),
	}
	if e.app.Description != "" {
		labels[ocispec.AnnotationDescription] = e.app.Description
	}
	return labels
}

// Name returns the image reference.
func (e *ImageEnv) Name() string { return e.image }

// Info describes the pull.
func (e *ImageEnv) Info() string { return "# Image " + e.image }

// Ready reports whether the image is present locally.
func (e *ImageEnv) Ready(ctx context.Context) bool {
	exists, err := e.engine.ImageExists(ctx, e.image)
	if err != nil {
		slog.Debug("image check failed", "image", e.image, "error", err)
		return false
	}
	return exists
}

// Execute pulls the image.
func (e *ImageEnv) Execute(ctx context.Context) error {
	return e.engine.Pull(ctx, container.PullOptions{Image: e.image, Stdout: e.stdout, Stderr: e.stderr})
}

// Update pulls the image again.
func (e *ImageEnv) Update(ctx context.Context) error {
	return e.Execute(ctx)
}
