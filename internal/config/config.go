// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/podenv/podenv/internal/issue"
	"github.com/podenv/podenv/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "podenv"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides (PODENV_TARGET, ...).
	EnvPrefix = "PODENV"
	// EnvConfigFile names the environment variable selecting the config file.
	EnvConfigFile = "PODENV_CONFIG"
)

// DefaultAppFiles are looked up in the config directory when no apps are
// configured.
var DefaultAppFiles = []string{"apps.cue", "apps.toml"}

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the podenv configuration directory under the XDG config home.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// loadWithOptions performs option-driven config loading. It returns the
// settings and the path of the file they were read from ("" for defaults).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	defaults := DefaultConfig()
	v.SetDefault("engine", defaults.Engine)
	v.SetDefault("kubectl", defaults.Kubectl)
	v.SetDefault("target", defaults.Target)
	v.SetDefault("shell", defaults.Shell)
	v.SetDefault("apps", []string{})
	v.SetDefault("kube_namespace", defaults.KubeNamespace)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfgDir := opts.ConfigDirPath
	if cfgDir == "" {
		cfgDir = ConfigDir()
	}

	path := opts.ConfigFilePath
	explicit := path != ""
	if !explicit {
		path = filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	}

	resolvedPath := ""
	switch {
	case fileExists(path):
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithIssue(issue.ConfigLoadFailedId).
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'podenv config' to see the effective configuration").
				Wrap(err).
				BuildError()
		}
		resolvedPath = path
		cfgDir = filepath.Dir(path)
	case explicit:
		return nil, "", issue.NewErrorContext().
			WithIssue(issue.ConfigLoadFailedId).
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Verify the file path given by --config or " + EnvConfigFile).
			Wrap(fmt.Errorf("config file not found: %s", path)).
			BuildError()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithIssue(issue.ConfigLoadFailedId).
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check " + EnvPrefix + "_* environment variables for typos").
			Wrap(err).
			BuildError()
	}

	cfg.Apps = resolveApps(cfgDir, cfg.Apps)
	return &cfg, resolvedPath, nil
}

// resolveApps makes configured application files absolute, or falls back to
// the default files present in dir.
func resolveApps(dir string, apps []string) []string {
	if len(apps) == 0 {
		var found []string
		for _, name := range DefaultAppFiles {
			if p := filepath.Join(dir, name); fileExists(p) {
				found = append(found, p)
			}
		}
		return found
	}
	out := make([]string, 0, len(apps))
	for _, p := range apps {
		if strings.HasPrefix(p, "~/") {
			p = filepath.Join(xdg.Home, p[2:])
		} else if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		out = append(out, p)
	}
	return out
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
//
// Note: This uses cueutil.Unify instead of cueutil.ParseAndDecode because the
// settings merge into Viper's map, keeping defaults and env overrides.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	unified, err := cueutil.Unify([]byte(configSchema), data, "#Config",
		cueutil.WithFilename(path), cueutil.WithConcrete(false))
	if err != nil {
		return err
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GenerateCUE generates a CUE representation of the configuration.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// podenv configuration\n\n")
	fmt.Fprintf(&sb, "engine: %q\n", cfg.Engine)
	fmt.Fprintf(&sb, "kubectl: %q\n", cfg.Kubectl)
	fmt.Fprintf(&sb, "target: %q\n", cfg.Target)
	sb.WriteString("shell: " + cueList(cfg.Shell) + "\n")
	sb.WriteString("apps: " + cueList(cfg.Apps) + "\n")
	if cfg.KubeNamespace != "" {
		fmt.Fprintf(&sb, "kube_namespace: %q\n", cfg.KubeNamespace)
	}
	return sb.String()
}

func cueList(items []string) string {
	quoted := make([]string, 0, len(items))
	for _, it := range items {
		quoted = append(quoted, fmt.Sprintf("%q", it))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
