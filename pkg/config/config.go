// Package config loads the optional canopy.yaml configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/canopy/pkg/graphics"
	"github.com/go-drift/canopy/pkg/registry"
)

// FileName is the configuration file looked up by LoadOptional.
const FileName = "canopy.yaml"

// Config represents canopy.yaml.
type Config struct {
	Viewport   ViewportConfig               `yaml:"viewport"`
	Registry   RegistryConfig               `yaml:"registry"`
	Pipeline   PipelineConfig               `yaml:"pipeline"`
	Log        LogConfig                    `yaml:"log"`
	Background string                       `yaml:"background,omitempty"`
	Classes    map[string]string            `yaml:"classes,omitempty"`
	Styles     map[string]map[string]string `yaml:"styles,omitempty"`
	Scene      *SceneNode                   `yaml:"scene,omitempty"`
}

// ViewportConfig is the surface size in logical pixels.
type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Size returns the viewport as a graphics.Size.
func (v ViewportConfig) Size() graphics.Size {
	return graphics.Size{Width: v.Width, Height: v.Height}
}

// RegistryConfig contains backend registry settings.
type RegistryConfig struct {
	// Conflict is "reject" (default) or "replace".
	Conflict string `yaml:"conflict,omitempty"`
}

// PipelineConfig contains render pipeline settings.
type PipelineConfig struct {
	CullOffscreen *bool `yaml:"cull_offscreen,omitempty"`
}

// Cull reports whether offscreen nodes are skipped. Defaults to true.
func (p PipelineConfig) Cull() bool {
	return p.CullOffscreen == nil || *p.CullOffscreen
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// SceneNode describes one element of the initial tree. Either Tag or Class
// is set; a Class is resolved through the script bridge.
type SceneNode struct {
	Tag      string            `yaml:"tag,omitempty"`
	Class    string            `yaml:"class,omitempty"`
	Attrs    map[string]string `yaml:"attrs,omitempty"`
	Children []*SceneNode      `yaml:"children,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Viewport:   ViewportConfig{Width: 320, Height: 240},
		Registry:   RegistryConfig{Conflict: "reject"},
		Log:        LogConfig{Level: "info", Format: "text"},
		Background: "#ffffff",
	}
}

// LoadOptional reads canopy.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport must be positive, got %vx%v", c.Viewport.Width, c.Viewport.Height)
	}
	if _, err := c.ConflictPolicy(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if _, err := c.BackgroundColor(); err != nil {
		return err
	}
	for name, tag := range c.Classes {
		if name == "" || tag == "" {
			return fmt.Errorf("class %q: name and tag are required", name)
		}
	}
	if c.Scene != nil {
		return c.Scene.validate("scene")
	}
	return nil
}

func (n *SceneNode) validate(path string) error {
	if n == nil {
		return fmt.Errorf("%s: empty node", path)
	}
	if (n.Tag == "") == (n.Class == "") {
		return fmt.Errorf("%s: exactly one of tag or class is required", path)
	}
	for i, child := range n.Children {
		if err := child.validate(fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// ConflictPolicy returns the registry conflict policy.
func (c *Config) ConflictPolicy() (registry.ConflictPolicy, error) {
	return registry.ParseConflictPolicy(strings.ToLower(strings.TrimSpace(c.Registry.Conflict)))
}

// BackgroundColor parses Background. An empty value is transparent.
func (c *Config) BackgroundColor() (graphics.Color, error) {
	if strings.TrimSpace(c.Background) == "" {
		return graphics.ColorTransparent, nil
	}
	col, err := graphics.ParseColor(c.Background)
	if err != nil {
		return 0, fmt.Errorf("background: %w", err)
	}
	return col, nil
}

// Count returns the number of nodes in the scene subtree rooted at n.
func (n *SceneNode) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}
