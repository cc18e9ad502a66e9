package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vango-dev/emtpl/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "emtpl.json"

	// DefaultPort is the default port of the render server.
	DefaultPort = 7070

	// DefaultHost is the default render server host.
	DefaultHost = "localhost"

	// DefaultSimilarityThreshold is the minimum score for two unkeyed nodes to match.
	DefaultSimilarityThreshold = 0.85

	// DefaultTextNearMiss is the score given to two text nodes whose content differs.
	DefaultTextNearMiss = 0.9

	// DefaultAttrPrecision is the number of decimals kept by the similarity score.
	DefaultAttrPrecision = 3

	// DefaultRootTag is the tag of the wrapper element returned by the parser.
	DefaultRootTag = "VirtualRoot"

	// DefaultContentTag is the placeholder tag replaced by caller-supplied children.
	DefaultContentTag = "content"

	// DefaultInjectionGuard replaces bindings rejected by the script guard.
	DefaultInjectionGuard = "Not allow script"

	// DefaultExtension is the file extension of templates in a template directory.
	DefaultExtension = ".html"
)

// DefaultVoidTags are tags that never have children.
var DefaultVoidTags = []string{"input", "br", "hr", "img", "meta", "!DOCTYPE"}

// DefaultGuardedAttrs are attributes whose bindings may not produce script URLs.
var DefaultGuardedAttrs = []string{"href", "src", "action", "formaction"}

// Config represents the complete emtpl.json configuration.
type Config struct {
	// Parser contains markup parser configuration.
	Parser ParserConfig `json:"parser,omitempty"`

	// Diff contains matching thresholds for the diff pass.
	Diff DiffConfig `json:"diff,omitempty"`

	// Render contains render pass configuration.
	Render RenderConfig `json:"render,omitempty"`

	// Templates contains template source configuration.
	Templates TemplatesConfig `json:"templates,omitempty"`

	// Store contains snapshot store configuration.
	Store StoreConfig `json:"store,omitempty"`

	// Server contains render server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ParserConfig contains markup parser settings.
type ParserConfig struct {
	// VoidTags close immediately without a closing tag.
	VoidTags []string `json:"voidTags,omitempty"`

	// RootTag is the tag name of the returned wrapper element.
	RootTag string `json:"rootTag,omitempty"`
}

// DiffConfig contains the empirical matching constants.
type DiffConfig struct {
	// SimilarityThreshold is the minimum score for unkeyed nodes to match.
	SimilarityThreshold float64 `json:"similarityThreshold,omitempty"`

	// TextNearMiss is the score of two text nodes with different content.
	TextNearMiss float64 `json:"textNearMiss,omitempty"`

	// AttrPrecision is the number of decimals kept by the similarity score.
	AttrPrecision int `json:"attrPrecision,omitempty"`
}

// RenderConfig contains render pass settings.
type RenderConfig struct {
	// ContentTag is the placeholder tag for caller-supplied children.
	ContentTag string `json:"contentTag,omitempty"`

	// InjectionGuard is the text that replaces rejected script bindings.
	InjectionGuard string `json:"injectionGuard,omitempty"`

	// GuardedAttrs are the attributes checked by the script guard.
	GuardedAttrs []string `json:"guardedAttrs,omitempty"`
}

// TemplatesConfig describes where templates are loaded from.
type TemplatesConfig struct {
	// Dir is the local template directory.
	Dir string `json:"dir,omitempty"`

	// Extension is appended to template names when looking them up.
	Extension string `json:"extension,omitempty"`

	// Bucket switches template loading to S3 when set.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the S3 key prefix for templates.
	Prefix string `json:"prefix,omitempty"`

	// Region is the S3 region.
	Region string `json:"region,omitempty"`
}

// StoreConfig contains snapshot store settings.
type StoreConfig struct {
	// Path is the bbolt database file. Empty disables persistence.
	Path string `json:"path,omitempty"`
}

// ServerConfig contains render server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// ReadTimeout is the HTTP read timeout (e.g., "10s").
	ReadTimeout string `json:"readTimeout,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory.
// It looks for emtpl.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C003").
				WithDetail("no " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or run without --config to use defaults")
		}
		return nil, errors.New("C003").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("C003").
			WithDetail("failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("C003").Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("C003").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Parser.VoidTags == nil {
		c.Parser.VoidTags = append([]string(nil), DefaultVoidTags...)
	}
	if c.Parser.RootTag == "" {
		c.Parser.RootTag = DefaultRootTag
	}

	if c.Diff.SimilarityThreshold == 0 {
		c.Diff.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if c.Diff.TextNearMiss == 0 {
		c.Diff.TextNearMiss = DefaultTextNearMiss
	}
	if c.Diff.AttrPrecision == 0 {
		c.Diff.AttrPrecision = DefaultAttrPrecision
	}

	if c.Render.ContentTag == "" {
		c.Render.ContentTag = DefaultContentTag
	}
	if c.Render.InjectionGuard == "" {
		c.Render.InjectionGuard = DefaultInjectionGuard
	}
	if c.Render.GuardedAttrs == nil {
		c.Render.GuardedAttrs = append([]string(nil), DefaultGuardedAttrs...)
	}

	if c.Templates.Dir == "" {
		c.Templates.Dir = "templates"
	}
	if c.Templates.Extension == "" {
		c.Templates.Extension = DefaultExtension
	}

	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Diff.SimilarityThreshold <= 0 || c.Diff.SimilarityThreshold > 1 {
		return errors.New("C004").
			WithDetail("diff.similarityThreshold must be in (0, 1]")
	}
	if c.Diff.TextNearMiss < 0 || c.Diff.TextNearMiss > 1 {
		return errors.New("C004").
			WithDetail("diff.textNearMiss must be in [0, 1]")
	}
	if c.Diff.AttrPrecision < 0 || c.Diff.AttrPrecision > 10 {
		return errors.New("C004").
			WithDetail("diff.attrPrecision must be between 0 and 10")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("C004").
			WithDetail("server.port must be between 0 and 65535")
	}
	return nil
}

// ServerAddress returns the listen address of the render server.
func (c *Config) ServerAddress() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// TemplatesPath returns the absolute path to the template directory.
func (c *Config) TemplatesPath() string {
	if filepath.IsAbs(c.Templates.Dir) {
		return c.Templates.Dir
	}
	return filepath.Join(c.Dir(), c.Templates.Dir)
}

// StorePath returns the absolute path to the snapshot database, or "" when disabled.
func (c *Config) StorePath() string {
	if c.Store.Path == "" || filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(c.Dir(), c.Store.Path)
}

// Exists reports whether dir contains an emtpl.json file.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindRoot walks up from startDir and returns the first directory
// containing emtpl.json.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("C003").
				WithDetail("no " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadOrDefault loads emtpl.json from the nearest enclosing directory,
// falling back to defaults when none exists.
func LoadOrDefault(startDir string) (*Config, error) {
	root, err := FindRoot(startDir)
	if err != nil {
		return New(), nil
	}
	cfg, err := Load(root)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}
