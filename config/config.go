package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/darko-mesaros/bedrust/model"
)

// ErrNotInitialized indicates the configuration file is missing. The chat
// path treats this as fatal and tells the user to run --init.
var ErrNotInitialized = errors.New("configuration file not found, run with --init to create it")

const (
	configDirName  = "bedrust"
	configFileName = "bedrust.toml"
	chatsDirName   = "chats"
)

// Config is the decoded configuration file. Zero or missing fields fall back
// to the compiled defaults via Default.
type Config struct {
	// AWSProfile selects the shared-credentials profile. Empty means the
	// SDK's default resolution chain.
	AWSProfile string `toml:"aws_profile"`
	// Region overrides the AWS region; empty defers to the profile.
	Region string `toml:"region"`
	// DefaultModel is used when no model flag is given.
	DefaultModel string `toml:"default_model"`
	// SystemPrompt is passed to chat-style model families when set.
	SystemPrompt string `toml:"system_prompt"`
	// CaptionPrompt is the instruction used by the image captioner.
	CaptionPrompt string `toml:"caption_prompt"`
	// SupportedImages lists the file extensions the captioner picks up.
	SupportedImages []string `toml:"supported_images"`
	// CodeIgnore lists directory names skipped during source review.
	CodeIgnore []string `toml:"code_ignore"`
	// Inference holds per-model parameter overrides keyed by model id.
	Inference map[string]model.InferenceParameters `toml:"inference"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		AWSProfile:   "default",
		DefaultModel: "anthropic.claude-3-sonnet-20240229-v1:0",
		CaptionPrompt: "Please caption the following image for the sake of accessibility. " +
			"Return just the caption, and nothing else. Keep it clean, and under 100 words.",
		SupportedImages: []string{"jpg", "jpeg", "png", "bmp"},
		CodeIgnore:      []string{"node_modules", "target", "vendor", ".git"},
	}
}

// Dir returns the configuration directory, ~/.config/bedrust.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", configDirName), nil
}

// Path returns the configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// ChatsDir returns the directory where conversation documents are stored.
func ChatsDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, chatsDirName), nil
}

// Load reads the configuration file at path, layering it over the defaults.
// A missing file yields ErrNotInitialized.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, ErrNotInitialized
		}
		return cfg, fmt.Errorf("checking configuration file: %w", err)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing configuration file %q: %w", path, err)
	}
	return cfg, nil
}

// ApplyOverrides pushes the per-model inference overrides into the catalog.
// Overrides for models the catalog does not know are reported as errors
// rather than silently dropped.
func (c Config) ApplyOverrides(cat *model.Catalog) error {
	for id, params := range c.Inference {
		if err := cat.SetParams(id, params); err != nil {
			return fmt.Errorf("inference override: %w", err)
		}
	}
	return nil
}

// Init writes the default configuration file, creating the directory as
// needed. An existing file is left untouched unless force is set.
func Init(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists at %s", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating configuration directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating configuration file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(Default()); err != nil {
		return fmt.Errorf("writing default configuration: %w", err)
	}
	return nil
}
