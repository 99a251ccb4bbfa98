package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darko-mesaros/bedrust/model"
)

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "bedrust.toml"))
	require.ErrorIs(t, err, ErrNotInitialized)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_LayersFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bedrust.toml")
	content := `
aws_profile = "work"
region = "eu-central-1"
default_model = "meta.llama2-70b-chat-v1"

[inference."meta.llama2-70b-chat-v1"]
temperature = 0.2
top_p = 0.5
max_tokens = 256
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "work", cfg.AWSProfile)
	assert.Equal(t, "eu-central-1", cfg.Region)
	assert.Equal(t, "meta.llama2-70b-chat-v1", cfg.DefaultModel)
	// Untouched fields keep their defaults.
	assert.Equal(t, Default().CaptionPrompt, cfg.CaptionPrompt)
	assert.Equal(t, Default().SupportedImages, cfg.SupportedImages)

	require.Contains(t, cfg.Inference, "meta.llama2-70b-chat-v1")
	assert.InDelta(t, 0.2, cfg.Inference["meta.llama2-70b-chat-v1"].Temperature, 1e-9)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bedrust.toml")
	require.NoError(t, os.WriteFile(path, []byte("aws_profile = ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotInitialized)
}

func TestApplyOverrides(t *testing.T) {
	cat := model.NewCatalog()
	cfg := Default()
	cfg.Inference = map[string]model.InferenceParameters{
		"meta.llama2-70b-chat-v1": {Temperature: 0.3, TopP: 0.4, MaxTokens: 128},
	}
	require.NoError(t, cfg.ApplyOverrides(cat))

	entry, ok := cat.Entry("meta.llama2-70b-chat-v1")
	require.True(t, ok)
	assert.InDelta(t, 0.3, entry.Params.Temperature, 1e-9)
	assert.Equal(t, 128, entry.Params.MaxTokens)
}

func TestApplyOverrides_UnknownModel(t *testing.T) {
	cfg := Default()
	cfg.Inference = map[string]model.InferenceParameters{"no.such-model": {}}

	err := cfg.ApplyOverrides(model.NewCatalog())
	require.ErrorIs(t, err, model.ErrUnknownModel)
}

func TestInit_WritesLoadableDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bedrust.toml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	// A second init without force refuses to clobber the file.
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))
}
