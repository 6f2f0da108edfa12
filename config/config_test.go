package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	for _, key := range []string{"LLM_API_KEY", "LLM_ENDPOINT", "LLM_MODEL", "MEALDB_BASE_URL", "HTTP_TIMEOUT", "PORT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.LLMAPIKey)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", cfg.LLMEndpoint)
	assert.Equal(t, "https://www.themealdb.com/api/json/v1/1", cfg.MealDBBaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, ":3000", cfg.Addr())
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("SECRET_KEY", "shh")
	t.Setenv("PORT", "8081")
	t.Setenv("HTTP_TIMEOUT", "5s")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.LLMAPIKey)
	assert.Equal(t, "shh", cfg.SecretKey)
	assert.Equal(t, ":8081", cfg.Addr())
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
}

func TestParseInvalidDuration(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")
	_, err := Parse()
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	t.Setenv("LLM_MODEL", "")
	os.Unsetenv("LLM_MODEL")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LLM_MODEL=llama3-8b\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("LLM_MODEL") })

	cfg, found, err := Load()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "llama3-8b", cfg.LLMModel)
}

func TestLoadWithoutDotEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	_, found, err := Load()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLoadDotEnvUnreadable(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	require.NoError(t, os.Mkdir(filepath.Join(dir, ".env"), 0o755))

	_, found, err := Load()
	require.Error(t, err)
	assert.False(t, found)
	assert.Contains(t, err.Error(), "load ")
}
