package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{
		"SERVER_PORT", "LLM_PROVIDER", "HISTORY_BACKEND", "BILINGUAL", "INSIGHT_TIMEOUT",
		"ROLE_TEMPERATURE", "RATE_LIMIT_RPS", "MEMORY_WINDOW", "AVATARS_ENABLED", "HISTORY_CACHE_SIZE",
	} {
		t.Setenv(k, "")
	}

	assert.Equal(t, ":8080", ServerAddr())
	assert.Equal(t, "gemini", LLMProvider())
	assert.Equal(t, "sqlite", HistoryBackend())
	assert.Equal(t, "yuhun_history_v3", HistoryKey())
	assert.True(t, Bilingual())
	assert.False(t, AvatarsEnabled())
	assert.Equal(t, 45*time.Second, InsightTimeout())
	assert.InDelta(t, 0.9, RoleTemperature(), 1e-6)
	assert.InDelta(t, 0.7, SynthesisTemperature(), 1e-6)
	assert.Equal(t, int32(2048), SynthesisThinkingBudget())
	assert.Equal(t, 10.0, RateLimitRPS())
	assert.Equal(t, 5, MemoryWindow())
	assert.Equal(t, 1024, HistoryCacheSize())
}

func TestOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("BILINGUAL", "false")
	t.Setenv("INSIGHT_TIMEOUT", "3s")
	t.Setenv("MEMORY_WINDOW", "oops")

	assert.Equal(t, 9090, ServerPort())
	assert.False(t, Bilingual())
	assert.Equal(t, 3*time.Second, InsightTimeout())
	assert.Equal(t, 5, MemoryWindow(), "unparseable values fall back to the default")
}

func TestLLMAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "legacy")
	t.Setenv("OPENAI_API_KEY", "oa")

	t.Setenv("LLM_PROVIDER", "gemini")
	assert.Equal(t, "legacy", LLMAPIKey())

	t.Setenv("LLM_PROVIDER", "openai")
	assert.Equal(t, "oa", LLMAPIKey())

	t.Setenv("LLM_PROVIDER", "mock")
	assert.Empty(t, LLMAPIKey())
}

func TestLoad_ReadsEnvAndSecret(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(env, []byte("HISTORY_BACKEND=memory\n"), 0o600))
	require.NoError(t, os.WriteFile(env+".secret", []byte("API_TOKEN=t0k\n"), 0o600))

	t.Setenv("YUHUN_ENV", env)
	t.Setenv("HISTORY_BACKEND", "")
	t.Setenv("API_TOKEN", "")
	// godotenv does not override variables that are already set.
	require.NoError(t, os.Unsetenv("HISTORY_BACKEND"))
	require.NoError(t, os.Unsetenv("API_TOKEN"))

	require.NoError(t, Load())
	assert.Equal(t, "memory", HistoryBackend())
	assert.Equal(t, "t0k", APIToken())
}
