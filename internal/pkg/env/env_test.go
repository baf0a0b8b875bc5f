package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvPrefersLoadedMap(t *testing.T) {
	Env = map[string]string{"DONOTE_TEST_KEY": "from-file"}
	t.Cleanup(func() { Env = nil })
	t.Setenv("DONOTE_TEST_KEY", "from-os")

	assert.Equal(t, "from-file", GetEnv("DONOTE_TEST_KEY", "def"))
}

func TestGetEnvFallbacks(t *testing.T) {
	Env = map[string]string{}
	t.Cleanup(func() { Env = nil })

	t.Setenv("DONOTE_TEST_OS", "from-os")
	assert.Equal(t, "from-os", GetEnv("DONOTE_TEST_OS", "def"))
	assert.Equal(t, "def", GetEnv("DONOTE_TEST_MISSING", "def"))
}

func TestGetEnvInt(t *testing.T) {
	Env = map[string]string{"A": "42", "B": "nope", "C": " 7 "}
	t.Cleanup(func() { Env = nil })

	assert.Equal(t, 42, GetEnvInt("A", 1))
	assert.Equal(t, 1, GetEnvInt("B", 1))
	assert.Equal(t, 7, GetEnvInt("C", 1))
	assert.Equal(t, 9, GetEnvInt("MISSING", 9))
}

func TestGetEnvBool(t *testing.T) {
	Env = map[string]string{"T": "true", "Y": "YES", "F": "0", "X": "maybe"}
	t.Cleanup(func() { Env = nil })

	assert.True(t, GetEnvBool("T", false))
	assert.True(t, GetEnvBool("Y", false))
	assert.False(t, GetEnvBool("F", true))
	assert.True(t, GetEnvBool("X", true))
	assert.False(t, GetEnvBool("MISSING", false))
}

func TestIsDev(t *testing.T) {
	Env = map[string]string{"APP_ENV": "dev"}
	t.Cleanup(func() { Env = nil })
	assert.True(t, IsDev())

	Env["APP_ENV"] = "prod"
	assert.False(t, IsDev())
}
