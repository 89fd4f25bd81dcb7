package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("TASKAPI_SET", "value")
	t.Setenv("TASKAPI_EMPTY", "")

	assert.Equal(t, "value", GetEnv("TASKAPI_SET", "fallback"))
	assert.Equal(t, "", GetEnv("TASKAPI_EMPTY", "fallback"), "set but empty is not a fallback")
	assert.Equal(t, "fallback", GetEnv("TASKAPI_UNSET_VARIABLE", "fallback"))
}

func TestGetEnvTyped(t *testing.T) {
	t.Setenv("TASKAPI_INT", "42")
	t.Setenv("TASKAPI_BOOL", "true")
	t.Setenv("TASKAPI_DURATION", "1m30s")
	t.Setenv("TASKAPI_BAD", "not-a-value")

	assert.Equal(t, 42, GetEnvInt("TASKAPI_INT", 1))
	assert.Equal(t, 1, GetEnvInt("TASKAPI_BAD", 1))
	assert.True(t, GetEnvBool("TASKAPI_BOOL", false))
	assert.False(t, GetEnvBool("TASKAPI_BAD", false))
	assert.Equal(t, 90*time.Second, GetEnvDuration("TASKAPI_DURATION", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("TASKAPI_UNSET_VARIABLE", time.Second))
}
