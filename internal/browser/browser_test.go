package browser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveTimeout(t *testing.T) {
	assert.Equal(t, DefaultOptions().Timeout, resolveTimeout(0))
	assert.Equal(t, DefaultOptions().Timeout, resolveTimeout(-time.Second))
	assert.Equal(t, 45*time.Second, resolveTimeout(45*time.Second))
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.True(t, opts.Headless)
	assert.Equal(t, 30*time.Second, opts.Timeout)
	assert.NotEmpty(t, opts.UserAgent)
	assert.Contains(t, opts.AcceptLanguage, "ar")
	assert.Equal(t, "Asia/Riyadh", opts.TimezoneID)
}
