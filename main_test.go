package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrustedProxiesDefaultIsPrivateRanges(t *testing.T) {
	got := trustedProxies()

	assert.Equal(t, []string{"127.0.0.1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}, got)
	assert.NotContains(t, got, "0.0.0.0/0")
}

func TestTrustedProxiesReadsEnvOverride(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "203.0.113.10, 198.51.100.0/24 ,")

	got := trustedProxies()

	assert.Equal(t, []string{"203.0.113.10", "198.51.100.0/24"}, got)
}
