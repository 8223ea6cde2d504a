package redis

import (
	"strconv"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func mustPort(t *testing.T, server *miniredis.Miniredis) int {
	t.Helper()
	port, err := strconv.Atoi(server.Port())
	if err != nil {
		t.Fatalf("parse miniredis port: %v", err)
	}
	return port
}
