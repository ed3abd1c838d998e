package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClient_Unreachable(t *testing.T) {
	client, err := NewClient(Config{Addr: "127.0.0.1:1"}, "test")
	assert.Error(t, err)
	assert.Nil(t, client)
}
