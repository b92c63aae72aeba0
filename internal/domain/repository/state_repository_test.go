package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreKey(t *testing.T) {
	assert.Equal(t, GlobalStoreKey, StoreKey(""))
	assert.Equal(t, "tenant:acme", StoreKey("acme"))
}
