package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocKey_NombresEquivalentesComparten(t *testing.T) {
	assert.Equal(t, locKey("Bodega Central"), locKey("  bodega central "))
	assert.Equal(t, locKey("TIENDA"), locKey("tienda\t"))
	assert.NotEqual(t, locKey("Bodega 1"), locKey("Bodega 2"))
}
