package geiger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RyanPierce/GeigerRNG/geiger"
)

func TestDebiasIsInvolution(t *testing.T) {
	for _, b := range []byte{0x00, 0xFF, 0x55, 0xAA, 0x3C} {
		assert.Equal(t, b, geiger.Debias(geiger.Debias(b)), "byte %#02x", b)
	}
}

func TestDebiasKnownValues(t *testing.T) {
	assert.Equal(t, byte(0x55), geiger.Debias(0xFF))
	assert.Equal(t, byte(0xAA), geiger.Debias(0x00))
	assert.Equal(t, byte(0x00), geiger.Debias(0xAA))
	assert.Equal(t, byte(0x96), geiger.Debias(0x3C))
}
