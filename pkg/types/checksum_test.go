package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumKnownValues(t *testing.T) {
	t.Parallel()

	assert.Equal(t, byte(0x00), Checksum(nil))
	assert.Equal(t, byte(0x00), Checksum([]byte{}))
	assert.Equal(t, byte(0x00), Checksum(make([]byte, 512)))
	// CRC-8 check value for the standard test vector
	assert.Equal(t, byte(0xF4), Checksum([]byte("123456789")))
}

func TestChecksumDeterministic(t *testing.T) {
	t.Parallel()

	payload := []byte("the same bytes twice")

	require.Equal(t, Checksum(payload), Checksum(payload))
}

func TestChecksumDetectsSingleBitFlips(t *testing.T) {
	t.Parallel()

	payload := make([]byte, 64)
	for i := range payload {
		payload[i] = byte(i * 7)
	}

	want := Checksum(payload)

	for i := range payload {
		for bit := 0; bit < 8; bit++ {
			flipped := make([]byte, len(payload))
			copy(flipped, payload)
			flipped[i] ^= 1 << bit

			require.NotEqualf(t, want, Checksum(flipped),
				"flip of byte %d bit %d not detected", i, bit)
		}
	}
}
