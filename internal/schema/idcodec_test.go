package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	c := NewCodec(42, 8)

	seg, err := c.Encode(3, nil, 1700000000000, 0xDEADBEEF)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(seg), 8)

	dec, err := c.Decode(seg)
	require.NoError(t, err)
	assert.Equal(t, 3, dec.TypeNum)
	assert.Nil(t, dec.Namespace)
	assert.Equal(t, int64(1700000000000), dec.Timestamp)
	assert.Equal(t, uint32(0xDEADBEEF), dec.Random)
}

func TestCodecRoundTripWithNamespace(t *testing.T) {
	c := NewCodec(7, 8)
	ns := 12345

	seg, err := c.Encode(1, &ns, 1600000000000, 99)
	require.NoError(t, err)

	dec, err := c.Decode(seg)
	require.NoError(t, err)
	assert.Equal(t, 1, dec.TypeNum)
	require.NotNil(t, dec.Namespace)
	assert.Equal(t, 12345, *dec.Namespace)
	assert.Equal(t, int64(1600000000000), dec.Timestamp)
	assert.Equal(t, uint32(99), dec.Random)
}

func TestCodecDifferentSeedsDiffer(t *testing.T) {
	a := NewCodec(1, 8)
	b := NewCodec(2, 8)

	segA, err := a.Encode(5, nil, 1700000000000, 777)
	require.NoError(t, err)
	segB, err := b.Encode(5, nil, 1700000000000, 777)
	require.NoError(t, err)

	assert.NotEqual(t, segA, segB)
}

func TestCodecConsecutiveEncodingsDiffer(t *testing.T) {
	c := NewCodec(42, 8)
	seen := make(map[string]bool, 100)
	for i := 0; i < 100; i++ {
		seg, err := c.Encode(2, nil, 1700000000000, uint32(i))
		require.NoError(t, err)
		assert.False(t, seen[seg], "duplicate encoding at draw %d", i)
		seen[seg] = true
	}
}

func TestCodecMinLengthPadding(t *testing.T) {
	c := NewCodec(42, 30)
	seg, err := c.Encode(1, nil, 1, 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(seg), 30)

	dec, err := c.Decode(seg)
	require.NoError(t, err)
	assert.Equal(t, 1, dec.TypeNum)
	assert.Equal(t, int64(1), dec.Timestamp)
	assert.Equal(t, uint32(1), dec.Random)
}

func TestCodecRejectsOutOfRange(t *testing.T) {
	c := NewCodec(42, 8)
	_, err := c.Encode(-1, nil, 0, 0)
	assert.Error(t, err)
	_, err = c.Encode(1<<14, nil, 0, 0)
	assert.Error(t, err)
}

func TestCodecDecodeInvalidSegment(t *testing.T) {
	c := NewCodec(42, 8)
	_, err := c.Decode("short")
	assert.Error(t, err)
	_, err = c.Decode("!!!!!!!!!!!!!!!!!!!")
	assert.Error(t, err)
}
