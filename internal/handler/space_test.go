package handler

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImagen(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	b64 := base64.StdEncoding.EncodeToString(raw)

	got, err := decodeImagen(b64)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	// Data URIs are accepted too.
	got, err = decodeImagen("data:image/png;base64," + b64)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	got, err = decodeImagen("  " + b64 + "\n")
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	_, err = decodeImagen("not base64 at all!!!")
	assert.Error(t, err)
}
