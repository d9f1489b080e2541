package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureWriterWithinLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 64}

	_, err := cw.Write([]byte("hola "))
	require.NoError(t, err)
	_, err = cw.Write([]byte("mundo"))
	require.NoError(t, err)

	assert.False(t, cw.overflowed())
	assert.Equal(t, "hola mundo", cw.buf.String())
	// The client still received everything.
	assert.Equal(t, "hola mundo", rec.Body.String())
}

func TestCaptureWriterOverflowNotCacheable(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 8}

	big := []byte("una respuesta bastante larga")
	_, err := cw.Write(big)
	require.NoError(t, err)

	// The buffer is truncated, so it must be flagged uncacheable while
	// the client response stays complete.
	assert.True(t, cw.overflowed())
	assert.Less(t, cw.buf.Len(), len(big))
	assert.Equal(t, string(big), rec.Body.String())
}

func TestCaptureWriterUnlimited(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 0}

	_, err := cw.Write(make([]byte, 4096))
	require.NoError(t, err)
	assert.False(t, cw.overflowed())
	assert.Equal(t, 4096, cw.buf.Len())
}

func TestEncodeDecodePayload(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	payload, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, string(body))

	_, _, _, ok = decodePayload([]byte("short"))
	assert.False(t, ok)
}
