package httpcodec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Under-Bordet-AB/weatherserver/httpcodec"
)

func TestTextResponseWireFormat(t *testing.T) {
	r := httpcodec.Text("hi")
	out := string(r.Bytes())

	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n"))
	assert.Contains(t, out, "Content-Length: 2\r\n")
	assert.Contains(t, out, "Connection: close\r\n")
	assert.True(t, strings.HasSuffix(out, "\r\n\r\nhi"))
}

func TestMethodNotAllowedSetsAllowHeader(t *testing.T) {
	r := httpcodec.MethodNotAllowed("GET", "POST")
	out := string(r.Bytes())
	assert.Contains(t, out, "HTTP/1.1 405 Method Not Allowed\r\n")
	assert.Contains(t, out, "Allow: GET, POST\r\n")
}

func TestJSONResponseSetsContentType(t *testing.T) {
	r := httpcodec.JSON([]byte(`{"ok":true}`))
	out := string(r.Bytes())
	assert.Contains(t, out, "Content-Type: application/json\r\n")
}

func TestBinaryResponseCarriesArbitraryContentType(t *testing.T) {
	r := httpcodec.Binary("image/png", []byte{0x89, 'P', 'N', 'G'})
	out := r.Bytes()
	assert.Contains(t, string(out), "Content-Type: image/png\r\n")
	assert.Equal(t, byte(0x89), out[len(out)-4])
}
