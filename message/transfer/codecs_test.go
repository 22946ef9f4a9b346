package transfer_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/emledit/message/header"
	"github.com/zostay/emledit/message/transfer"
)

// every byte value, including bare CR and LF
func allBytes() []byte {
	b := make([]byte, 256)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	for _, name := range []string{transfer.None, transfer.Bit7, transfer.Bit8, transfer.Binary} {
		codec := transfer.Codecs[name]

		got, err := io.ReadAll(codec.Decode(bytes.NewReader(allBytes())))
		require.NoError(t, err, name)
		assert.Equal(t, allBytes(), got, name)

		buf := &bytes.Buffer{}
		w := codec.Encode(buf, header.CRLF)
		n, err := w.Write(allBytes())
		require.NoError(t, err, name)
		assert.Equal(t, 256, n, name)
		require.NoError(t, w.Close(), name)
		assert.Equal(t, allBytes(), buf.Bytes(), name)
	}
}

func TestQuotedPrintable(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	w := transfer.NewQuotedPrintableEncoder(buf, header.LF)
	_, err := io.WriteString(w, "año = 2024")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, "a=C3=B1o =3D 2024", buf.String())

	got, err := io.ReadAll(transfer.NewQuotedPrintableDecoder(strings.NewReader(buf.String())))
	require.NoError(t, err)
	assert.Equal(t, "año = 2024", string(got))
}

func TestBase64_Binary(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	w := transfer.NewBase64Encoder(buf, header.NoBreak)
	_, err := w.Write(allBytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	for _, line := range strings.Split(buf.String(), "\n") {
		assert.LessOrEqual(t, len(line), transfer.Base64LineLength)
	}

	got, err := io.ReadAll(transfer.NewBase64Decoder(buf))
	require.NoError(t, err)
	assert.Equal(t, allBytes(), got)
}
