package message_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/emledit/message"
	"github.com/zostay/emledit/message/header"
	"github.com/zostay/emledit/message/transfer"
)

func textPart(mt, content string) *message.Opaque {
	h := &header.Header{}
	h.SetMediaType(mt)
	return message.NewOpaque(h, []byte(content))
}

func bytesOf(t *testing.T, p message.Part) string {
	t.Helper()
	out, err := message.Bytes(p)
	require.NoError(t, err)
	return string(out)
}

func TestBuffer_Single(t *testing.T) {
	t.Parallel()

	buf := &message.Buffer{}
	assert.Equal(t, message.ModeUnset, buf.Mode())

	buf.SetSubject("Recordatorio")
	buf.SetMediaType("text/plain")
	n, err := buf.WriteString("La reunión es a las diez.\n")
	require.NoError(t, err)
	assert.Equal(t, len("La reunión es a las diez.\n"), n)
	assert.Equal(t, message.ModeSingle, buf.Mode())

	assert.PanicsWithValue(t, message.ErrOpaqueBuffer, func() {
		buf.Add(textPart("text/html", "<p>no</p>"))
	})

	op := buf.Opaque()
	assert.False(t, op.IsMultipart())
	assert.Nil(t, op.GetParts())
	assert.Equal(t, "Subject: Recordatorio\n"+
		"Content-type: text/plain\n"+
		"\n"+
		"La reunión es a las diez.\n", bytesOf(t, op))
}

func TestBuffer_Single_TransferEncoding(t *testing.T) {
	t.Parallel()

	buf := &message.Buffer{}
	buf.SetMediaType("text/plain")
	buf.SetTransferEncoding(transfer.QuotedPrintable)
	_, _ = buf.WriteString("año")

	assert.Equal(t, "Content-type: text/plain\n"+
		"Content-transfer-encoding: quoted-printable\n"+
		"\n"+
		"a=C3=B1o", bytesOf(t, buf.Opaque()))
}

func TestBuffer_OpaqueAlreadyEncoded(t *testing.T) {
	t.Parallel()

	buf := &message.Buffer{}
	buf.SetTransferEncoding(transfer.Base64)
	_, _ = buf.WriteString("aG9sYQ==")

	assert.Equal(t, "Content-transfer-encoding: base64\n\naG9sYQ==", bytesOf(t, buf.OpaqueAlreadyEncoded()))
}

func TestBuffer_Multipart(t *testing.T) {
	t.Parallel()

	buf := &message.Buffer{}
	buf.SetMediaType("multipart/alternative")
	require.NoError(t, buf.SetBoundary("b0"))
	buf.Add(textPart("text/plain", "Hola."), textPart("text/html", "<p>Hola.</p>"))
	assert.Equal(t, message.ModeMultipart, buf.Mode())

	assert.PanicsWithValue(t, message.ErrPartsBuffer, func() {
		_, _ = buf.Write([]byte("x"))
	})

	mm, err := buf.Multipart()
	require.NoError(t, err)
	assert.True(t, mm.IsMultipart())
	assert.Len(t, mm.GetParts(), 2)
	assert.Nil(t, mm.GetReader())

	const want = "Content-type: multipart/alternative; boundary=b0\n" +
		"\n" +
		"--b0\n" +
		"Content-type: text/plain\n" +
		"\n" +
		"Hola.\n" +
		"--b0\n" +
		"Content-type: text/html\n" +
		"\n" +
		"<p>Hola.</p>\n" +
		"--b0--\n"
	assert.Equal(t, want, bytesOf(t, mm))

	// flattened into a leaf, the bytes are the same
	op := buf.Opaque()
	assert.False(t, op.IsMultipart())
	assert.NotNil(t, op.GetReader())
	assert.Equal(t, want, bytesOf(t, op))
}

func TestBuffer_Multipart_Defaults(t *testing.T) {
	t.Parallel()

	buf := &message.Buffer{}
	buf.SetMultipart(2)
	buf.Add(textPart("text/plain", "x"))

	mm, err := buf.Multipart()
	require.NoError(t, err)

	mt, err := mm.GetMediaType()
	require.NoError(t, err)
	assert.Equal(t, message.DefaultMultipartContentType, mt)

	boundary, err := mm.GetBoundary()
	require.NoError(t, err)
	assert.NotEmpty(t, boundary)
}

func TestBuffer_Multipart_FromWrittenBytes(t *testing.T) {
	t.Parallel()

	buf := &message.Buffer{}
	buf.SetMediaType("multipart/mixed")
	require.NoError(t, buf.SetBoundary("zz"))
	_, _ = buf.WriteString("--zz\n" +
		"Content-type: text/plain\n" +
		"\n" +
		"uno\n" +
		"--zz\n" +
		"Content-type: text/plain\n" +
		"\n" +
		"dos\n" +
		"--zz--\n")

	mm, err := buf.Multipart()
	require.NoError(t, err)
	require.Len(t, mm.GetParts(), 2)

	content, err := mm.GetParts()[1].(*message.Opaque).DecodedContent()
	require.NoError(t, err)
	assert.Equal(t, "dos", string(content))
}

func TestBuffer_Multipart_NotMultipart(t *testing.T) {
	t.Parallel()

	buf := &message.Buffer{}
	buf.SetMediaType("text/plain")
	_, _ = buf.WriteString("just text\n")

	_, err := buf.Multipart()
	assert.ErrorIs(t, err, message.ErrParsesAsNotMultipart)
}

func TestBuffer_Unset(t *testing.T) {
	t.Parallel()

	buf := &message.Buffer{}
	assert.PanicsWithValue(t, message.ErrModeUnset, func() { buf.Opaque() })
	assert.PanicsWithValue(t, message.ErrModeUnset, func() { _, _ = buf.Multipart() })
}

func TestBuffer_SetSingle(t *testing.T) {
	t.Parallel()

	buf := &message.Buffer{}
	buf.SetSubject("Sin contenido")
	buf.SetSingle()
	assert.Equal(t, message.ModeSingle, buf.Mode())
	assert.Equal(t, "Subject: Sin contenido\n\n", bytesOf(t, buf.Opaque()))
}
