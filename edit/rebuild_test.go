package edit_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/emledit/edit"
	"github.com/zostay/emledit/message"
	"github.com/zostay/emledit/message/header"
)

// reparse serializes the message and parses the result.
func reparse(t *testing.T, msg message.Part) (message.Part, []byte) {
	t.Helper()
	out, err := message.Bytes(msg)
	require.NoError(t, err)

	again, err := message.Parse(bytes.NewReader(out))
	require.NoError(t, err)
	return again, out
}

func mediaType(t *testing.T, part message.Part) string {
	t.Helper()
	mt, err := part.GetHeader().GetMediaType()
	require.NoError(t, err)
	return mt
}

func TestRebuild_HTML(t *testing.T) {
	t.Parallel()

	src, err := os.ReadFile(filepath.Join("testdata", "hola.eml"))
	require.NoError(t, err)
	msg := parseString(t, string(src))
	_, origAtts := edit.Extract(msg)
	origAtt, err := message.Bytes(origAtts[0].Part)
	require.NoError(t, err)

	rebuilt, err := edit.Rebuild(msg, &edit.Edit{
		Body:    "<p>Hola mundo</p>",
		Subtype: edit.HTML,
		KeepAll: true,
	})
	require.NoError(t, err)

	again, out := reparse(t, rebuilt)

	assert.Equal(t, "multipart/mixed", mediaType(t, again))
	require.Len(t, again.GetParts(), 2)
	alt := again.GetParts()[0]
	assert.Equal(t, "multipart/alternative", mediaType(t, alt))
	require.Len(t, alt.GetParts(), 2)
	assert.Equal(t, "text/plain", mediaType(t, alt.GetParts()[0]))
	assert.Equal(t, "text/html", mediaType(t, alt.GetParts()[1]))

	body, atts := edit.Extract(again)
	assert.Equal(t, "<p>Hola mundo</p>", body.HTML)
	assert.Equal(t, "Hola mundo", body.Plain)

	require.Len(t, atts, 1)
	assert.Equal(t, origAtts[0].Content, atts[0].Content)
	assert.Equal(t, "img1", atts[0].ContentID)
	assert.Contains(t, string(out), string(origAtt))

	// the header is carried over untouched
	assert.Contains(t, string(out), "Subject: Hola\r\n")
	assert.Contains(t, string(out), "From: Ana <ana@example.es>\r\n")

	// the original message is left alone
	orig, err := message.Bytes(msg)
	require.NoError(t, err)
	assert.Equal(t, string(src), string(orig))
}

func TestRebuild_Plain(t *testing.T) {
	t.Parallel()

	msg := parseFixture(t, "hola.eml")
	body, _ := edit.Extract(msg)
	origHTML, err := message.Bytes(body.HTMLPart)
	require.NoError(t, err)

	rebuilt, err := edit.Rebuild(msg, &edit.Edit{
		Body:    "Hola editado",
		Subtype: edit.Plain,
		KeepAll: true,
	})
	require.NoError(t, err)

	again, out := reparse(t, rebuilt)
	body, atts := edit.Extract(again)
	assert.Equal(t, "Hola editado", body.Plain)
	assert.Equal(t, `<p>Hola</p><img src="cid:img1">`, body.HTML)
	assert.Contains(t, string(out), string(origHTML))
	assert.Len(t, atts, 1)
}

func TestRebuild_UnknownSubtype(t *testing.T) {
	t.Parallel()

	_, err := edit.Rebuild(parseFixture(t, "hola.eml"), &edit.Edit{Subtype: "rtf"})
	assert.ErrorIs(t, err, edit.ErrUnknownSubtype)
	assert.EqualError(t, err, `unknown body subtype "rtf"`)
}

func TestRebuild_Headers(t *testing.T) {
	t.Parallel()

	rebuilt, err := edit.Rebuild(parseFixture(t, "hola.eml"), &edit.Edit{
		Body:    "<p>Hola</p>",
		KeepAll: true,
		Headers: map[string]string{
			"subject":      "Adiós",
			"TO":           "José <jose@example.es>, bob@example.com",
			"Delivered-To": "",
			"Cc":           "carla@example.es",
		},
	})
	require.NoError(t, err)

	again, _ := reparse(t, rebuilt)
	h := again.GetHeader()

	subjects, err := h.GetAll(header.Subject)
	require.NoError(t, err)
	assert.Equal(t, []string{"Adiós"}, subjects)

	to, err := h.Get(header.To)
	assert.NoError(t, err)
	assert.Equal(t, "José <jose@example.es>, bob@example.com", to)

	cc, err := h.Get(header.Cc)
	assert.NoError(t, err)
	assert.Equal(t, "carla@example.es", cc)

	_, err = h.Get("Delivered-To")
	assert.ErrorIs(t, err, header.ErrNoSuchField)

	// untouched fields stay as they were
	from, err := h.Get(header.From)
	assert.NoError(t, err)
	assert.Equal(t, "Ana <ana@example.es>", from)
}

func TestRebuild_HeadersVerbatim(t *testing.T) {
	t.Parallel()

	rebuilt, err := edit.Rebuild(parseFixture(t, "hola.eml"), &edit.Edit{
		Body:    "<p>Hola</p>",
		KeepAll: true,
		Headers: map[string]string{
			"Subject": "Hola   mundo  ",
			"To":      "Ana  <ana@example.es>",
			"Cc":      "bob@example.com\r\nBcc: carla@example.es",
		},
	})
	require.NoError(t, err)

	h := rebuilt.GetHeader()

	subject, err := h.Get(header.Subject)
	assert.NoError(t, err)
	assert.Equal(t, "Hola   mundo  ", subject)

	to, err := h.Get(header.To)
	assert.NoError(t, err)
	assert.Equal(t, "Ana  <ana@example.es>", to)

	cc, err := h.Get(header.Cc)
	assert.NoError(t, err)
	assert.Equal(t, "bob@example.comBcc: carla@example.es", cc)

	again, out := reparse(t, rebuilt)
	assert.Contains(t, string(out), "Subject: Hola   mundo")

	_, err = again.GetHeader().Get(header.Bcc)
	assert.ErrorIs(t, err, header.ErrNoSuchField)
}

func TestRebuild_HeaderNotEditable(t *testing.T) {
	t.Parallel()

	_, err := edit.Rebuild(parseFixture(t, "hola.eml"), &edit.Edit{
		Body:    "<p>Hola</p>",
		Headers: map[string]string{"X-Mailer": "nope"},
	})

	var hne *edit.HeaderNotEditableError
	require.ErrorAs(t, err, &hne)
	assert.Equal(t, "X-Mailer", hne.Name)
	assert.Equal(t, `header "X-Mailer" is not editable`, err.Error())
}

func TestRebuild_Keep(t *testing.T) {
	t.Parallel()

	msg := parseFixture(t, "attachments.eml")

	rebuilt, err := edit.Rebuild(msg, &edit.Edit{
		Body:    "Solo uno.",
		Subtype: edit.Plain,
		Keep:    []int{1},
	})
	require.NoError(t, err)

	again, _ := reparse(t, rebuilt)
	body, atts := edit.Extract(again)
	assert.Equal(t, "Solo uno.", body.Plain)
	require.Len(t, atts, 1)
	assert.Equal(t, "notes.txt", atts[0].Filename)
	assert.Equal(t, 0, atts[0].Index)

	// parts that are not attachments are kept
	assert.Len(t, again.GetParts(), 4)
}

func TestRebuild_DropAll(t *testing.T) {
	t.Parallel()

	rebuilt, err := edit.Rebuild(parseFixture(t, "hola.eml"), &edit.Edit{
		Body: "<p>Hola</p>",
	})
	require.NoError(t, err)

	again, _ := reparse(t, rebuilt)
	_, atts := edit.Extract(again)
	assert.Empty(t, atts)

	assert.Equal(t, "multipart/mixed", mediaType(t, again))
	require.Len(t, again.GetParts(), 1)
	assert.Equal(t, "multipart/alternative", mediaType(t, again.GetParts()[0]))
}

func TestRebuild_DropsEmptyMultipart(t *testing.T) {
	t.Parallel()

	msg := parseString(t, `Content-Type: multipart/mixed; boundary=a

--a
Content-Type: text/plain

body
--a
Content-Type: multipart/mixed; boundary=b

--b
Content-Type: application/pdf
Content-Disposition: attachment; filename=one.pdf

one
--b
Content-Type: application/pdf
Content-Disposition: attachment; filename=two.pdf

two
--b--
--a--
`)

	rebuilt, err := edit.Rebuild(msg, &edit.Edit{Body: "new", Subtype: edit.Plain})
	require.NoError(t, err)

	again, _ := reparse(t, rebuilt)
	require.Len(t, again.GetParts(), 1)
	assert.Equal(t, "text/plain", mediaType(t, again.GetParts()[0]))
}

func TestRebuild_Add(t *testing.T) {
	t.Parallel()

	rebuilt, err := edit.Rebuild(parseFixture(t, "hola.eml"), &edit.Edit{
		Body:    "<p>Hola</p>",
		KeepAll: true,
		Add: []edit.NewAttachment{
			{Filename: "notas.txt", ContentType: "text/plain; charset=utf-8", Content: []byte("recordar la leche")},
			{Filename: "blob"},
		},
	})
	require.NoError(t, err)

	again, _ := reparse(t, rebuilt)
	require.Len(t, again.GetParts(), 4)

	_, atts := edit.Extract(again)
	require.Len(t, atts, 2)
	assert.Equal(t, "pixel.png", atts[0].Filename)
	assert.Equal(t, "notas.txt", atts[1].Filename)
	assert.Equal(t, "text/plain", atts[1].ContentType)
	assert.Equal(t, []byte("recordar la leche"), atts[1].Content)
	assert.False(t, atts[1].Inline)

	// an empty attachment is written but is not listed
	assert.Equal(t, edit.DefaultContentType, mediaType(t, again.GetParts()[3]))
}

func TestRebuild_SinglePlain(t *testing.T) {
	t.Parallel()

	msg := parseString(t, "From: ana@example.es\n"+
		"Subject: Nota\n"+
		"Content-Type: text/plain; charset=iso-8859-1\n"+
		"Content-Transfer-Encoding: quoted-printable\n"+
		"\n"+
		"Ma=F1ana a las diez.\n")

	rebuilt, err := edit.Rebuild(msg, &edit.Edit{
		Body:    "new text",
		Subtype: edit.Plain,
	})
	require.NoError(t, err)
	assert.False(t, rebuilt.IsMultipart())

	out, err := message.Bytes(rebuilt)
	require.NoError(t, err)
	assert.Equal(t, "From: ana@example.es\n"+
		"Subject: Nota\n"+
		"Content-type: text/plain; charset=utf-8\n"+
		"Content-transfer-encoding: 7bit\n"+
		"\n"+
		"new text", string(out))
}

func TestRebuild_SinglePlainUnicode(t *testing.T) {
	t.Parallel()

	rebuilt, err := edit.Rebuild(parseFixture(t, "plain.eml"), &edit.Edit{
		Body:    "Mañana a las once.\n",
		Subtype: edit.Plain,
	})
	require.NoError(t, err)

	again, out := reparse(t, rebuilt)
	assert.Contains(t, string(out), "Content-transfer-encoding: base64\n")

	body, _ := edit.Extract(again)
	assert.Equal(t, "Mañana a las once.\n", body.Plain)
	assert.False(t, body.HasHTML())
}

func TestRebuild_SinglePlainToHTML(t *testing.T) {
	t.Parallel()

	rebuilt, err := edit.Rebuild(parseFixture(t, "plain.eml"), &edit.Edit{
		Body: "<p>Hola</p><p>mundo</p>",
	})
	require.NoError(t, err)

	again, _ := reparse(t, rebuilt)
	assert.Equal(t, "multipart/alternative", mediaType(t, again))

	h := again.GetHeader()
	mv, err := h.Get(header.MIMEVersion)
	assert.NoError(t, err)
	assert.Equal(t, "1.0", mv)

	from, err := h.Get(header.From)
	assert.NoError(t, err)
	assert.Equal(t, "ana@example.es", from)

	_, err = h.Get(header.ContentTransferEncoding)
	assert.ErrorIs(t, err, header.ErrNoSuchField)

	body, _ := edit.Extract(again)
	assert.Equal(t, "<p>Hola</p><p>mundo</p>", body.HTML)
	assert.Equal(t, "Hola\nmundo", body.Plain)
}

func TestRebuild_SingleHTMLToPlain(t *testing.T) {
	t.Parallel()

	msg := parseFixture(t, "html.eml")
	orig, _ := edit.Extract(msg)

	rebuilt, err := edit.Rebuild(msg, &edit.Edit{
		Body:    "Hola",
		Subtype: edit.Plain,
	})
	require.NoError(t, err)

	again, _ := reparse(t, rebuilt)
	assert.Equal(t, "multipart/alternative", mediaType(t, again))
	require.Len(t, again.GetParts(), 2)

	body, _ := edit.Extract(again)
	assert.Equal(t, "Hola", body.Plain)
	assert.Equal(t, orig.HTML, body.HTML)
}

func TestRebuild_SingleWithAttachment(t *testing.T) {
	t.Parallel()

	rebuilt, err := edit.Rebuild(parseFixture(t, "plain.eml"), &edit.Edit{
		Body:    "Adjunto.",
		Subtype: edit.Plain,
		Add: []edit.NewAttachment{
			{Filename: "a.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.4\n")},
		},
	})
	require.NoError(t, err)

	again, _ := reparse(t, rebuilt)
	assert.Equal(t, "multipart/mixed", mediaType(t, again))

	body, atts := edit.Extract(again)
	assert.Equal(t, "Adjunto.", body.Plain)
	require.Len(t, atts, 1)
	assert.Equal(t, "a.pdf", atts[0].Filename)
}

func TestRebuild_HTMLWithoutPlain(t *testing.T) {
	t.Parallel()

	msg := parseString(t, `Content-Type: multipart/mixed; boundary=x

--x
Content-Type: text/html

<p>old</p>
--x
Content-Type: application/pdf
Content-Disposition: attachment; filename=a.pdf

pdf
--x--
`)

	rebuilt, err := edit.Rebuild(msg, &edit.Edit{Body: "<p>new</p>", KeepAll: true})
	require.NoError(t, err)

	again, _ := reparse(t, rebuilt)
	require.Len(t, again.GetParts(), 2)

	alt := again.GetParts()[0]
	assert.Equal(t, "multipart/alternative", mediaType(t, alt))
	require.Len(t, alt.GetParts(), 2)
	assert.Equal(t, "text/plain", mediaType(t, alt.GetParts()[0]))
	assert.Equal(t, "text/html", mediaType(t, alt.GetParts()[1]))

	body, _ := edit.Extract(again)
	assert.Equal(t, "new", body.Plain)
	assert.Equal(t, "<p>new</p>", body.HTML)
}

func TestRebuild_PlainWithoutHTML(t *testing.T) {
	t.Parallel()

	msg := parseString(t, `Content-Type: multipart/alternative; boundary=x

--x
Content-Type: text/plain

old
--x--
`)

	rebuilt, err := edit.Rebuild(msg, &edit.Edit{Body: "<b>new</b>"})
	require.NoError(t, err)

	again, _ := reparse(t, rebuilt)
	require.Len(t, again.GetParts(), 2)
	assert.Equal(t, "text/plain", mediaType(t, again.GetParts()[0]))
	assert.Equal(t, "text/html", mediaType(t, again.GetParts()[1]))
}

func TestRebuild_NoBody(t *testing.T) {
	t.Parallel()

	msg := parseString(t, `Content-Type: multipart/mixed; boundary=x

--x
Content-Type: application/pdf
Content-Disposition: attachment; filename=a.pdf

pdf
--x--
`)

	rebuilt, err := edit.Rebuild(msg, &edit.Edit{KeepAll: true})
	require.NoError(t, err)

	again, _ := reparse(t, rebuilt)
	require.Len(t, again.GetParts(), 2)
	assert.Equal(t, "multipart/alternative", mediaType(t, again.GetParts()[1]))

	body, atts := edit.Extract(again)
	assert.True(t, body.HasHTML())
	assert.True(t, body.HasPlain())
	assert.Equal(t, "", body.HTML)
	assert.Equal(t, "", body.Plain)
	assert.Len(t, atts, 1)
}

func TestRebuild_Idempotent(t *testing.T) {
	t.Parallel()

	msg := parseFixture(t, "hola.eml")
	body, atts := edit.Extract(msg)

	rebuilt, err := edit.Rebuild(msg, &edit.Edit{
		Body:    body.Plain,
		Subtype: edit.Plain,
		KeepAll: true,
	})
	require.NoError(t, err)

	again, _ := reparse(t, rebuilt)
	body2, atts2 := edit.Extract(again)
	assert.Equal(t, body.Plain, body2.Plain)
	assert.Equal(t, body.HTML, body2.HTML)

	require.Len(t, atts2, len(atts))
	for i := range atts {
		assert.Equal(t, atts[i].Filename, atts2[i].Filename)
		assert.Equal(t, atts[i].ContentType, atts2[i].ContentType)
		assert.Equal(t, atts[i].Content, atts2[i].Content)
	}

	assert.Equal(t, edit.Summarize(msg).Headers, edit.Summarize(again).Headers)
}
