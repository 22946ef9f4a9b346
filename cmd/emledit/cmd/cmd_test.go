package cmd_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/emledit/cmd/emledit/cmd"
	"github.com/zostay/emledit/edit"
	"github.com/zostay/emledit/internal/server"
	"github.com/zostay/emledit/message"
)

const hola = "From: Ana <ana@example.es>\r\n" +
	"Subject: Hola\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=\"mixed\"\r\n" +
	"\r\n" +
	"--mixed\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>Hola</p><img src=\"cid:img1\">\r\n" +
	"--mixed\r\n" +
	"Content-Type: image/png\r\n" +
	"Content-Disposition: inline; filename=\"pixel.png\"\r\n" +
	"Content-ID: <img1>\r\n" +
	"Content-Transfer-Encoding: base64\r\n" +
	"\r\n" +
	"iVBORw0KGgo=\r\n" +
	"--mixed--\r\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := cmd.NewRootCommand()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(bytes.NewBufferString(hola))
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestExtract(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "hola.eml", hola)

	out, _, err := run(t, "extract", path)
	require.NoError(t, err)

	var report server.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "hola.eml", report.Filename)
	assert.Equal(t, `<p>Hola</p><img src="cid:img1">`, report.HTML)
	assert.Empty(t, report.PreviewHTML)
	require.Len(t, report.Attachments, 1)
	assert.Equal(t, "pixel.png", report.Attachments[0].Filename)
}

func TestExtract_Inline(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "extract", "--inline", "-")
	require.NoError(t, err)

	var report server.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "-", report.Filename)
	assert.Equal(t, `<p>Hola</p><img src="data:image/png;base64,iVBORw0KGgo=">`, report.PreviewHTML)
}

func TestExtract_Missing(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, "extract", filepath.Join(t.TempDir(), "missing.eml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtract_Malformed(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "empty.eml", "")

	_, _, err := run(t, "extract", path)
	var mme *message.MalformedMessageError
	assert.ErrorAs(t, err, &mme)
}

func TestPreview(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "preview", "-")
	require.NoError(t, err)
	assert.Equal(t, "language:   unknown\n"+
		"target:     en\n"+
		"translated: false\n"+
		"\n"+
		"Hola\n", out)
}

func TestRebuild(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeFile(t, dir, "hola.eml", hola)
	body := writeFile(t, dir, "body.html", "<p>Hola mundo</p>")
	notes := writeFile(t, dir, "notas.txt", "recordar")
	dst := filepath.Join(dir, "out.eml")

	_, _, err := run(t, "rebuild", src,
		"--html", body,
		"--header", "Subject=Hola de nuevo",
		"--header", "cc=carla@example.es",
		"--keep", "0",
		"--attach", notes,
		"-o", dst,
	)
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)

	msg, err := message.Parse(bytes.NewReader(data))
	require.NoError(t, err)

	s := edit.Summarize(msg)
	assert.Equal(t, "Hola de nuevo", s.Get("Subject"))
	assert.Equal(t, "carla@example.es", s.Get("Cc"))

	b, atts := edit.Extract(msg)
	assert.Equal(t, "<p>Hola mundo</p>", b.HTML)
	assert.Equal(t, "Hola mundo", b.Plain)
	require.Len(t, atts, 2)
	assert.Equal(t, "pixel.png", atts[0].Filename)
	assert.Equal(t, "notas.txt", atts[1].Filename)
	assert.Equal(t, "text/plain", atts[1].ContentType)
}

func TestRebuild_Stdout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	body := writeFile(t, dir, "body.txt", "Hola mundo")

	out, _, err := run(t, "rebuild", "-", "--plain", body, "--keep-all")
	require.NoError(t, err)

	msg, err := message.Parse(bytes.NewReader([]byte(out)))
	require.NoError(t, err)

	b, atts := edit.Extract(msg)
	assert.Equal(t, "Hola mundo", b.Plain)
	assert.Equal(t, `<p>Hola</p><img src="cid:img1">`, b.HTML)
	assert.Len(t, atts, 1)
}

func TestRebuild_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeFile(t, dir, "hola.eml", hola)
	body := writeFile(t, dir, "body.txt", "x")

	_, _, err := run(t, "rebuild", src)
	assert.ErrorIs(t, err, cmd.ErrNoBody)

	_, _, err = run(t, "rebuild", src, "--plain", body, "--header", "Subject")
	assert.EqualError(t, err, `header "Subject" is not in Name=Value form`)

	_, _, err = run(t, "rebuild", src, "--plain", body, "--header", "X-Mailer=me")
	var hne *edit.HeaderNotEditableError
	assert.ErrorAs(t, err, &hne)

	_, _, err = run(t, "rebuild", src, "--plain", body, "--html", body)
	assert.Error(t, err)

	_, _, err = run(t, "rebuild", src, "--plain", body, "--attach", filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRoundtrip(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "hola.eml", hola)

	out, _, err := run(t, "roundtrip", path)
	require.NoError(t, err)
	assert.Equal(t, "ok: "+path+" (364 bytes)\n", out)
}

func TestConfigFlags(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, _, err := run(t, "--config", filepath.Join(dir, "missing.yaml"), "roundtrip", "-")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, _, err = run(t, "--log-level", "loud", "roundtrip", "-")
	assert.EqualError(t, err, `unknown log level "loud"`)

	cfg := writeFile(t, dir, "emledit.yaml", "parse:\n  max_header_length: 16\n")
	_, _, err = run(t, "--config", cfg, "roundtrip", "-")
	assert.ErrorIs(t, err, message.ErrLargeHeader)

	out, stderr, err := run(t, "--log-level", "debug", "roundtrip", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "ok: -")
	assert.Contains(t, stderr, `"msg":"parsed message"`)
}
