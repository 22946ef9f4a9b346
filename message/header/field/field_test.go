package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/emledit/message/header/field"
)

func TestNew(t *testing.T) {
	t.Parallel()

	f := field.New("Subject", "probando")

	assert.Equal(t, "Subject: probando", f.String())
	assert.Equal(t, []byte("Subject: probando"), f.Bytes())
	assert.Equal(t, "Subject", f.Name())
	assert.Equal(t, "probando", f.Body())
	assert.False(t, f.HasRaw())

	f.SetName("X-Subject")
	assert.Equal(t, "X-Subject: probando", f.String())
	assert.Equal(t, "X-Subject", f.Name())

	f.SetBody("uno dos tres")
	assert.Equal(t, "X-Subject: uno dos tres", f.String())
	assert.Equal(t, "uno dos tres", f.Body())

	f.SetRaw([]byte("sUBJECT: PROBANDO"))
	assert.True(t, f.HasRaw())
	assert.Equal(t, "sUBJECT: PROBANDO", f.String())
	assert.Equal(t, []byte("sUBJECT: PROBANDO"), f.Bytes())
	assert.Equal(t, "X-Subject", f.Name())
	assert.Equal(t, "uno dos tres", f.Body())

	f.SetName("Subject")
	assert.False(t, f.HasRaw())
	assert.Equal(t, "Subject: uno dos tres", f.String())

	f.SetRaw([]byte("no colon here"))
	assert.Equal(t, "no colon here", f.String())
	assert.Equal(t, "no colon here", f.Raw.Name())
	assert.Equal(t, "", f.Raw.Body())
	assert.Equal(t, "Subject", f.Name())
}

func TestNew_EncodesUnicode(t *testing.T) {
	t.Parallel()

	f := field.New("Subject", "Grüße")
	assert.Equal(t, "Subject: =?utf-8?b?R3LDvMOfZQ==?=", f.String())
}

func TestField_Clone(t *testing.T) {
	t.Parallel()

	f := field.Parse(field.Line("Subject: hello\n"), []byte("\n"))
	c := f.Clone()
	c.SetBody("goodbye")

	assert.Equal(t, "hello", f.Body())
	assert.Equal(t, "Subject: hello", f.String())
	assert.Equal(t, "Subject: goodbye", c.String())
}

func TestParse(t *testing.T) {
	t.Parallel()

	f := field.Parse(field.Line("Subject: =?utf-8?Q?Caf=C3=A9?=\r\n  menu\r\n"), []byte("\r\n"))
	require.NotNil(t, f)
	assert.Equal(t, "Subject", f.Name())
	assert.Equal(t, "Café  menu", f.Body())
	assert.Equal(t, "Subject: =?utf-8?Q?Caf=C3=A9?=\r\n  menu", f.String())
	assert.Equal(t, " =?utf-8?Q?Caf=C3=A9?=\r\n  menu", f.Raw.Body())
}

func TestParse_NoColon(t *testing.T) {
	t.Parallel()

	f := field.Parse(field.Line("garbage\n"), []byte("\n"))
	assert.Equal(t, "garbage", f.Name())
	assert.Equal(t, "", f.Body())
	assert.Equal(t, "garbage", f.String())
}

func TestParseLines(t *testing.T) {
	t.Parallel()

	lines, err := field.ParseLines([]byte("A: 1\nB: 2\n  more\nC: 3\n\n"), []byte("\n"))
	assert.NoError(t, err)
	assert.Equal(t, field.Lines{
		field.Line("A: 1\n"),
		field.Line("B: 2\n  more\n"),
		field.Line("C: 3\n"),
	}, lines)
}

func TestParseLines_BadStart(t *testing.T) {
	t.Parallel()

	lines, err := field.ParseLines([]byte("  junk\nnot a header\nA: 1\n"), []byte("\n"))
	require.Error(t, err)

	var bse *field.BadStartError
	require.ErrorAs(t, err, &bse)
	assert.Equal(t, []byte("  junk\nnot a header\n"), bse.BadStart)
	assert.Equal(t, field.Lines{field.Line("A: 1\n")}, lines)
}
