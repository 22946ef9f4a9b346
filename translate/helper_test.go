package translate_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zostay/emledit/edit"
	"github.com/zostay/emledit/message"
)

const holaMessage = `From: ana@example.es
Content-Type: multipart/alternative; boundary=alt

--alt
Content-Type: text/plain

Hola mundo
--alt
Content-Type: text/html

<p>Hola</p><p>mundo</p>
--alt--
`

func parseMessage(t *testing.T) message.Part {
	t.Helper()
	msg, err := message.Parse(bytes.NewReader([]byte(holaMessage)))
	require.NoError(t, err)
	return msg
}

func parseBody(t *testing.T) *edit.Body {
	t.Helper()
	body, _ := edit.Extract(parseMessage(t))
	return body
}
