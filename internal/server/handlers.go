package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/zostay/emledit/edit"
	"github.com/zostay/emledit/message"
)

// Form fields of the upload forms.
const (
	MessageField    = "eml"
	EditField       = "edit"
	AttachmentField = "attach"
)

// defaultFilename names an upload that came without a filename.
const defaultFilename = "message.eml"

// maxFormMemory is the part of a form kept in memory. The rest goes to
// temporary files.
const maxFormMemory = 32 << 20

// EditRequest is the JSON held in the edit field of a rebuild request. A
// missing body keeps the body of the message and a missing keep list keeps
// every attachment. An empty body or keep list is taken as given.
type EditRequest struct {
	Body    *string           `json:"body"`
	Subtype string            `json:"subtype"`
	Headers map[string]string `json:"headers"`
	Keep    *[]int            `json:"keep"`
	KeepAll bool              `json:"keep_all"`
}

// httpError is an error with the status to report it with.
type httpError struct {
	status int
	msg    string
}

func (err *httpError) Error() string {
	return err.msg
}

// readMessage parses the form and the message in it.
func (s *Server) readMessage(w http.ResponseWriter, r *http.Request) (message.Part, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxUploadSize)

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, "", &httpError{http.StatusRequestEntityTooLarge, "upload is too large"}
		}
		return nil, "", &httpError{http.StatusBadRequest, "invalid form: " + err.Error()}
	}

	f, fh, err := r.FormFile(MessageField)
	if err != nil {
		return nil, "", &httpError{http.StatusBadRequest, "missing " + MessageField + " file"}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", &httpError{http.StatusBadRequest, "failed to read upload: " + err.Error()}
	}

	msg, err := message.Parse(bytes.NewReader(data), s.config.ParseOptions()...)
	if err != nil {
		return nil, "", &httpError{http.StatusUnprocessableEntity, err.Error()}
	}

	name := filepath.Base(fh.Filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = defaultFilename
	}

	return msg, name, nil
}

// removeForm deletes the temporary files of a parsed multipart form.
func removeForm(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

// fail reports the error to the client and logs it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	var herr *httpError
	if errors.As(err, &herr) {
		status = herr.status
		msg = herr.msg
	}

	logger := s.loggerFrom(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}

	s.jsonError(w, msg, status)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	defer removeForm(r)

	msg, name, err := s.readMessage(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	report := NewReport(r.Context(), msg, name, ReportOptions{
		Inline:     true,
		Translator: s.translator,
	})

	s.loggerFrom(r.Context()).Info("extracted message",
		"filename", name,
		"attachments", len(report.Attachments),
	)

	s.jsonResponse(w, report, http.StatusOK)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	defer removeForm(r)

	msg, name, err := s.readMessage(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	e, err := readEdit(r.MultipartForm, msg)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	rebuilt, err := edit.Rebuild(msg, e)
	if err != nil {
		var hne *edit.HeaderNotEditableError
		if errors.As(err, &hne) || errors.Is(err, edit.ErrUnknownSubtype) {
			err = &httpError{http.StatusBadRequest, err.Error()}
		}
		s.fail(w, r, err)
		return
	}

	out, err := message.Bytes(rebuilt)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.loggerFrom(r.Context()).Info("rebuilt message",
		"filename", name,
		"size", len(out),
	)

	w.Header().Set("Content-Type", "message/rfc822")
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": "edited_" + name}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// readEdit builds the edit from the edit field and the attachment files.
func readEdit(form *multipart.Form, msg message.Part) (*edit.Edit, error) {
	req := &EditRequest{}
	if vs := form.Value[EditField]; len(vs) > 0 && vs[0] != "" {
		if err := json.Unmarshal([]byte(vs[0]), req); err != nil {
			return nil, &httpError{http.StatusBadRequest, "invalid " + EditField + " field: " + err.Error()}
		}
	}

	e := &edit.Edit{
		Subtype: req.Subtype,
		Headers: req.Headers,
		KeepAll: req.KeepAll,
	}

	if req.Body != nil {
		e.Body = *req.Body
	} else {
		e.Body, e.Subtype = originalBody(msg, req.Subtype)
	}

	if req.Keep != nil {
		e.Keep = *req.Keep
	} else {
		e.KeepAll = true
	}

	for _, fh := range form.File[AttachmentField] {
		content, err := readFile(fh)
		if err != nil {
			return nil, &httpError{http.StatusBadRequest, "failed to read attachment: " + err.Error()}
		}

		e.Add = append(e.Add, edit.NewAttachment{
			Filename:    filepath.Base(fh.Filename),
			ContentType: fh.Header.Get("Content-Type"),
			Content:     content,
		})
	}

	return e, nil
}

// originalBody returns the body of the message to use in place of a missing
// one. Without a requested subtype the HTML body is preferred, falling back to
// plain text when there is no HTML.
func originalBody(msg message.Part, subtype string) (string, string) {
	body, _ := edit.Extract(msg)
	switch {
	case subtype == edit.Plain:
		return body.Plain, subtype
	case subtype != "":
		return body.HTML, subtype
	case !body.HasHTML() && body.HasPlain():
		return body.Plain, edit.Plain
	default:
		return body.HTML, subtype
	}
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
