package header

import (
	"errors"

	"github.com/zostay/emledit/message/header/param"
)

// GetParamValue parses the named field as a parameterized value. When the
// field repeats, the first one is parsed and returned with ErrManyFields.
// The result is a copy and may be changed freely.
func (h *Header) GetParamValue(name string) (*param.Value, error) {
	if v, ok := h.cached(name); ok {
		if pv, ok := v.(*param.Value); ok {
			return pv.Clone(), nil
		}
	}

	body, err := h.Get(name)
	if err != nil && !errors.Is(err, ErrManyFields) {
		return nil, err
	}

	pv, perr := param.Parse(body)
	if perr != nil {
		if err != nil {
			return nil, err
		}
		return nil, perr
	}
	if err != nil {
		return pv, err
	}

	h.cache(name, pv)
	return pv.Clone(), nil
}

// SetParamValue replaces the named field with the formatted value.
func (h *Header) SetParamValue(name string, pv *param.Value) {
	h.Set(name, pv.String())
	h.cache(name, pv.Clone())
}

func (h *Header) primary(name string) (string, error) {
	pv, err := h.GetParamValue(name)
	if err != nil {
		return "", err
	}
	return pv.Value(), nil
}

// setPrimary changes the value before the first semicolon, creating the
// field if needed and keeping existing parameters.
func (h *Header) setPrimary(name, v string) {
	pv, err := h.GetParamValue(name)
	switch {
	case pv == nil, err != nil && !errors.Is(err, ErrManyFields):
		pv = param.New(v)
	default:
		pv = param.Modify(pv, param.Change(v))
	}
	h.SetParamValue(name, pv)
}

func (h *Header) parameter(name, p string) (string, error) {
	pv, err := h.GetParamValue(name)
	if err != nil {
		return "", err
	}
	if v := pv.Parameter(p); v != "" {
		return v, nil
	}
	return "", ErrNoSuchFieldParameter
}

// setParameter sets one parameter on a field that must already exist.
func (h *Header) setParameter(name, p, v string) error {
	pv, err := h.GetParamValue(name)
	if pv == nil {
		return err
	}
	h.SetParamValue(name, param.Modify(pv, param.Set(p, v)))
	return nil
}

// GetContentType returns the parsed Content-type.
func (h *Header) GetContentType() (*param.Value, error) { return h.GetParamValue(ContentType) }

// SetContentType replaces the Content-type.
func (h *Header) SetContentType(pv *param.Value) { h.SetParamValue(ContentType, pv) }

// GetMediaType returns the lowercase media type of the Content-type.
func (h *Header) GetMediaType() (string, error) { return h.primary(ContentType) }

// SetMediaType changes the media type, keeping any Content-type parameters.
func (h *Header) SetMediaType(mt string) { h.setPrimary(ContentType, mt) }

// GetCharset returns the charset parameter of the Content-type.
func (h *Header) GetCharset() (string, error) { return h.parameter(ContentType, param.Charset) }

// SetCharset sets the charset parameter. The Content-type must exist.
func (h *Header) SetCharset(cs string) error {
	return h.setParameter(ContentType, param.Charset, cs)
}

// GetBoundary returns the boundary parameter of the Content-type.
func (h *Header) GetBoundary() (string, error) { return h.parameter(ContentType, param.Boundary) }

// SetBoundary sets the boundary parameter. The Content-type must exist.
func (h *Header) SetBoundary(b string) error {
	return h.setParameter(ContentType, param.Boundary, b)
}

// GetContentDisposition returns the parsed Content-disposition.
func (h *Header) GetContentDisposition() (*param.Value, error) {
	return h.GetParamValue(ContentDisposition)
}

// SetContentDisposition replaces the Content-disposition.
func (h *Header) SetContentDisposition(pv *param.Value) {
	h.SetParamValue(ContentDisposition, pv)
}

// GetPresentation returns the disposition, usually "inline" or "attachment".
func (h *Header) GetPresentation() (string, error) { return h.primary(ContentDisposition) }

// SetPresentation changes the disposition, keeping its parameters.
func (h *Header) SetPresentation(d string) { h.setPrimary(ContentDisposition, d) }

// GetFilename returns the filename parameter of the Content-disposition.
func (h *Header) GetFilename() (string, error) {
	return h.parameter(ContentDisposition, param.Filename)
}

// SetFilename sets the filename parameter. The Content-disposition must
// exist.
func (h *Header) SetFilename(fn string) error {
	return h.setParameter(ContentDisposition, param.Filename, fn)
}
