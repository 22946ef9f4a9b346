// Package param parses and formats parameterized header values such as
// Content-type and Content-disposition, including RFC 2231 continuations and
// charset-tagged parameter values.
package param
