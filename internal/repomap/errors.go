package repomap

import "fmt"

// ErrorKind is the closed taxonomy of error kinds the facade surfaces
// (every error the core returns carries one of these, never an ambient
// panic).
type ErrorKind string

const (
	KindConfig   ErrorKind = "config_error"
	KindIo       ErrorKind = "io_error"
	KindParse    ErrorKind = "parse_error"
	KindCache    ErrorKind = "cache_error"
	KindParallel ErrorKind = "parallel_error"
	KindGraph    ErrorKind = "graph_error"
	KindNotFound ErrorKind = "not_found_error"
)

// Error is the typed error every repomap component returns at its
// boundary: a kind tag, a human-readable message, an optional detail map,
// and an optional wrapped cause.
type Error struct {
	Kind    ErrorKind
	Path    string
	Message string
	Detail  map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func NewConfigError(message string, cause error) error {
	return &Error{Kind: KindConfig, Message: message, Cause: cause}
}

func NewIoError(path, message string, cause error) error {
	return &Error{Kind: KindIo, Path: path, Message: message, Cause: cause}
}

func NewParseError(path, message string, cause error) error {
	return &Error{Kind: KindParse, Path: path, Message: message, Cause: cause}
}

func NewCacheError(message string, cause error) error {
	return &Error{Kind: KindCache, Message: message, Cause: cause}
}

func NewParallelError(message string, cause error) error {
	return &Error{Kind: KindParallel, Message: message, Cause: cause}
}

func NewGraphError(message string, detail map[string]any) error {
	return &Error{Kind: KindGraph, Message: message, Detail: detail}
}

func NewNotFoundError(path, message string) error {
	return &Error{Kind: KindNotFound, Path: path, Message: message}
}
