package document

import (
	"errors"
	"fmt"
)

// Sentinel errors for document access and loading.
var (
	// ErrMissingSetting indicates a required path is absent and no default was given.
	ErrMissingSetting = errors.New("missing required setting")
	// ErrTypeMismatch indicates a value is present but cannot be converted to the requested type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrInvalidSetting indicates a value has the right type but an unacceptable value.
	ErrInvalidSetting = errors.New("invalid setting")
	// ErrUnsupportedFormat indicates a file extension with no known parser.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrUnsupportedValue indicates decoded data with no document representation.
	ErrUnsupportedValue = errors.New("unsupported document value")
	// ErrIncludeCycle indicates a $(file) include that refers back to one of its includers.
	ErrIncludeCycle = errors.New("include cycle")
)

// SettingError records a failed access with the full path of the offending key.
type SettingError struct {
	Path string
	Want string // requested Go type, for type mismatches
	Got  string // document kind found, for type mismatches
	Err  error
}

// Error returns the path followed by the underlying cause.
func (e *SettingError) Error() string {
	path := e.Path
	if path == "" {
		path = "<root>"
	}
	if e.Want != "" {
		return fmt.Sprintf("%s: %v: want %s, got %s", path, e.Err, e.Want, e.Got)
	}
	return path + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *SettingError) Unwrap() error {
	return e.Err
}

// Missing returns a SettingError reporting that path is required.
func Missing(path Path) error {
	return &SettingError{Path: path.String(), Err: ErrMissingSetting}
}

// Invalid returns a SettingError wrapping ErrInvalidSetting with a reason.
func Invalid(path Path, format string, args ...any) error {
	return &SettingError{
		Path: path.String(),
		Err:  fmt.Errorf("%w: %s", ErrInvalidSetting, fmt.Sprintf(format, args...)),
	}
}

// Wrap attaches path context to err, preserving err for errors.Is.
func Wrap(path Path, err error) error {
	var se *SettingError
	if errors.As(err, &se) {
		return err
	}
	return &SettingError{Path: path.String(), Err: err}
}
