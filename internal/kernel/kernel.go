// Package kernel decides which ephemeris kernels a resolution pass loads and
// the time window over which their data must be available.
package kernel

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
)

// DefaultMargin is the padding, in seconds, applied on both sides of the
// simulation interval when ephemeris data is preloaded.
const DefaultMargin = 300.0

// ErrKernelLoad indicates the backend rejected a kernel. It is fatal for the
// resolution pass.
var ErrKernelLoad = errors.New("kernel load failed")

// Backend is the process-wide kernel set of an ephemeris service. Callers
// must serialize resolution passes that share a Backend.
type Backend interface {
	ClearKernels() error
	LoadKernel(path string) error
}

// Window holds the offsets applied to the start and end epochs. Both are
// NaN when ephemeris data is queried on demand instead of preloaded.
type Window struct {
	Pre  float64
	Post float64
}

// PreloadWindow returns the (-DefaultMargin, +DefaultMargin) window.
func PreloadWindow() Window {
	return Window{Pre: -DefaultMargin, Post: DefaultMargin}
}

// UndefinedWindow returns the on-demand sentinel window.
func UndefinedWindow() Window {
	return Window{Pre: math.NaN(), Post: math.NaN()}
}

// WindowFor picks the window matching the preload setting.
func WindowFor(preload bool) Window {
	if preload {
		return PreloadWindow()
	}
	return UndefinedWindow()
}

// Defined reports whether both offsets are numbers.
func (w Window) Defined() bool {
	return !math.IsNaN(w.Pre) && !math.IsNaN(w.Post)
}

// Expand applies the offsets to an interval: (start+Pre, end+Post).
// An undefined window yields NaN bounds.
func (w Window) Expand(start, end float64) (float64, float64) {
	return start + w.Pre, end + w.Post
}

// LoadError reports which kernel of the requested list failed.
type LoadError struct {
	Path  string
	Index int
	Err   error
}

// Error includes the kernel's position in the list and its path.
func (e *LoadError) Error() string {
	return fmt.Sprintf("%v: simulation.spiceKernels[%d] %s: %v", ErrKernelLoad, e.Index, e.Path, e.Err)
}

// Unwrap exposes both ErrKernelLoad and the backend's own error.
func (e *LoadError) Unwrap() []error {
	return []error{ErrKernelLoad, e.Err}
}

// Manager clears and repopulates a Backend for each resolution pass.
type Manager struct {
	Backend Backend
	// Dir resolves relative kernel paths. Empty means the working directory.
	Dir string
}

// Reload clears every loaded kernel and loads paths in order. It returns
// the resolved paths. If any load fails the backend is cleared again so no
// partial kernel set survives the pass.
func (m *Manager) Reload(paths []string) ([]string, error) {
	if m.Backend == nil {
		if len(paths) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: no ephemeris backend configured", ErrKernelLoad)
	}
	if err := m.Backend.ClearKernels(); err != nil {
		return nil, fmt.Errorf("clearing kernels: %w", err)
	}

	resolved := make([]string, 0, len(paths))
	for i, p := range paths {
		full := m.resolve(p)
		if err := m.Backend.LoadKernel(full); err != nil {
			// Best effort; the load error is what the caller needs.
			_ = m.Backend.ClearKernels()
			return nil, &LoadError{Path: full, Index: i, Err: err}
		}
		resolved = append(resolved, full)
	}
	return resolved, nil
}

func (m *Manager) resolve(p string) string {
	if m.Dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
