// Package spice provides Pool, an in-process ephemeris kernel registry. It
// validates and tracks the active kernel set; state and orientation queries
// are left to the external astronomical-kernel service.
package spice

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrUnknownKernelType is returned when a file header names no known kernel type.
var ErrUnknownKernelType = errors.New("unrecognized kernel file header")

// headerCacheSize bounds the number of identified kernel headers retained
// between resolution passes.
const headerCacheSize = 256

// Type is a kernel architecture/type pair such as "DAF/SPK".
type Type string

// Recognized kernel types.
const (
	TypeSPK  Type = "DAF/SPK"
	TypeBPCK Type = "DAF/PCK"
	TypeCK   Type = "DAF/CK"
	TypeLSK  Type = "KPL/LSK"
	TypeTPCK Type = "KPL/PCK"
	TypeFK   Type = "KPL/FK"
	TypeIK   Type = "KPL/IK"
	TypeSCLK Type = "KPL/SCLK"
	TypeMK   Type = "KPL/MK"
)

var knownTypes = []Type{TypeSPK, TypeBPCK, TypeCK, TypeLSK, TypeTPCK, TypeFK, TypeIK, TypeSCLK, TypeMK}

// Kernel describes one loaded kernel file.
type Kernel struct {
	Path    string
	Type    Type
	Size    int64
	ModTime time.Time
}

type headerKey struct {
	path    string
	size    int64
	modTime int64
}

// Pool is the active kernel set. It is safe for concurrent use, but the
// clear-then-load sequence of a resolution pass still has to be serialized
// by the caller.
type Pool struct {
	mu      sync.Mutex
	loaded  []Kernel
	headers *lru.Cache[headerKey, Type]
}

// NewPool creates an empty pool.
func NewPool() (*Pool, error) {
	cache, err := lru.New[headerKey, Type](headerCacheSize)
	if err != nil {
		return nil, fmt.Errorf("spice: header cache: %w", err)
	}
	return &Pool{headers: cache}, nil
}

// ClearKernels unloads every kernel.
func (p *Pool) ClearKernels() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded = nil
	return nil
}

// LoadKernel identifies the file at path and appends it to the active set.
func (p *Pool) LoadKernel(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("spice: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("spice: %s is a directory", path)
	}

	key := headerKey{path: path, size: info.Size(), modTime: info.ModTime().UnixNano()}
	typ, ok := p.headers.Get(key)
	if !ok {
		typ, err = identify(path)
		if err != nil {
			return err
		}
		p.headers.Add(key, typ)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded = append(p.loaded, Kernel{
		Path:    path,
		Type:    typ,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	})
	return nil
}

// Loaded returns a copy of the active kernel set in load order.
func (p *Pool) Loaded() []Kernel {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Kernel, len(p.loaded))
	copy(out, p.loaded)
	return out
}

// Len returns the number of loaded kernels.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.loaded)
}

// identify reads the ID word at the start of a kernel file. Binary kernels
// carry an 8-byte "DAF/SPK " style word; text kernels start with "KPL/xxx".
func identify(path string) (Type, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("spice: %w", err)
	}
	defer f.Close()

	head := make([]byte, 16)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("spice: reading %s: %w", path, err)
	}
	head = bytes.TrimLeft(head[:n], " \t\r\n")
	word := strings.TrimSpace(string(head))
	// Legacy "NAIF/DAF" ID words predate per-type IDs and load as SPK.
	if strings.HasPrefix(word, "NAIF/DAF") {
		return TypeSPK, nil
	}
	for _, t := range knownTypes {
		if strings.HasPrefix(word, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKernelType, path)
}
