// Package vault stores imported documents and their binary assets under a
// root directory. Paths are vault-relative and slash separated.
package vault

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrExists is returned by Create and CreateBinary when the path is taken.
var ErrExists = errors.New("vault: file already exists")

// File is a handle to a document or asset inside the vault.
type File struct {
	Path      string // vault-relative
	SizeBytes int64
	ModTime   time.Time
}

// Vault is the note storage capability consumed by the importers.
type Vault interface {
	Exists(p string) (bool, error)
	CreateFolder(p string) error
	Create(p string, text string) (*File, error)
	CreateBinary(p string, data []byte) (*File, error)
	GetByPath(p string) (*File, error)
	Open(f *File) error
}

// FS is a Vault backed by a directory.
type FS struct {
	root        string
	out         io.Writer
	openCommand string
}

// NewFS returns a vault rooted at root. Open prints the opened path to out
// and, when openCommand is set, runs it with the absolute file path.
func NewFS(root string, out io.Writer, openCommand string) (*FS, error) {
	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("failed to create vault directory: %w", err)
	}
	if out == nil {
		out = io.Discard
	}
	return &FS{root: root, out: out, openCommand: openCommand}, nil
}

// Root returns the vault directory.
func (v *FS) Root() string {
	return v.root
}

func (v *FS) abs(p string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	if clean == "/" {
		return "", fmt.Errorf("invalid vault path %q", p)
	}
	return filepath.Join(v.root, filepath.FromSlash(clean[1:])), nil
}

func (v *FS) Exists(p string) (bool, error) {
	full, err := v.abs(p)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("error checking %s: %w", p, err)
}

// CreateFolder is idempotent.
func (v *FS) CreateFolder(p string) error {
	full, err := v.abs(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(full, 0750); err != nil {
		return fmt.Errorf("error creating folder %s: %w", p, err)
	}
	return nil
}

func (v *FS) Create(p string, text string) (*File, error) {
	return v.write(p, []byte(text))
}

func (v *FS) CreateBinary(p string, data []byte) (*File, error) {
	return v.write(p, data)
}

// write refuses to overwrite and writes through a temp file so a crash
// never leaves a partial document at p.
func (v *FS) write(p string, data []byte) (*File, error) {
	full, err := v.abs(p)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0750); err != nil {
		return nil, fmt.Errorf("error creating parent of %s: %w", p, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".import-*")
	if err != nil {
		return nil, fmt.Errorf("error saving file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("error saving file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("error saving file: %w", err)
	}

	// Link fails if full exists, which keeps create-once semantics.
	if err := os.Link(tmpName, full); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%s: %w", p, ErrExists)
		}
		return nil, fmt.Errorf("error saving file: %w", err)
	}
	return v.GetByPath(p)
}

// GetByPath returns nil, nil when nothing exists at p.
func (v *FS) GetByPath(p string) (*File, error) {
	full, err := v.abs(p)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting file stats: %w", err)
	}
	return &File{Path: p, SizeBytes: info.Size(), ModTime: info.ModTime()}, nil
}

func (v *FS) Open(f *File) error {
	if f == nil {
		return errors.New("vault: nothing to open")
	}
	full, err := v.abs(f.Path)
	if err != nil {
		return err
	}
	fmt.Fprintf(v.out, "Opened: %s\n", full)
	fields := strings.Fields(v.openCommand)
	if len(fields) == 0 {
		return nil
	}
	cmd := exec.Command(fields[0], append(fields[1:], full)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to run open command: %w", err)
	}
	return nil
}
