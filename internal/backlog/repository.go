package backlog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/taskweave/internal/errors"
)

// Repository loads and saves backlog documents.
type Repository interface {
	// Load reads a document. A missing file yields a DOC-001 error.
	Load(path string) (*Document, error)

	// Save writes a document. Either the whole document is written or the
	// previous file is left in place.
	Save(doc *Document, path string) error
}

// FileRepository implements Repository on the local filesystem
type FileRepository struct{}

// NewFileRepository creates a new file-based document repository
func NewFileRepository() *FileRepository {
	return &FileRepository{}
}

// Load reads a document, choosing JSON or YAML by extension
func (r *FileRepository) Load(path string) (*Document, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDocUnsupported, "unsupported backlog document", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewDocNotFoundError(path)
		}
		return nil, errors.NewDocInvalidError(path, err)
	}

	doc, err := Parse(data, format)
	if err != nil {
		return nil, errors.NewDocInvalidError(path, err)
	}
	return doc, nil
}

// Save writes the document through a temp file in the same directory and
// renames it over the target.
func (r *FileRepository) Save(doc *Document, path string) error {
	data, err := doc.Marshal()
	if err != nil {
		return errors.NewDocWriteError(path, err)
	}

	if err := writeAtomic(path, data); err != nil {
		return errors.NewDocWriteError(path, err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
