package exports

import (
	"fmt"
	"os"
	"path/filepath"

	"escape-planner/internal/plans"
	"escape-planner/internal/shared/util"
)

// DefaultPath places the document directly under dir using its download name.
func DefaultPath(dir string, doc plans.ExportedDocument) (string, error) {
	name, err := util.SafeFileName(doc.Filename)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// WriteFile stages the document in a temp file beside path and renames it into place.
// The temp file never outlives the call.
func WriteFile(path string, doc plans.ExportedDocument) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".escape-plan-*.pdf")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(doc.Bytes); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
