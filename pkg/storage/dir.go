package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const backupDirName = "backup"

// Dir is an os backed Store rooted at a single directory.
// Backup copies land in <root>/backup/<name>.
type Dir struct {
	l    *zap.SugaredLogger
	root string
}

func NewDir(l *zap.SugaredLogger, root string) *Dir {
	return &Dir{l: l, root: root}
}

func (d *Dir) path(name string) string {
	// requests carry bare names; anything path-like is flattened
	// so a peer can not escape the root
	return filepath.Join(d.root, filepath.Base(name))
}

func (d *Dir) OpenRead(name string) (io.ReadCloser, int64, error) {
	stats, err := os.Stat(d.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, ErrNotFound
		}

		return nil, 0, fmt.Errorf("error while checking file exists: %w", err)
	}

	f, err := os.Open(d.path(name))
	if err != nil {
		return nil, 0, fmt.Errorf("error while opening file: %w", err)
	}

	return f, stats.Size(), nil
}

func (d *Dir) OpenWrite(name string) (io.WriteCloser, error) {
	f, err := os.OpenFile(d.path(name), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		d.l.Errorf("error while opening file: %s", err.Error())

		return nil, ErrCannotCreate
	}

	return f, nil
}

func (d *Dir) Remove(name string) error {
	return os.Remove(d.path(name))
}

func (d *Dir) Duplicate(name string) error {
	backupDir := filepath.Join(d.root, backupDirName)

	if _, err := os.Stat(backupDir); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("error while checking backup dir exists: %w", err)
		}

		if err := os.Mkdir(backupDir, 0o750); err != nil {
			return fmt.Errorf("error while creating backup dir: %w", err)
		}
	}

	src, err := os.Open(d.path(name))
	if err != nil {
		return fmt.Errorf("error while opening backup source: %w", err)
	}

	defer func() {
		if err := src.Close(); err != nil {
			d.l.Errorf("error while closing backup source: %s", err.Error())
		}
	}()

	dst, err := os.Create(filepath.Join(backupDir, filepath.Base(name)))
	if err != nil {
		return fmt.Errorf("error while creating backup file: %w", err)
	}

	defer func() {
		if err := dst.Close(); err != nil {
			d.l.Errorf("error while closing backup file: %s", err.Error())
		}
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("error while copying backup: %w", err)
	}

	d.l.Debugf("backup created for %s", filepath.Base(name))

	return nil
}
