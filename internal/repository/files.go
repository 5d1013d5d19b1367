package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStorage reads and writes .sgf files on the local disk.
type FileStorage struct{}

func NewFileStorage() *FileStorage {
	return &FileStorage{}
}

// WalkSGF calls fn for every .sgf file under root.
func (f *FileStorage) WalkSGF(root string, fn func(path string, text string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".sgf") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("ошибка при чтении файла %s: %w", path, err)
		}
		return fn(path, string(data))
	})
}

func (f *FileStorage) ReadSGF(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteSGF replaces the file through a temporary file in the same directory.
func (f *FileStorage) WriteSGF(path string, text string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".kifu-*.sgf")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
