// Package storage keeps the original uploaded resume bytes on disk, keyed by
// record ID. Extracted text lives in the database; the raw file is retained
// only so the owner can download what they uploaded.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStorage{basePath: basePath}, nil
}

// getPathFromID shards files across directories by the first two ID
// characters to keep directory sizes bounded.
func (ls *LocalStorage) getPathFromID(id string) string {
	if len(id) < 2 {
		return filepath.Join(ls.basePath, id)
	}
	return filepath.Join(ls.basePath, id[:1], id[1:2], id)
}

func (ls *LocalStorage) Save(id string, data io.Reader) error {
	filePath := ls.getPathFromID(id)

	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, data)
	return err
}

func (ls *LocalStorage) Get(id string) (io.ReadCloser, error) {
	filePath := ls.getPathFromID(id)

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file with id %s not found: %w", id, err)
		}
		return nil, err
	}

	return file, nil
}

func (ls *LocalStorage) Delete(id string) error {
	err := os.Remove(ls.getPathFromID(id))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
