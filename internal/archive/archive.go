// Package archive пишет снимок каждого раунда в отдельный файл,
// чтобы ставки можно было разобрать постфактум.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirArchiver - архив в каталоге на диске, один json на раунд
type DirArchiver struct {
	Dir string
}

// Write - сохраняем снимок раунда под ключом <timestamp>-<channel>
func (a *DirArchiver) Write(key string, payload []byte) error {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create archive dir: %w", err)
	}
	path := filepath.Join(a.Dir, key+".json")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write archive file: %w", err)
	}
	return nil
}
