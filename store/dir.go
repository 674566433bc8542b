package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sat8bit/charagen/persona"
	"gopkg.in/yaml.v3"
)

// DirStore は、シートを <root>/<label>/NN_name.yaml として保存します。
type DirStore struct {
	root   string
	logger *slog.Logger
}

// NewDirStore は、新しい DirStore を生成します。ディレクトリは保存時に作成します。
func NewDirStore(root string, logger *slog.Logger) *DirStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirStore{root: root, logger: logger}
}

// SaveBatch は、シートを保存順の連番付きファイルに書き出します。同名ファイルは上書きします。
func (s *DirStore) SaveBatch(ctx context.Context, label string, sheets []*persona.CharacterSheet) (*Batch, error) {
	dir := filepath.Join(s.root, SafeLabel(label))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	b := &Batch{
		ID:        uuid.NewString(),
		Label:     label,
		Location:  dir,
		CreatedAt: time.Now(),
	}
	for i, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return b, err
		}

		data, err := yaml.Marshal(sheet)
		if err != nil {
			return b, fmt.Errorf("failed to marshal sheet %s: %w", sheet.Name, err)
		}

		path := filepath.Join(dir, FileName(i+1, sheet.Name))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return b, fmt.Errorf("failed to write sheet file %s: %w", path, err)
		}
		b.Entries = append(b.Entries, entryFor(path, sheet))
	}

	s.logger.Info("sheets saved", "batch", b.ID, "dir", dir, "count", len(b.Entries))
	return b, nil
}

// Load は、保存済みのシートファイルを読み直して検証します。
func (s *DirStore) Load(ctx context.Context, ref string) (*persona.CharacterSheet, error) {
	data, err := os.ReadFile(ref)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet file %s: %w", ref, err)
	}

	var sheet persona.CharacterSheet
	if err := yaml.Unmarshal(data, &sheet); err != nil {
		return nil, fmt.Errorf("failed to load sheet file %s: %w", ref, err)
	}
	return &sheet, nil
}

var _ Store = (*DirStore)(nil)
