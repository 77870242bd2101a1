package save

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/annel0/chunk-inspector/internal/logging"
	"github.com/annel0/chunk-inspector/internal/vec"
	"github.com/klauspost/compress/zstd"
	"github.com/segmentio/encoding/json"
)

// record - строка экспорта сохранения (JSON lines)
type record struct {
	Asset       string        `json:"asset"`
	Shape       string        `json:"shape,omitempty"`
	Position    vec.Vec3Float `json:"position"`
	Size        vec.Vec3Float `json:"size"`
	Orientation Orientation   `json:"orientation"`
	Collision   *bool         `json:"collision,omitempty"`
	Components  int           `json:"components,omitempty"`
}

func (r record) brick() Brick {
	b := Brick{
		Asset:       r.Asset,
		Position:    r.Position,
		Size:        r.Size,
		Orientation: r.Orientation,
		Collision:   true,
		Components:  r.Components,
	}
	if r.Collision != nil {
		b.Collision = *r.Collision
	}
	if r.Shape != "" {
		b.Shape = ShapeFromName(r.Shape)
	} else {
		b.Shape = ParseShape(r.Asset)
	}
	return b
}

func toRecord(b Brick) record {
	collision := b.Collision
	return record{
		Asset:       b.Asset,
		Shape:       b.Shape.String(),
		Position:    b.Position,
		Size:        b.Size,
		Orientation: b.Orientation,
		Collision:   &collision,
		Components:  b.Components,
	}
}

// compressed сообщает, нужно ли сжимать/распаковывать файл zstd
func compressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// FileSource читает экспорт сохранения в формате JSON lines (опционально .zst)
type FileSource struct {
	path string
}

// NewFileSource создаёт источник для файла экспорта
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Bricks читает файл целиком
func (fs *FileSource) Bricks(ctx context.Context) ([]Brick, error) {
	f, err := os.Open(fs.path)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть сохранение %s: %w", fs.path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if compressed(fs.path) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	bricks, err := ReadBricks(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("сохранение %s: %w", fs.path, err)
	}
	logging.Debug("📂 Прочитано %d кирпичей из %s", len(bricks), fs.path)
	return bricks, nil
}

// ReadBricks декодирует поток JSON lines. Пустые строки пропускаются.
func ReadBricks(ctx context.Context, r io.Reader) ([]Brick, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var bricks []Brick
	line := 0
	for sc.Scan() {
		line++
		if line%65536 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		data := sc.Bytes()
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}

		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("строка %d: %w", line, err)
		}
		bricks = append(bricks, rec.brick())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return bricks, nil
}

// WriteBricks кодирует кирпичи в JSON lines
func WriteBricks(w io.Writer, bricks []Brick) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i := range bricks {
		if err := enc.Encode(toRecord(bricks[i])); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile записывает экспорт сохранения; расширение .zst включает сжатие
func WriteFile(path string, bricks []Brick) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("не удалось создать %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if !compressed(path) {
		return WriteBricks(f, bricks)
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("zstd: %w", err)
	}
	if err := WriteBricks(enc, bricks); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
