package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/microcity/internal/world"
)

// gridV1 is the snapshot payload: row-major kinds and levels.
type gridV1 struct {
	Version int    `json:"version"`
	Size    int    `json:"size"`
	Kinds   []byte `json:"kinds"`
	Levels  []byte `json:"levels"`
}

// EncodeGrid serialises a grid and compresses it with zstd.
func EncodeGrid(g *world.Grid) ([]byte, error) {
	if g == nil {
		g = world.NewGrid()
	}
	kinds, levels := g.Cells()
	payload := gridV1{
		Version: 1,
		Size:    world.Size,
		Kinds:   make([]byte, len(kinds)),
		Levels:  make([]byte, len(levels)),
	}
	for i := range kinds {
		payload.Kinds[i] = byte(kinds[i])
		payload.Levels[i] = byte(levels[i])
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal grid: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil), nil
}

// DecodeGrid reverses EncodeGrid.
func DecodeGrid(blob []byte) (*world.Grid, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress grid: %w", err)
	}
	var payload gridV1
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal grid: %w", err)
	}
	if payload.Version != 1 || payload.Size != world.Size {
		return nil, fmt.Errorf("unsupported grid snapshot v%d size %d", payload.Version, payload.Size)
	}

	kinds := make([]world.Kind, len(payload.Kinds))
	levels := make([]int, len(payload.Levels))
	for i, k := range payload.Kinds {
		kinds[i] = world.Kind(k)
	}
	for i, l := range payload.Levels {
		levels[i] = int(l)
	}
	g := world.NewGrid()
	if err := g.Restore(kinds, levels); err != nil {
		return nil, err
	}
	return g, nil
}
