package persistence

import (
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/microcity/internal/world"
)

func TestGridCodec(t *testing.T) {
	g := world.NewGrid()
	cfg := world.DefaultTownConfig()
	cfg.Seed = 5
	world.GenerateTown(g, cfg)
	g.Set(world.Coord{Row: 29, Col: 29}, world.Commercial)
	g.SetLevel(world.Coord{Row: 29, Col: 29}, 3)

	blob, err := EncodeGrid(g)
	require.NoError(t, err)
	assert.Less(t, len(blob), 2*world.Size*world.Size, "snapshot is compressed")

	out, err := DecodeGrid(blob)
	require.NoError(t, err)
	assert.Equal(t, *g, *out)
}

func TestDecodeGridRejectsGarbage(t *testing.T) {
	_, err := DecodeGrid([]byte("not zstd"))
	assert.Error(t, err)

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()

	_, err = DecodeGrid(enc.EncodeAll([]byte(`{"version":2,"size":30}`), nil))
	assert.ErrorContains(t, err, "unsupported")

	_, err = DecodeGrid(enc.EncodeAll([]byte(`{"version":1,"size":30,"kinds":"AAE=","levels":"AAA="}`), nil))
	assert.Error(t, err, "wrong cell count")
}
