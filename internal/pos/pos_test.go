package pos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkedRoundTrip(t *testing.T) {
	for x := -100; x <= 100; x++ {
		c, d := Chunked(x)
		assert.GreaterOrEqual(t, d, 0, "смещение должно быть неотрицательным для x=%d", x)
		assert.Less(t, d, ChunkSize)
		assert.Equal(t, x, Unchunked(c, d), "round-trip нарушен для x=%d", x)
	}
}

func TestChunkedNegative(t *testing.T) {
	c, d := Chunked(-1)
	assert.Equal(t, -1, c)
	assert.Equal(t, ChunkSize-1, d)

	c, d = Chunked(-16)
	assert.Equal(t, -1, c)
	assert.Equal(t, 0, d)

	c, d = Chunked(-17)
	assert.Equal(t, -2, c)
	assert.Equal(t, ChunkSize-1, d)
}

func TestSplitScenario(t *testing.T) {
	cp, l := Split(BlockPos{X: 51, Y: 5, Z: 51})
	assert.Equal(t, ChunkPos{X: 3, Y: 0, Z: 3}, cp)
	assert.Equal(t, Local{X: 3, Y: 5, Z: 3}, l)
	assert.Equal(t, BlockPos{X: 51, Y: 5, Z: 51}, Join(cp, l))
}

func TestSplitJoinNegative(t *testing.T) {
	b := BlockPos{X: -33, Y: 200, Z: -1, Realm: Dream}
	cp, l := Split(b)
	assert.Equal(t, ChunkPos{X: -3, Y: 12, Z: -1, Realm: Dream}, cp)
	assert.True(t, l.Valid())
	assert.Equal(t, b, Join(cp, l))
	assert.Equal(t, ColPos{X: -3, Z: -1, Realm: Dream}, b.Column())
	assert.Equal(t, b.Column(), cp.Column())
}

func TestLocalIndex(t *testing.T) {
	seen := make(map[int]bool)
	for y := 0; y < ChunkSize; y++ {
		for z := 0; z < ChunkSize; z++ {
			for x := 0; x < ChunkSize; x++ {
				l := Local{X: x, Y: y, Z: z}
				i := l.Index()
				require.False(t, seen[i], "индекс %d повторяется", i)
				seen[i] = true
				assert.Equal(t, l, LocalFromIndex(i))
			}
		}
	}
	assert.Len(t, seen, ChunkSize*ChunkSize*ChunkSize)
}

func TestDistMetricLaws(t *testing.T) {
	pts := []BlockPos{
		{X: 0, Y: 0, Z: 0},
		{X: 5, Y: -3, Z: 2},
		{X: -7, Y: 4, Z: 11},
		{X: 100, Y: 0, Z: -100},
	}
	for _, a := range pts {
		assert.Equal(t, 0, a.Dist(a))
		for _, b := range pts {
			assert.Equal(t, a.Dist(b), b.Dist(a), "симметрия")
			for _, c := range pts {
				assert.LessOrEqual(t, a.Dist(c), a.Dist(b)+b.Dist(c), "неравенство треугольника")
			}
		}
	}
	assert.Equal(t, 7, BlockPos{}.Dist(BlockPos{X: 3, Y: -7, Z: 5}))
}

func TestRealmSeparation(t *testing.T) {
	a := BlockPos{X: 1, Y: 2, Z: 3, Realm: Overworld}
	b := BlockPos{X: 1, Y: 2, Z: 3, Realm: Dream}
	assert.NotEqual(t, a, b)
	assert.Equal(t, Unreachable, a.Dist(b))

	m := map[BlockPos]int{a: 1, b: 2}
	assert.Len(t, m, 2)
}

func TestPrngDeterministic(t *testing.T) {
	p := BlockPos{X: -12, Y: 64, Z: 9}
	first := p.Prng(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, p.Prng(42))
	}
	assert.NotEqual(t, first, p.Prng(43), "разные сиды должны давать разные значения")
	assert.NotEqual(t, first, p.Add(1, 0, 0).Prng(42))
	assert.Equal(t, prngRound(prngRound(42, -12, 64, 9), -12, 64, 9), first)
}

func TestFromVecFloors(t *testing.T) {
	b := FromVec(Vec3{X: -0.5, Y: 3.99, Z: 16.0}, Overworld)
	assert.Equal(t, BlockPos{X: -1, Y: 3, Z: 16}, b)
	assert.Equal(t, BlockPos{X: -2, Y: 3, Z: 17}, b.AddVec(Vec3{X: -0.1, Z: 1.5}))
}

func TestRealmParse(t *testing.T) {
	r, err := ParseRealm("Dream")
	require.NoError(t, err)
	assert.Equal(t, Dream, r)
	assert.Equal(t, "dream", r.String())
	_, err = ParseRealm("nether")
	assert.Error(t, err)
}

func TestColumnOfChunk(t *testing.T) {
	c := ColPos{X: -2, Z: 5}
	for cy := 0; cy < 4; cy++ {
		assert.Equal(t, c, c.Chunk(cy).Column())
	}
	assert.Equal(t, 3, c.Dist(ColPos{X: 1, Z: 4}))
	assert.Equal(t, BlockPos{X: -32, Z: 80}, c.Origin())
}
