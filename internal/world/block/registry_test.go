package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	for _, id := range All() {
		parsed, err := Parse(id.String())
		require.NoError(t, err, "блок %d должен разбираться по имени", id)
		assert.Equal(t, id, parsed)
	}
}

func TestParseUnknown(t *testing.T) {
	_, err := Parse("unobtainium")
	assert.Error(t, err)
}

func TestProperties(t *testing.T) {
	assert.False(t, Air.IsSolid(), "воздух прозрачен")
	assert.True(t, Stone.IsSolid())
	assert.True(t, Coal.IsFuel())
	assert.False(t, Stone.IsFuel())
	assert.False(t, IsValid(ID(9999)))
	assert.Equal(t, "block(9999)", ID(9999).String())
}
