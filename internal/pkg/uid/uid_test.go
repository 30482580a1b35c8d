package uid_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/uid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID_Generate(t *testing.T) {
	t.Parallel()

	g := uid.NewUUID()
	a, b := g.Generate(), g.Generate()

	assert.NotEqual(t, uuid.Nil, a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, uuid.Version(7), a.Version())
}

func TestSnowflake(t *testing.T) {
	t.Parallel()

	g, err := uid.NewSnowflake(1)
	require.NoError(t, err)

	prev := g.Generate()
	for range 100 {
		next := g.Generate()
		assert.Greater(t, next, prev)
		prev = next
	}

	_, err = uid.NewSnowflake(4096)
	require.Error(t, err)
}
