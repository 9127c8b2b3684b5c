package composition

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liveeditor/internal/domain"
)

func page(ids ...string) []domain.ComponentNode {
	out := make([]domain.ComponentNode, len(ids))
	for i, id := range ids {
		out[i] = domain.ComponentNode{
			ID:       id,
			Type:     domain.ComponentTypeText,
			Data:     domain.TextPayload{Body: id},
			Position: i,
			Layout:   domain.Layout{Row: i, Span: 12},
		}
	}
	return out
}

func ids(list []domain.ComponentNode) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.ID
	}
	return out
}

func TestMove_FooterAboveBody(t *testing.T) {
	out, diag := Move(page("H", "B", "F"), 2, 1)
	require.Nil(t, diag)
	assert.Equal(t, []string{"H", "F", "B"}, ids(out))
	assert.True(t, IsDense(out))
}

func TestMove_DoesNotMutateInput(t *testing.T) {
	in := page("A", "B", "C")
	_, diag := Move(in, 0, 2)
	require.Nil(t, diag)
	assert.Equal(t, []string{"A", "B", "C"}, ids(in))
	assert.Equal(t, 0, in[0].Position)
}

func TestMove_RefusesOutOfRange(t *testing.T) {
	in := page("A", "B")
	for _, tc := range []struct{ src, dst int }{{-1, 0}, {2, 0}, {0, 2}, {0, -1}} {
		out, diag := Move(in, tc.src, tc.dst)
		require.NotNil(t, diag, "src=%d dst=%d", tc.src, tc.dst)
		assert.Equal(t, "move", diag.Operation)
		assert.Equal(t, tc.dst, diag.CalculatedIndex)
		assert.NotEmpty(t, diag.Reason)
		assert.Equal(t, ids(in), ids(out))
	}
}

func TestMove_RefusesDuplicateIDs(t *testing.T) {
	in := page("A", "A", "B")
	out, diag := Move(in, 0, 2)
	require.NotNil(t, diag)
	assert.Contains(t, diag.Reason, "duplicate")
	assert.Equal(t, ids(in), ids(out))
}

func TestMove_RandomSequenceStaysDense(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	list := page("a", "b", "c", "d", "e", "f", "g")
	for i := 0; i < 500; i++ {
		src := rng.Intn(len(list))
		dst := rng.Intn(len(list))
		var diag *Diagnostic
		list, diag = Move(list, src, dst)
		require.Nil(t, diag)
		require.True(t, IsDense(list), "iteration %d", i)
		require.NoError(t, Validate(list))
	}
	assert.Len(t, list, 7)
}

func TestInsert(t *testing.T) {
	node := domain.ComponentNode{ID: "N", Type: domain.ComponentTypeHero, Position: 99}
	out, diag := Insert(page("A", "B"), node, 1)
	require.Nil(t, diag)
	assert.Equal(t, []string{"A", "N", "B"}, ids(out))
	assert.True(t, IsDense(out))

	out, diag = Insert(page("A"), node, 10)
	require.Nil(t, diag)
	assert.Equal(t, []string{"A", "N"}, ids(out))

	out, diag = Insert(nil, node, -3)
	require.Nil(t, diag)
	assert.Equal(t, []string{"N"}, ids(out))

	_, diag = Insert(page("N"), node, 0)
	require.NotNil(t, diag)
}

func TestRemove(t *testing.T) {
	out, diag := Remove(page("A", "B", "C"), "B")
	require.Nil(t, diag)
	assert.Equal(t, []string{"A", "C"}, ids(out))
	assert.True(t, IsDense(out))

	in := page("A")
	out, diag = Remove(in, "missing")
	require.NotNil(t, diag)
	assert.Equal(t, ids(in), ids(out))
}
