package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID    string
	Value int
}

func (r row) GetID() string { return r.ID }

func TestReplaceIsLastWriteWins(t *testing.T) {
	l := NewList[row]()
	l.Replace([]row{{"a", 1}, {"b", 2}})
	l.Replace([]row{{"c", 3}})

	assert.Equal(t, []row{{"c", 3}}, l.All())
	_, ok := l.Get("a")
	assert.False(t, ok)
}

func TestReplaceCopiesInput(t *testing.T) {
	src := []row{{"a", 1}}
	l := NewList[row]()
	l.Replace(src)
	src[0].Value = 99

	got, ok := l.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, got.Value)
}

func TestPatchByID(t *testing.T) {
	l := NewList[row]()
	l.Replace([]row{{"a", 1}, {"b", 2}})

	assert.True(t, l.Patch("b", func(r *row) { r.Value = 20 }))
	assert.False(t, l.Patch("zz", func(r *row) { r.Value = 0 }))
	assert.Equal(t, []row{{"a", 1}, {"b", 20}}, l.All())
}

func TestUpsertAndAppend(t *testing.T) {
	l := NewList[row]()
	l.Upsert(row{"a", 1})
	l.Upsert(row{"a", 2})
	assert.Equal(t, 1, l.Len())

	assert.True(t, l.Append(row{"b", 3}))
	assert.False(t, l.Append(row{"b", 4}))
	assert.Equal(t, []row{{"a", 2}, {"b", 3}}, l.All())
}

func TestRemoveKeepsIndexConsistent(t *testing.T) {
	l := NewList[row]()
	l.Replace([]row{{"a", 1}, {"b", 2}, {"c", 3}})
	snapshot := l.All()

	assert.True(t, l.Remove("a"))
	assert.False(t, l.Remove("a"))
	assert.Equal(t, []row{{"b", 2}, {"c", 3}}, l.All())
	assert.Equal(t, []row{{"a", 1}, {"b", 2}, {"c", 3}}, snapshot)

	assert.True(t, l.Patch("c", func(r *row) { r.Value = 30 }))
	got, ok := l.Get("c")
	require.True(t, ok)
	assert.Equal(t, 30, got.Value)
	assert.True(t, l.Append(row{"d", 4}))
	assert.Equal(t, 3, l.Len())
}

func TestFilter(t *testing.T) {
	l := NewList[row]()
	l.Replace([]row{{"a", 1}, {"b", 2}, {"c", 3}})
	odd := l.Filter(func(r row) bool { return r.Value%2 == 1 })
	assert.Equal(t, []row{{"a", 1}, {"c", 3}}, odd)
	assert.Len(t, l.Filter(nil), 3)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	p := Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, p.Items)
	assert.Equal(t, 5, p.Total)

	assert.Equal(t, []int{5}, Paginate(items, 3, 2).Items)
	assert.Empty(t, Paginate(items, 4, 2).Items)
	assert.Equal(t, []int{1, 2}, Paginate(items, 0, 2).Items)
	assert.Len(t, Paginate(items, 1, 0).Items, 5)
}
