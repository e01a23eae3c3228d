package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClampsBounds(t *testing.T) {
	f := New(0, 0, "id", []string{"id"})
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPageSize, f.PageSize)

	f = New(3, 1000, "id", []string{"id"})
	assert.Equal(t, MaxPageSize, f.PageSize)
	assert.Equal(t, 2*MaxPageSize, f.Offset())
}

func TestSort(t *testing.T) {
	f := New(1, 10, "-year", []string{"id", "year", "name"})
	assert.True(t, f.ValidSort())
	assert.Equal(t, "year", f.SortColumn())
	assert.Equal(t, DescSort, f.SortDirection())

	f.Sort = "name"
	assert.Equal(t, AscSort, f.SortDirection())

	f.Sort = "drop table"
	assert.False(t, f.ValidSort())
	assert.Panics(t, func() { f.SortColumn() })
}

func TestCalculateMetadata(t *testing.T) {
	m := CalculateMetadata(25, 2, 10)
	assert.Equal(t, 3, m.LastPage)
	assert.Equal(t, 25, m.TotalRecords)
	assert.Equal(t, Metadata{}, CalculateMetadata(0, 1, 10))
}
