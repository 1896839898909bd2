package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(21, 2, 10)
	assert.Equal(t, int64(3), p.TotalPages)
	assert.Equal(t, int64(2), p.Page)

	empty := NewPagination(0, 1, 10)
	assert.Equal(t, int64(0), empty.TotalPages)
}
