package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildFilter_StringSlice(t *testing.T) {
	got := BuildFilter(OpIn, "id", []string{"a", "b"})
	assert.Equal(t, "in(id,'a','b')", got)
}

func TestBuildFilter_SingleString(t *testing.T) {
	got := BuildFilter(OpStartsWith, "name", "report")
	assert.Equal(t, "startsWith(name,'report')", got)
}

func TestBuildFilter_ScalarNumber(t *testing.T) {
	got := BuildFilter(OpEq, "x", 5)
	assert.Equal(t, "eq(x,5)", got)
}

func TestBuildFilter_NumberSlice(t *testing.T) {
	got := BuildFilter(OpIn, "size", []int{1, 2, 3})
	assert.Equal(t, "in(size,'1,2,3')", got)
}

func TestBuildFilter_Bool(t *testing.T) {
	got := BuildFilter(OpNe, "versioned", true)
	assert.Equal(t, "ne(versioned,true)", got)
}

func TestBuildFilter_EmptyValues(t *testing.T) {
	assert.Empty(t, BuildFilter(OpEq, "x", []string{}))
	assert.Empty(t, BuildFilter(OpEq, "x", ""))
	assert.Empty(t, BuildFilter(OpEq, "x", nil))
	assert.Empty(t, BuildFilter(OpIn, "x", []int{}))
}
