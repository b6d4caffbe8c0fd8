package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashText(t *testing.T) {
	a := HashText("same text")
	b := HashText("same text")
	c := HashText("other text")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
	assert.NotEmpty(t, HashText(""))
}
