package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSum(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Sum(nil))
	assert.Equal(t, Sum([]byte("abc")), SumString("abc"))
}

func TestCombine(t *testing.T) {
	a := Combine(map[string]string{"a.md": "1", "b.md": "2"})
	b := Combine(map[string]string{"b.md": "2", "a.md": "1"})
	c := Combine(map[string]string{"a.md": "1", "b.md": "3"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, Combine(nil), a)
}
