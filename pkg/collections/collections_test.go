package collections_test

import (
	"strings"
	"testing"

	"github.com/alkime/monshin/pkg/collections"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	t.Run("basic types", func(t *testing.T) {
		ints := []int{1, 2, 3, 4}
		squared := collections.Apply(ints, func(i int) int {
			return i * i
		})

		require.Equal(t, []int{1, 4, 9, 16}, squared)
	})

	t.Run("structs", func(t *testing.T) {
		type Person struct {
			Name string
			Age  int
		}

		people := []Person{
			{Name: "Alice", Age: 30},
			{Name: "Bob", Age: 25},
		}

		names := collections.Apply(people, func(p Person) string {
			return p.Name
		})

		require.Equal(t, []string{"Alice", "Bob"}, names)
	})
}

func TestFirstMatch(t *testing.T) {
	notBlank := func(s string) bool { return strings.TrimSpace(s) != "" }

	got, ok := collections.FirstMatch(notBlank, " ", "", "summary", "transcript")
	assert.True(t, ok)
	assert.Equal(t, "summary", got)

	got, ok = collections.FirstMatch(notBlank, " ", "\n")
	assert.False(t, ok)
	assert.Empty(t, got)
}
