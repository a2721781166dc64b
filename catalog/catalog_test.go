package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	assert.NotEmpty(t, c.Categories)
	assert.Len(t, c.Actions, 12)
}

func TestResolve(t *testing.T) {
	c := Default()

	node, names, ok := c.Resolve("ppe")
	require.True(t, ok)
	assert.False(t, node.IsLeaf())
	assert.Equal(t, []string{"Personal protective equipment"}, names)

	node, names, ok = c.Resolve("ppe/helmet")
	require.True(t, ok)
	assert.True(t, node.IsLeaf())
	assert.Equal(t, []string{"Personal protective equipment", "No helmet"}, names)

	_, _, ok = c.Resolve("ppe/unknown")
	assert.False(t, ok)
	_, _, ok = c.Resolve("")
	assert.False(t, ok)
}

func TestParseRejectsDuplicates(t *testing.T) {
	_, err := Parse([]byte(`
categories:
  - key: a
    name: A
  - key: a
    name: B
`))
	assert.Error(t, err)

	_, err = Parse([]byte(`
categories:
  - key: a
    name: A
actions:
  - id: 1
    name: x
  - id: 1
    name: y
`))
	assert.Error(t, err)
}

func TestAction(t *testing.T) {
	c := Default()
	a, ok := c.Action(3)
	require.True(t, ok)
	assert.Equal(t, "immediately", a.Deadline)
	_, ok = c.Action(99)
	assert.False(t, ok)
}
