// Package catalog holds the category menu and the remedial action list offered during intake.
package catalog

import (
	_ "embed"
	"os"
	"strings"

	"github.com/babushkian/OTBot/model"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// PathSeparator joins category keys into a path, e.g. "ppe/helmet".
const PathSeparator = "/"

type Catalog struct {
	Categories []*model.CategoryNode  `yaml:"categories"`
	Actions    []model.RemedialAction `yaml:"actions"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads a catalog file; an empty path yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read catalog %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	if len(c.Categories) == 0 {
		return nil, errors.New("catalog has no categories")
	}
	seen := make(map[int]bool)
	for _, a := range c.Actions {
		if seen[a.ID] {
			return nil, errors.Newf("duplicate action id %d", a.ID)
		}
		seen[a.ID] = true
	}
	if err := checkKeys(c.Categories); err != nil {
		return nil, err
	}
	return &c, nil
}

func checkKeys(nodes []*model.CategoryNode) error {
	seen := make(map[string]bool)
	for _, n := range nodes {
		if n.Key == "" || strings.Contains(n.Key, PathSeparator) {
			return errors.Newf("bad category key %q", n.Key)
		}
		if seen[n.Key] {
			return errors.Newf("duplicate category key %q", n.Key)
		}
		seen[n.Key] = true
		if err := checkKeys(n.Children); err != nil {
			return err
		}
	}
	return nil
}

// Resolve walks path from the root. It returns the node the path points to and the
// node names along the way.
func (c *Catalog) Resolve(path string) (*model.CategoryNode, []string, bool) {
	if path == "" {
		return nil, nil, false
	}
	level := c.Categories
	var node *model.CategoryNode
	var names []string
	for _, key := range strings.Split(path, PathSeparator) {
		node = nil
		for _, n := range level {
			if n.Key == key {
				node = n
				break
			}
		}
		if node == nil {
			return nil, nil, false
		}
		names = append(names, node.Name)
		level = node.Children
	}
	return node, names, true
}

// Action looks up a remedial action by id.
func (c *Catalog) Action(id int) (model.RemedialAction, bool) {
	for _, a := range c.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return model.RemedialAction{}, false
}
