package model

// CategoryNode is one entry of the category menu. A node without children is a leaf
// and resolves to a category value.
type CategoryNode struct {
	Key      string          `yaml:"key" json:"key"`
	Name     string          `yaml:"name" json:"name"`
	Children []*CategoryNode `yaml:"children,omitempty" json:"children,omitempty"`
}

// IsLeaf reports whether the node has no sub-menu.
func (n *CategoryNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// RemedialAction is a corrective measure a reporter can demand.
type RemedialAction struct {
	ID       int    `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Deadline string `yaml:"deadline" json:"deadline"`
}
