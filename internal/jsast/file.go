package jsast

// Imported names with special meaning in an ImportBinding.
const (
	ImportedDefault   = "default"
	ImportedNamespace = "*"
)

// ImportBinding is one local name introduced by an import statement.
type ImportBinding struct {
	Local    string
	Imported string
}

// Import is one import statement and the names it binds.
type Import struct {
	Source   string
	Bindings []ImportBinding
	Pos      Pos
}

// File is a parsed compilation unit.
type File struct {
	Path    string
	Root    *Node
	Imports []Import
}

// Walk visits n and its descendants depth-first in document order.
// Returning false from visit skips the node's children.
func Walk(n *Node, visit func(*Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, visit)
	}
}

// WalkErr is Walk for visitors that can fail. The first error stops the
// traversal and is returned.
func WalkErr(n *Node, visit func(*Node) error) error {
	if n == nil {
		return nil
	}
	if err := visit(n); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := WalkErr(c, visit); err != nil {
			return err
		}
	}
	return nil
}
