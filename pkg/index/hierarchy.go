package index

import (
	"github.com/sirupsen/logrus"

	"github.com/tmakhader/asap-patch/pkg/perr"
	"github.com/tmakhader/asap-patch/pkg/rast"
)

// moduleAncestry is the live recursion stack of module names from the root,
// maintained as expand descends the instance tree: pushed before recursing
// into a child, popped on the way back out. Walking it from the innermost
// module back to the root (iterator) lets expand tell a true self-instantiation cycle apart from the same
// module simply being instantiated more than once at or below the current
// level.
type moduleAncestry struct{ modules []string }

func newModuleAncestry(root string) moduleAncestry {
	return moduleAncestry{modules: []string{root}}
}

func (a *moduleAncestry) push(module string) {
	a.modules = append(a.modules, module)
}

func (a *moduleAncestry) pop() {
	a.modules = a.modules[:len(a.modules)-1]
}

// iterator yields modules from the most recently pushed back to the root.
func (a *moduleAncestry) iterator() func(yield func(string) bool) {
	return func(yield func(string) bool) {
		for i := len(a.modules) - 1; i >= 0; i-- {
			if !yield(a.modules[i]) {
				return
			}
		}
	}
}

// Key identifies one node of the InstanceTree by instance name and module
// name (spec §3). The synthetic root has Instance "TOP".
type Key struct {
	Instance string
	Module   string
}

// Tree is a rooted, ordered tree of instantiations (spec §3
// "InstanceTree"). Children are kept in declaration order; a module name
// may appear under multiple distinct instance names.
type Tree struct {
	Key      Key
	Children []*Tree
}

// BuildInstanceTree walks InstanceList items starting from topModule,
// recursively, to build the instantiation tree rooted at ("TOP",
// topModule). Returns *perr.HierarchyCycle if a module instantiates itself
// transitively (the HDL forbids recursive instantiation; cycles must
// still be detected defensively, spec §3).
func BuildInstanceTree(topModule string, idx *Index, log *logrus.Entry) (*Tree, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}

	root := &Tree{Key: Key{Instance: "TOP", Module: topModule}}

	ancestry := newModuleAncestry(topModule)
	if err := expand(root, idx, log, &ancestry); err != nil {
		return nil, err
	}

	return root, nil
}

// expand recursively populates node.Children from the InstanceList items
// of node's module, using ancestry to tell a true self-instantiation cycle
// apart from the same module being instantiated more than once.
func expand(node *Tree, idx *Index, log *logrus.Entry, ancestry *moduleAncestry) error {
	mod, found := idx.ModuleToAst[node.Key.Module]
	if !found {
		// An instantiation of an undefined module is a cross-file
		// resolution concern this tool explicitly does not attempt
		// (spec §1 Non-goals); treat it as a leaf.
		return nil
	}

	for _, item := range mod.Items {
		il, ok := item.(*rast.InstanceList)
		if !ok {
			continue
		}

		for _, inst := range il.Instances {
			var path []string
			for seen := range ancestry.iterator() {
				path = append([]string{seen}, path...)
				if seen == il.Module {
					return &perr.HierarchyCycle{Module: il.Module, Path: append(path, il.Module)}
				}
			}

			child := &Tree{Key: Key{Instance: inst.Name, Module: il.Module}}
			node.Children = append(node.Children, child)

			log.WithFields(logrus.Fields{
				"parent": node.Key.Module, "instance": inst.Name, "child_module": il.Module,
			}).Debug("hierarchy edge")

			ancestry.push(il.Module)
			err := expand(child, idx, log, ancestry)
			ancestry.pop()
			if err != nil {
				return err
			}
		}
	}

	return nil
}
