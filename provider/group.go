package provider

import (
	"fmt"
	"slices"
	"strings"

	"github.com/broady/commonizer/cir"
	"github.com/broady/commonizer/engine"
)

// Unmatched is a declaration that cannot be grouped and stays with the
// platforms that declare it.
type Unmatched struct {
	ID        cir.ClassifierID
	Platforms []string
	Reason    string
}

// GroupDeclarations lines up the declarations of modules, which must be in
// canonical platform order. A group is formed for every ID that all modules
// declare with the same kind; its variants follow module order. Everything
// else is returned as unmatched. Both results are sorted by ID.
//
// When a module declares an ID twice, the first declaration is used.
func GroupDeclarations(modules []*cir.Module) ([]*engine.Group, []Unmatched) {
	type entry struct {
		decls []cir.Declaration // indexed by module, nil when absent
	}
	entries := make(map[cir.ClassifierID]*entry)
	for mi, m := range modules {
		for _, mem := range m.Members {
			id := mem.ID()
			e, ok := entries[id]
			if !ok {
				e = &entry{decls: make([]cir.Declaration, len(modules))}
				entries[id] = e
			}
			if e.decls[mi] == nil {
				e.decls[mi] = mem.Declaration
			}
		}
	}

	ids := make([]cir.ClassifierID, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, cir.ClassifierID.Compare)

	var (
		groups    []*engine.Group
		unmatched []Unmatched
	)
	for _, id := range ids {
		e := entries[id]
		var present, missing []string
		kinds := make(map[cir.DeclarationKind]bool)
		for mi, d := range e.decls {
			if d == nil {
				missing = append(missing, modules[mi].Platform)
				continue
			}
			present = append(present, modules[mi].Platform)
			kinds[d.DeclKind()] = true
		}

		switch {
		case len(missing) > 0:
			unmatched = append(unmatched, Unmatched{
				ID:        id,
				Platforms: present,
				Reason:    "not declared on " + strings.Join(missing, ", "),
			})
		case len(kinds) > 1:
			unmatched = append(unmatched, Unmatched{
				ID:        id,
				Platforms: present,
				Reason:    fmt.Sprintf("declared as %s", kindList(e.decls)),
			})
		default:
			groups = append(groups, &engine.Group{
				ID:        id,
				Kind:      e.decls[0].DeclKind(),
				Variants:  e.decls,
				Platforms: present,
			})
		}
	}
	return groups, unmatched
}

func kindList(decls []cir.Declaration) string {
	var kinds []string
	for _, d := range decls {
		if k := d.DeclKind().String(); !slices.Contains(kinds, k) {
			kinds = append(kinds, k)
		}
	}
	return strings.Join(kinds, " and ")
}
