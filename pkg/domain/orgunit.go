package domain

import "strings"

// OrganisationUnit is a node of the org-unit hierarchy. Path is the
// materialized slash-delimited chain of ancestor uids ending with the
// unit's own uid. Parent is rebuilt locally from Path; the chain nodes
// are owned by this unit alone and carry uids only.
type OrganisationUnit struct {
	Identifiable
	Path   string
	Parent *OrganisationUnit
}

// BuildParentChain parses Path into the linked ancestor chain.
//
// "/root/child/leaf" gives leaf a two-node chain ending at root. A path
// whose first segment is the root (no leading slash) parses the same.
func (ou *OrganisationUnit) BuildParentChain() {
	segments := []string{}
	for _, seg := range strings.Split(ou.Path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if n := len(segments); n > 0 && segments[n-1] == ou.Uid {
		segments = segments[:n-1]
	}

	var parent *OrganisationUnit
	for _, uid := range segments {
		parent = &OrganisationUnit{
			Identifiable: Identifiable{Uid: uid},
			Parent:       parent,
		}
	}
	ou.Parent = parent
}

// Ancestors returns ancestor uids from the direct parent up to the root.
func (ou *OrganisationUnit) Ancestors() []string {
	uids := []string{}
	for p := ou.Parent; p != nil; p = p.Parent {
		uids = append(uids, p.Uid)
	}
	return uids
}

// Level is the unit's depth in the hierarchy, root = 1.
func (ou *OrganisationUnit) Level() int {
	return len(ou.Ancestors()) + 1
}
