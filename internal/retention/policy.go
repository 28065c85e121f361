package retention

import (
	"slices"
	"time"

	"github.com/passvault-io/passvault/models"
)

// Policy is an ordered list of rules applied by set union: a revision kept
// by any rule survives pruning.
type Policy struct {
	rules []Rule
}

// NewPolicy assembles a policy from the given rules. Rule constructors have
// already validated their parameters, so assembly itself cannot fail.
func NewPolicy(rules ...Rule) Policy {
	return Policy{rules: rules}
}

// Apply returns the revision numbers eligible for deletion: everything not
// nominated by any rule. The current (maximum) revision is excluded
// unconditionally, even when no rule would keep it; pruning must never
// touch the row a client could be pulling as "current".
//
// The result is ordered oldest first.
func (p Policy) Apply(revs []models.VaultRevision, now time.Time) []int64 {
	if len(revs) == 0 {
		return nil
	}

	kept := make(map[int64]struct{})
	for _, rule := range p.rules {
		for rev := range rule(revs, now) {
			kept[rev] = struct{}{}
		}
	}

	var current int64
	for _, rev := range revs {
		if rev.Revision > current {
			current = rev.Revision
		}
	}
	kept[current] = struct{}{}

	var victims []int64
	for _, rev := range revs {
		if _, ok := kept[rev.Revision]; !ok {
			victims = append(victims, rev.Revision)
		}
	}
	slices.Sort(victims)
	return victims
}
