// Package retention decides which historical vault revisions survive
// pruning. A policy is an ordered list of composable rules; every rule
// nominates the revisions it wants kept and the union survives. The current
// (maximum) revision is always kept regardless of any rule.
package retention

import (
	"fmt"
	"sort"
	"time"

	"github.com/passvault-io/passvault/models"
)

// Rule receives a user's full revision list and the current time and
// returns the set of revision numbers it wants kept. Rules are independent;
// composition is set union, performed by [Policy.Apply].
type Rule func(revs []models.VaultRevision, now time.Time) map[int64]struct{}

// bucketFunc maps a revision creation instant (in UTC) to its calendar
// bucket label. Revisions sharing a label compete within one bucket.
type bucketFunc func(t time.Time) string

// Daily returns a rule keeping the latest revision of each of the most
// recent keep distinct calendar days (UTC) that have at least one revision.
func Daily(keep int) (Rule, error) {
	return bucketRule("daily", keep, func(t time.Time) string {
		return t.UTC().Format("2006-01-02")
	})
}

// Weekly is the ISO-week analogue of [Daily].
func Weekly(keep int) (Rule, error) {
	return bucketRule("weekly", keep, func(t time.Time) string {
		year, week := t.UTC().ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	})
}

// Monthly is the calendar-month analogue of [Daily].
func Monthly(keep int) (Rule, error) {
	return bucketRule("monthly", keep, func(t time.Time) string {
		return t.UTC().Format("2006-01")
	})
}

// Yearly is the calendar-year analogue of [Daily].
func Yearly(keep int) (Rule, error) {
	return bucketRule("yearly", keep, func(t time.Time) string {
		return t.UTC().Format("2006")
	})
}

// bucketRule builds a rule that groups revisions by bucket label, keeps the
// latest revision of each bucket, and retains the keep most recent buckets.
//
// A non-positive keep count is a configuration mistake and fails at
// construction time; a policy must never silently skip a rule.
func bucketRule(name string, keep int, bucket bucketFunc) (Rule, error) {
	if keep <= 0 {
		return nil, fmt.Errorf("%w: %s rule keep count must be positive, got %d", ErrRuleMisconfigured, name, keep)
	}

	return func(revs []models.VaultRevision, _ time.Time) map[int64]struct{} {
		// Latest revision per bucket. Revision numbers are strictly
		// increasing, so "latest" is simply the larger number.
		latest := make(map[string]int64)
		for _, rev := range revs {
			label := bucket(rev.CreatedAt)
			if cur, ok := latest[label]; !ok || rev.Revision > cur {
				latest[label] = rev.Revision
			}
		}

		labels := make([]string, 0, len(latest))
		for label := range latest {
			labels = append(labels, label)
		}
		// Bucket labels are chosen so lexicographic order equals
		// chronological order; most recent buckets sort last.
		sort.Strings(labels)
		if len(labels) > keep {
			labels = labels[len(labels)-keep:]
		}

		kept := make(map[int64]struct{}, len(labels))
		for _, label := range labels {
			kept[latest[label]] = struct{}{}
		}
		return kept
	}, nil
}
