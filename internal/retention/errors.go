package retention

import "errors"

// ErrRuleMisconfigured is returned when a rule is constructed with invalid
// parameters (e.g. a non-positive keep count). Policy construction fails
// fast: a misconfigured rule must never be silently skipped.
var ErrRuleMisconfigured = errors.New("retention rule misconfigured")
