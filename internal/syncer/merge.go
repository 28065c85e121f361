// SPDX-License-Identifier: Apache-2.0

package syncer

import (
	"encoding/json"
	"sort"
)

// Merge reconciles two versions of a vault, entity by entity, keyed by
// entity ID:
//
//   - an entity present on only one side is kept;
//   - when both sides hold a copy, the one with the greater UpdatedAt wins
//     in full (last-write-wins at entity granularity);
//   - a tombstone newer than the other side's copy wins and the entity stays
//     deleted; an older tombstone loses to a newer live edit (resurrection);
//   - exact UpdatedAt ties are broken by comparing the serialized entities,
//     so the result does not depend on argument order.
//
// Merge is commutative and idempotent: Merge(a, b) == Merge(b, a), and
// merging a result with itself changes nothing.
func Merge(local, remote Vault) Vault {
	return Vault{
		Credentials:    mergeEntities(local.Credentials, remote.Credentials),
		Aliases:        mergeEntities(local.Aliases, remote.Aliases),
		Attachments:    mergeEntities(local.Attachments, remote.Attachments),
		TotpSecrets:    mergeEntities(local.TotpSecrets, remote.TotpSecrets),
		EncryptionKeys: mergeEntities(local.EncryptionKeys, remote.EncryptionKeys),

		EmailAddresses: unionStrings(local.EmailAddresses, remote.EmailAddresses),
		PublicDomains:  unionStrings(local.PublicDomains, remote.PublicDomains),
		PrivateDomains: unionStrings(local.PrivateDomains, remote.PrivateDomains),
	}
}

func mergeEntities[T Syncable](local, remote []T) []T {
	byID := make(map[string]T, len(local)+len(remote))
	for _, e := range local {
		byID[e.Meta().ID] = e
	}
	for _, e := range remote {
		id := e.Meta().ID
		current, ok := byID[id]
		if !ok {
			byID[id] = e
			continue
		}
		byID[id] = pickWinner(current, e)
	}

	merged := make([]T, 0, len(byID))
	for _, e := range byID {
		merged = append(merged, e)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Meta().ID < merged[j].Meta().ID
	})
	return merged
}

func pickWinner[T Syncable](a, b T) T {
	switch am, bm := a.Meta(), b.Meta(); {
	case am.UpdatedAt.After(bm.UpdatedAt):
		return a
	case bm.UpdatedAt.After(am.UpdatedAt):
		return b
	case fingerprint(a) >= fingerprint(b):
		return a
	default:
		return b
	}
}

// fingerprint gives equal timestamps a total order so ties resolve the same
// way no matter which side the copy arrived from.
func fingerprint[T Syncable](e T) string {
	raw, _ := json.Marshal(e)
	return string(raw)
}
