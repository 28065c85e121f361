// SPDX-License-Identifier: Apache-2.0

package syncer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newCredential(id string, updatedAt time.Time, password string) Credential {
	return Credential{
		SyncMeta: SyncMeta{
			ID:        id,
			CreatedAt: baseTime,
			UpdatedAt: updatedAt,
		},
		ServiceName: "example.com",
		Username:    "alice",
		Password:    password,
	}
}

func tombstone(id string, deletedAt time.Time) Credential {
	c := newCredential(id, deletedAt, "")
	c.IsDeleted = true
	return c
}

func credentialByID(t *testing.T, v Vault, id string) Credential {
	t.Helper()
	for _, c := range v.Credentials {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("credential %q not found", id)
	panic("unreachable")
}

func TestMerge_DisjointEntitiesAreKept(t *testing.T) {
	local := Vault{Credentials: []Credential{newCredential("a", baseTime, "pw-a")}}
	remote := Vault{Credentials: []Credential{newCredential("b", baseTime, "pw-b")}}

	merged := Merge(local, remote)

	require.Len(t, merged.Credentials, 2)
	assert.Equal(t, "a", merged.Credentials[0].ID)
	assert.Equal(t, "b", merged.Credentials[1].ID)
}

func TestMerge_NewerEditWinsInFull(t *testing.T) {
	older := newCredential("a", baseTime, "old-password")
	older.Notes = "note only on the older copy"
	newer := newCredential("a", baseTime.Add(time.Minute), "new-password")

	merged := Merge(Vault{Credentials: []Credential{older}}, Vault{Credentials: []Credential{newer}})

	require.Len(t, merged.Credentials, 1)
	got := merged.Credentials[0]
	assert.Equal(t, "new-password", got.Password)
	// entity-granularity LWW: the older copy's fields do not bleed through
	assert.Empty(t, got.Notes)
}

func TestMerge_NewerTombstoneWins(t *testing.T) {
	live := newCredential("a", baseTime, "pw")
	deleted := tombstone("a", baseTime.Add(time.Minute))

	merged := Merge(Vault{Credentials: []Credential{live}}, Vault{Credentials: []Credential{deleted}})

	require.Len(t, merged.Credentials, 1)
	assert.True(t, merged.Credentials[0].IsDeleted)
	assert.Equal(t, 0, merged.CredentialsCount())
}

func TestMerge_NewerEditResurrects(t *testing.T) {
	deleted := tombstone("a", baseTime)
	edited := newCredential("a", baseTime.Add(time.Minute), "pw-after-restore")

	merged := Merge(Vault{Credentials: []Credential{deleted}}, Vault{Credentials: []Credential{edited}})

	require.Len(t, merged.Credentials, 1)
	assert.False(t, merged.Credentials[0].IsDeleted)
	assert.Equal(t, "pw-after-restore", merged.Credentials[0].Password)
}

func TestMerge_TombstoneDoesNotResurrectWithoutNewerEdit(t *testing.T) {
	deleted := tombstone("a", baseTime.Add(time.Minute))
	stale := newCredential("a", baseTime, "stale-pw")

	// regardless of which side holds the tombstone
	left := Merge(Vault{Credentials: []Credential{deleted}}, Vault{Credentials: []Credential{stale}})
	right := Merge(Vault{Credentials: []Credential{stale}}, Vault{Credentials: []Credential{deleted}})

	assert.True(t, credentialByID(t, left, "a").IsDeleted)
	assert.True(t, credentialByID(t, right, "a").IsDeleted)
}

func TestMerge_IsCommutative(t *testing.T) {
	local := Vault{
		Credentials: []Credential{
			newCredential("a", baseTime.Add(2*time.Minute), "local-a"),
			newCredential("b", baseTime, "local-b"),
			tombstone("c", baseTime.Add(time.Minute)),
		},
		EmailAddresses: []string{"alice@example.com"},
	}
	remote := Vault{
		Credentials: []Credential{
			newCredential("a", baseTime, "remote-a"),
			newCredential("b", baseTime.Add(time.Minute), "remote-b"),
			newCredential("d", baseTime, "remote-d"),
		},
		EmailAddresses: []string{"alias@example.com"},
	}

	assert.Equal(t, Merge(local, remote), Merge(remote, local))
}

func TestMerge_IsIdempotent(t *testing.T) {
	local := Vault{Credentials: []Credential{
		newCredential("a", baseTime, "pw-a"),
		tombstone("b", baseTime.Add(time.Minute)),
	}}
	remote := Vault{Credentials: []Credential{
		newCredential("a", baseTime.Add(time.Minute), "pw-a2"),
	}}

	merged := Merge(local, remote)

	assert.Equal(t, merged, Merge(merged, merged))
	assert.Equal(t, merged, Merge(merged, remote))
}

func TestMerge_EqualTimestampsBreakTiesDeterministically(t *testing.T) {
	left := newCredential("a", baseTime, "password-one")
	right := newCredential("a", baseTime, "password-two")

	ab := Merge(Vault{Credentials: []Credential{left}}, Vault{Credentials: []Credential{right}})
	ba := Merge(Vault{Credentials: []Credential{right}}, Vault{Credentials: []Credential{left}})

	assert.Equal(t, ab, ba)
	require.Len(t, ab.Credentials, 1)
}

func TestMerge_AllEntityTypes(t *testing.T) {
	meta := func(id string) SyncMeta {
		return SyncMeta{ID: id, CreatedAt: baseTime, UpdatedAt: baseTime}
	}
	local := Vault{
		Aliases:        []Alias{{SyncMeta: meta("al-1"), Address: "a@x.io", Enabled: true}},
		Attachments:    []Attachment{{SyncMeta: meta("at-1"), FileName: "id.pdf"}},
		TotpSecrets:    []TotpSecret{{SyncMeta: meta("tp-1"), Secret: "JBSWY3DP", Digits: 6}},
		EncryptionKeys: []EncryptionKey{{SyncMeta: meta("ek-1"), Label: "default"}},
		PublicDomains:  []string{"gmail.com"},
	}
	remote := Vault{
		Aliases:        []Alias{{SyncMeta: meta("al-2"), Address: "b@x.io"}},
		PrivateDomains: []string{"corp.example.com"},
	}

	merged := Merge(local, remote)

	assert.Len(t, merged.Aliases, 2)
	assert.Len(t, merged.Attachments, 1)
	assert.Len(t, merged.TotpSecrets, 1)
	assert.Len(t, merged.EncryptionKeys, 1)
	assert.Equal(t, []string{"gmail.com"}, merged.PublicDomains)
	assert.Equal(t, []string{"corp.example.com"}, merged.PrivateDomains)
}

// Two devices edit concurrently from the same base: B deletes one credential
// and adds another; A, unaware, adds its own. After A re-merges it holds the
// union of the non-conflicting edits.
func TestMerge_TwoDeviceScenario(t *testing.T) {
	base := Vault{Credentials: []Credential{
		newCredential("c1", baseTime, "pw-1"),
		newCredential("c2", baseTime, "pw-2"),
		newCredential("c3", baseTime, "pw-3"),
	}}

	// device B: delete c2, add c4
	deviceB := Vault{Credentials: []Credential{
		base.Credentials[0],
		tombstone("c2", baseTime.Add(time.Minute)),
		base.Credentials[2],
		newCredential("c4", baseTime.Add(time.Minute), "pw-4"),
	}}

	// device A: add c5, still based on the original state
	deviceA := Vault{Credentials: []Credential{
		base.Credentials[0],
		base.Credentials[1],
		base.Credentials[2],
		newCredential("c5", baseTime.Add(2*time.Minute), "pw-5"),
	}}

	merged := Merge(deviceA, deviceB)

	assert.True(t, credentialByID(t, merged, "c2").IsDeleted)
	assert.Equal(t, "pw-4", credentialByID(t, merged, "c4").Password)
	assert.Equal(t, "pw-5", credentialByID(t, merged, "c5").Password)
	assert.Equal(t, 4, merged.CredentialsCount())
	require.Len(t, merged.Credentials, 5)
}

func TestVault_PruneTombstones(t *testing.T) {
	cutoff := baseTime.Add(-30 * 24 * time.Hour)
	v := Vault{Credentials: []Credential{
		newCredential("live", baseTime, "pw"),
		tombstone("old-delete", cutoff.Add(-time.Hour)),
		tombstone("recent-delete", baseTime.Add(-time.Hour)),
	}}

	pruned := v.PruneTombstones(func(m SyncMeta) bool {
		return m.UpdatedAt.Before(cutoff)
	})

	require.Len(t, pruned.Credentials, 2)
	assert.Equal(t, "live", pruned.Credentials[0].ID)
	assert.Equal(t, "recent-delete", pruned.Credentials[1].ID)
}
