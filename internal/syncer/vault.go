// SPDX-License-Identifier: Apache-2.0

package syncer

import "sort"

// Vault is the decrypted content of one revision: typed entity collections
// plus the email metadata the server stores in clear next to the blob.
type Vault struct {
	Credentials    []Credential    `json:"credentials"`
	Aliases        []Alias         `json:"aliases"`
	Attachments    []Attachment    `json:"attachments"`
	TotpSecrets    []TotpSecret    `json:"totp_secrets"`
	EncryptionKeys []EncryptionKey `json:"encryption_keys"`

	EmailAddresses []string `json:"email_addresses"`
	PublicDomains  []string `json:"public_domains"`
	PrivateDomains []string `json:"private_domains"`
}

// CredentialsCount returns the number of live (non-tombstone) credentials.
// It is sent to the server as push metadata.
func (v Vault) CredentialsCount() int {
	count := 0
	for _, c := range v.Credentials {
		if !c.IsDeleted {
			count++
		}
	}
	return count
}

// LiveCredentials returns the credentials a UI would show, tombstones
// filtered out.
func (v Vault) LiveCredentials() []Credential {
	live := make([]Credential, 0, len(v.Credentials))
	for _, c := range v.Credentials {
		if !c.IsDeleted {
			live = append(live, c)
		}
	}
	return live
}

// PruneTombstones drops tombstones whose deletion is older than the given
// cutoff. Run out-of-band once every device can be assumed to have synced.
func (v Vault) PruneTombstones(cutoff func(SyncMeta) bool) Vault {
	v.Credentials = pruneEntities(v.Credentials, cutoff)
	v.Aliases = pruneEntities(v.Aliases, cutoff)
	v.Attachments = pruneEntities(v.Attachments, cutoff)
	v.TotpSecrets = pruneEntities(v.TotpSecrets, cutoff)
	v.EncryptionKeys = pruneEntities(v.EncryptionKeys, cutoff)
	return v
}

func pruneEntities[T Syncable](entities []T, expired func(SyncMeta) bool) []T {
	kept := make([]T, 0, len(entities))
	for _, e := range entities {
		meta := e.Meta()
		if meta.IsDeleted && expired(meta) {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, s := range a {
		seen[s] = struct{}{}
	}
	for _, s := range b {
		seen[s] = struct{}{}
	}

	union := make([]string, 0, len(seen))
	for s := range seen {
		union = append(union, s)
	}
	sort.Strings(union)
	return union
}
