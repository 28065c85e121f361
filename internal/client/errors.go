// SPDX-License-Identifier: Apache-2.0

package client

import "errors"

var (
	ErrSyncConflict        = errors.New("sync conflict not resolved after retries")
	ErrServerProofMismatch = errors.New("server proof mismatch")
	ErrLocalStateNotFound  = errors.New("no local sync state")
)
