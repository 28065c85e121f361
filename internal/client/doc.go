// SPDX-License-Identifier: Apache-2.0

// Package client is the device-side application: it registers and logs in
// over SRP, keeps an encrypted local copy of the vault in a sqlite file, and
// runs the pull, merge, push synchronization loop against the server.
package client
