// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package toolcache

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/dxtools/dxcheck/toolcache/objectstore"
)

// SyncFailure records one entry's failure during sync_to_r2/pull_from_r2.
// Partial failures are counted per-entry; a batch never aborts because one
// entry failed.
type SyncFailure struct {
	Key   string
	Cause error
}

// SyncSummary is the per-batch report sync_to_r2 and pull_from_r2 return.
type SyncSummary struct {
	Uploaded   int
	Downloaded int
	Skipped    int
	Failures   []SyncFailure
}

func remoteKey(tool ToolID, key Key) string {
	return tool.FolderName() + "/" + key.Hex()
}

// SyncToR2 uploads every entry of tool not yet marked replicated. Already
// existing remote objects are not re-uploaded but are still marked
// replicated locally. Per-entry failures are collected in the summary;
// the batch never aborts early.
func (c *Cache) SyncToR2(ctx context.Context, store objectstore.ObjectStore, tool ToolID) SyncSummary {
	var summary SyncSummary
	for key, entry := range c.Entries(tool) {
		if entry.ReplicatedToR2 {
			summary.Skipped++
			continue
		}

		rkey := remoteKey(tool, key)
		exists, err := store.Exists(ctx, rkey)
		if err != nil {
			summary.Failures = append(summary.Failures, SyncFailure{Key: rkey, Cause: err})
			continue
		}

		if !exists {
			content, readErr := os.ReadFile(entry.CachedPath)
			if readErr != nil {
				summary.Failures = append(summary.Failures, SyncFailure{Key: rkey, Cause: readErr})
				continue
			}
			if err := store.Put(ctx, rkey, content); err != nil {
				summary.Failures = append(summary.Failures, SyncFailure{Key: rkey, Cause: err})
				continue
			}
			summary.Uploaded++
		} else {
			summary.Skipped++
		}

		if err := c.MarkReplicated(tool, key); err != nil {
			summary.Failures = append(summary.Failures, SyncFailure{Key: rkey, Cause: err})
		}
	}
	return summary
}

// PullFromR2 enumerates remote keys for tool and downloads any not
// already present locally, verifying the recomputed digest against the
// key encoded in the remote object's name before inserting it.
func (c *Cache) PullFromR2(ctx context.Context, store objectstore.ObjectStore, tool ToolID) SyncSummary {
	var summary SyncSummary

	prefix := tool.FolderName() + "/"
	remoteKeys, err := store.List(ctx, prefix)
	if err != nil {
		summary.Failures = append(summary.Failures, SyncFailure{Key: prefix, Cause: err})
		return summary
	}

	for _, rkey := range remoteKeys {
		hexPart := rkey[len(prefix):]
		raw, err := hex.DecodeString(hexPart)
		if err != nil || len(raw) != len(Key{}) {
			summary.Failures = append(summary.Failures, SyncFailure{Key: rkey, Cause: fmt.Errorf("malformed remote key %q", rkey)})
			continue
		}
		var key Key
		copy(key[:], raw)

		if c.IsCached(tool, key) {
			summary.Skipped++
			continue
		}

		content, err := store.Get(ctx, rkey)
		if err != nil {
			summary.Failures = append(summary.Failures, SyncFailure{Key: rkey, Cause: err})
			continue
		}

		recomputed := HashContent(tool, content)
		if recomputed != key {
			summary.Failures = append(summary.Failures, SyncFailure{Key: rkey, Cause: fmt.Errorf("digest mismatch: declared %s, recomputed %s", key.Hex(), recomputed.Hex())})
			continue
		}

		if err := c.InsertReplicated(tool, key, "", content); err != nil {
			summary.Failures = append(summary.Failures, SyncFailure{Key: rkey, Cause: err})
			continue
		}
		summary.Downloaded++
	}
	return summary
}
