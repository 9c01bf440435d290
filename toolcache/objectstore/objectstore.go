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

// Package objectstore is the remote replication contract the tool cache's
// sync_to_r2/pull_from_r2 operations depend on. s3store provides the
// concrete S3-API-compatible adapter; the interface exists so the cache
// package never imports an SDK directly.
package objectstore

import "context"

// ObjectStore is the minimal surface remote replication needs.
type ObjectStore interface {
	// Put uploads content under key, creating or overwriting it.
	Put(ctx context.Context, key string, content []byte) error
	// Get downloads the object stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Exists reports whether key is present remotely, without downloading it.
	Exists(ctx context.Context, key string) (bool, error)
	// List enumerates every key under prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
