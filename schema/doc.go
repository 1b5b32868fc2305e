// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package schema defines the passive value types exchanged between a UI
// provider and the accessibility tree core: node identifiers, node records,
// tree metadata, tree updates, and action requests.
//
// # Ownership Model
//
// Values in this package are plain data. Once a *Node has been handed to
// the tree core inside a TreeUpdate, the provider MUST NOT mutate it; the
// core shares node records by reference across successive snapshots instead
// of copying them. Providers that want to reuse a record as a starting
// point for the next update should call Clone first.
//
// # Serialization
//
// All types marshal to camelCase JSON so that updates can be captured from
// a live application, replayed from scenario files, and inspected over the
// HTTP API without a separate wire format.
//
// # Validation
//
// TreeUpdate.Validate performs shallow well-formedness checks only (zero
// IDs, duplicates). Structural validation — reachability, cycles, focus
// targets — is the tree package's job, because it requires the previous
// snapshot.
package schema
