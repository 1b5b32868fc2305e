// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package schema

import "strconv"

// NodeID is an opaque, stable identifier for one node within one tree.
//
// IDs are assigned by the provider. Zero is invalid and is used throughout
// the core as the "no node" value. An ID must not be reused for a
// semantically different element while its tree is alive; reusing an ID
// after the element has been removed is allowed and is treated as a fresh
// creation.
type NodeID uint64

// InvalidNodeID is the zero value of NodeID, reserved to mean "no node".
const InvalidNodeID NodeID = 0

// IsValid reports whether the ID is non-zero.
func (id NodeID) IsValid() bool {
	return id != InvalidNodeID
}

// String returns the decimal representation of the ID, or "none" for the
// invalid ID. Used in error messages and log attributes.
func (id NodeID) String() string {
	if id == InvalidNodeID {
		return "none"
	}
	return strconv.FormatUint(uint64(id), 10)
}
