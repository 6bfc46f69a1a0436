// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ab7

import "errors"

// Errors rejecting a whole block.
var (
	ErrTruncated   = errors.New("ab7: truncated block")
	ErrHeaderTag   = errors.New("ab7: invalid FED header marker")
	ErrSourceID    = errors.New("ab7: invalid FED source id")
	ErrSlotRange   = errors.New("ab7: AMC slot out of range")
	ErrUnknownSlot = errors.New("ab7: AMC slot missing from slot list")
	ErrSlotSize    = errors.New("ab7: AMC slot too large")
	ErrTrailerTag  = errors.New("ab7: invalid FED trailer marker")
	ErrChecksum    = errors.New("ab7: CRC mismatch")
	ErrWordCount   = errors.New("ab7: word count mismatch")
)
