// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ab7

const (
	fedHeaderTag  = 0x5 // FED header marker
	fedTrailerTag = 0xa // FED trailer marker

	hitTag      = 0x1 // hit payload word
	tpFirstTag  = 0x2 // top 2 bits of a first trigger-primitive word
	tpSecondTag = 0xc // second trigger-primitive word
	tpThirdTag  = 0xe // third trigger-primitive word

	emptyHitBX = 0xfff // bx value of an empty hit slot

	crcMask = 0xffffffff0000ffff // trailer word, without its CRC field
)

const (
	NumBX      = 3564 // bunch crossings per orbit
	SubBXPerBX = 30   // hit time units per bunch crossing
	NsPerBX    = 25

	MinSlot = 1
	MaxSlot = 12

	SoftSlotCeiling = 200  // slot sizes above are reported
	HardSlotCeiling = 1000 // slot sizes above reject the block

	RawIndex = 9999 // Primitive.Index in raw-variables mode

	slotOverhead = 3 // AMC header (2 words) + AMC trailer (1 word)
)

// WrapBX folds a bunch-crossing difference into (-NumBX/2, NumBX/2].
func WrapBX(dbx int) int {
	const half = NumBX / 2
	v := dbx % NumBX
	if v < 0 {
		v += NumBX
	}
	if v > half {
		v -= NumBX
	}
	return v
}

func signExtend(v uint64, n uint) int {
	return int(int64(v<<(64-n)) >> (64 - n))
}
