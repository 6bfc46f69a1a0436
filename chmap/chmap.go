// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chmap maps the channel identifiers read out by the AB7 boards of
// the SX5 Phase-2 demonstrator to (superlayer, layer, wire) triples.
//
// The set of mappings is closed: each Mapping value names one of the
// historical cablings used with the demonstrator.
package chmap // import "github.com/go-lpc/dtab7/chmap"

import (
	"fmt"
	"strings"
)

// Mapping selects a channel-to-wire mapping.
type Mapping uint8

const (
	Dummy     Mapping = iota // blind mapping: layer/wire from channel modulo 4
	April2019                // piecewise mapping of the April 2019 cabling
	June2019                 // payload v5, with inverted layers
	July2019                 // payload v5, after the layer inversion fix
)

// NumChannels is the size of the channel-id domain (9-bit field).
const NumChannels = 512

const (
	InvalidSL   = -1   // superlayer sentinel for unmapped channels
	InvalidWire = -999 // wire sentinel for unmapped channels
)

// Parse returns the mapping named s.
// Names are case insensitive; the empty string and "dummy" select Dummy.
func Parse(s string) (Mapping, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dummy":
		return Dummy, nil
	case "april2019":
		return April2019, nil
	case "june2019":
		return June2019, nil
	case "july2019":
		return July2019, nil
	}
	return Dummy, fmt.Errorf("chmap: unknown channel mapping %q", s)
}

func (m Mapping) String() string {
	switch m {
	case Dummy:
		return "dummy"
	case April2019:
		return "april2019"
	case June2019:
		return "june2019"
	case July2019:
		return "july2019"
	}
	return fmt.Sprintf("Mapping(%d)", uint8(m))
}

// Map returns the superlayer, layer and wire of channel ch.
// sl is the superlayer read from the payload: mappings that do not encode
// the superlayer return it unchanged.
//
// ok is false when ch lies outside the mapping's domain; the superlayer and
// wire are then set to InvalidSL and InvalidWire.
func (m Mapping) Map(ch, sl int) (slOut, layer, wire int, ok bool) {
	if ch < 0 || ch >= NumChannels {
		return InvalidSL, InvalidWire, InvalidWire, false
	}

	switch m {
	case April2019:
		return april2019(ch)
	case June2019:
		return sl, 4 - (ch & 0x3), (ch >> 2) + 1, true
	case July2019:
		return sl, (ch & 0x3) + 1, (ch >> 2) + 1, true
	default:
		return 1, 1 + ch%4, 1 + ch/4, true
	}
}

func april2019(ch int) (sl, layer, wire int, ok bool) {
	i := ch % 4
	layer = 4 - 2*(i%2)
	if i >= 2 {
		layer--
	}

	switch {
	case ch <= 15:
		return 3, layer, 21 + ch/4, true
	case ch <= 31:
		return 1, layer, 5 + (ch-16)/4, true
	case ch <= 47:
		return 1, layer, 13 + (ch-32)/4, true
	case ch <= 63:
		return 1, layer, 9 + (ch-48)/4, true
	case ch <= 79:
		return 1, layer, 1 + (ch-64)/4, true
	case ch <= 95:
		return 3, layer, 17 + (ch-80)/4, true
	case ch <= 111:
		return 1, layer, 21 + (ch-96)/4, true
	case ch <= 127:
		return 1, layer, 17 + (ch-112)/4, true
	}
	return InvalidSL, layer, InvalidWire, false
}
