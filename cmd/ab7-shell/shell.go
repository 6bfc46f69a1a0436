// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/go-lpc/dtab7/ab7"
	"github.com/go-lpc/dtab7/config"
	"github.com/go-lpc/dtab7/geom"
	"github.com/go-lpc/dtab7/internal/pretty"
	"github.com/go-lpc/dtab7/rawfile"
	"github.com/go-lpc/dtab7/unpack"
)

var errQuit = errors.New("quit")

type command struct {
	help string
	args int
	run  func(sh *shell, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":  {"display this help", 0, (*shell).help},
		"next":  {"display the next event", 0, (*shell).next},
		"prev":  {"display the previous event", 0, (*shell).prev},
		"goto":  {"goto EVT: display the event with id EVT", 1, (*shell).gotoEvt},
		"event": {"display the header of the current event", 0, (*shell).event},
		"hits":  {"display the hits of the current event", 0, (*shell).hits},
		"tps":   {"display the primitives of the current event", 0, (*shell).tps},
		"warn":  {"display the warnings of the current event", 0, (*shell).warn},
		"fed":   {"fed ID: restrict the display to a FED (-1: all FEDs)", 1, (*shell).fed},
		"stats": {"display the unpacking statistics of the whole file", 0, (*shell).stats},
		"quit":  {"quit the shell", 0, (*shell).quit},
	}
}

type shell struct {
	w    io.Writer
	r    *rawfile.Reader
	u    *unpack.Unpacker
	evts []rawfile.Event

	cur int // index of the current event, -1 before the first one
	res unpack.Result
	fid int // displayed FED, -1 for all
}

func newShell(w io.Writer, fname string, cfg config.Config) (*shell, error) {
	tr, err := cfg.Transform(geom.NewNominal())
	if err != nil {
		return nil, fmt.Errorf("could not create transform: %w", err)
	}
	opts, err := cfg.Options(tr)
	if err != nil {
		return nil, fmt.Errorf("could not create decoder options: %w", err)
	}
	// warnings are displayed with the warn command.
	msg := log.New(io.Discard, "", 0)
	if cfg.HexDump {
		msg = log.New(w, "", 0)
	}
	opts = append(opts, ab7.WithLogger(msg))

	r, err := rawfile.Open(fname)
	if err != nil {
		return nil, err
	}

	sh := &shell{
		w:   w,
		r:   r,
		u:   unpack.New(cfg.FEDs, opts, unpack.WithLogger(msg)),
		cur: -1,
		fid: -1,
	}
	for r.NextEvent() {
		sh.evts = append(sh.evts, r.Event())
	}
	if err := r.Err(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("could not index events: %w", err)
	}
	fmt.Fprintf(w, "%s: %d events\n", fname, len(sh.evts))
	return sh, nil
}

func (sh *shell) Close() error {
	return sh.r.Close()
}

func (sh *shell) names() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (sh *shell) exec(line string) error {
	toks := strings.Fields(line)
	if len(toks) == 0 {
		return nil
	}
	cmd, ok := commands[strings.ToLower(toks[0])]
	if !ok {
		return fmt.Errorf("unknown command %q", toks[0])
	}
	args := toks[1:]
	if len(args) != cmd.args {
		return fmt.Errorf("command %q expects %d argument(s), got %d", toks[0], cmd.args, len(args))
	}
	return cmd.run(sh, args)
}

func (sh *shell) load(i int) error {
	if i < 0 || i >= len(sh.evts) {
		return fmt.Errorf("no more events")
	}
	res, err := sh.u.Unpack(context.Background(), sh.evts[i])
	if err != nil {
		return err
	}
	sh.cur = i
	sh.res = res
	return nil
}

func (sh *shell) current() error {
	if sh.cur < 0 {
		return fmt.Errorf("no current event")
	}
	return nil
}

func (sh *shell) blocks() []ab7.Block {
	if sh.fid < 0 {
		return sh.res.Blocks
	}
	var blks []ab7.Block
	for _, blk := range sh.res.Blocks {
		if blk.FED == sh.fid {
			blks = append(blks, blk)
		}
	}
	return blks
}

func (sh *shell) display() {
	for _, blk := range sh.blocks() {
		pretty.Block(sh.w, sh.res.Event, blk)
	}
	for _, rej := range sh.res.Rejects {
		if sh.fid >= 0 && rej.FED != sh.fid {
			continue
		}
		fmt.Fprintf(sh.w, "=== event %d FED %d === rejected: %v\n", sh.res.Event, rej.FED, rej.Err)
	}
}

func (sh *shell) help(args []string) error {
	for _, name := range sh.names() {
		fmt.Fprintf(sh.w, "  %-6s %s\n", name, commands[name].help)
	}
	return nil
}

func (sh *shell) next(args []string) error {
	err := sh.load(sh.cur + 1)
	if err != nil {
		return err
	}
	sh.display()
	return nil
}

func (sh *shell) prev(args []string) error {
	err := sh.load(sh.cur - 1)
	if err != nil {
		return err
	}
	sh.display()
	return nil
}

func (sh *shell) gotoEvt(args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid event id %q: %w", args[0], err)
	}
	i := -1
	for j, evt := range sh.evts {
		if evt.ID == uint32(id) {
			i = j
			break
		}
	}
	if i < 0 {
		return fmt.Errorf("no event with id %d", id)
	}
	err = sh.load(i)
	if err != nil {
		return err
	}
	sh.display()
	return nil
}

func (sh *shell) event(args []string) error {
	if err := sh.current(); err != nil {
		return err
	}
	for _, blk := range sh.blocks() {
		pretty.Header(sh.w, sh.res.Event, blk)
	}
	return nil
}

func (sh *shell) hits(args []string) error {
	if err := sh.current(); err != nil {
		return err
	}
	for _, blk := range sh.blocks() {
		pretty.Hits(sh.w, blk)
	}
	return nil
}

func (sh *shell) tps(args []string) error {
	if err := sh.current(); err != nil {
		return err
	}
	for _, blk := range sh.blocks() {
		pretty.Primitives(sh.w, blk)
	}
	return nil
}

func (sh *shell) warn(args []string) error {
	if err := sh.current(); err != nil {
		return err
	}
	for _, blk := range sh.blocks() {
		pretty.Warnings(sh.w, blk)
	}
	return nil
}

func (sh *shell) fed(args []string) error {
	v, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid FED %q: %w", args[0], err)
	}
	sh.fid = v
	return nil
}

func (sh *shell) stats(args []string) error {
	var st unpack.Stats
	for _, evt := range sh.evts {
		res, err := sh.u.Unpack(context.Background(), evt)
		if err != nil {
			return err
		}
		st.Add(res)
	}
	fmt.Fprintf(sh.w, "%v\n", st)
	return nil
}

func (sh *shell) quit(args []string) error {
	return errQuit
}
