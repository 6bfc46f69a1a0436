// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/go-daq/tdaq"
	"github.com/go-lpc/dtab7/ab7"
	"github.com/go-lpc/dtab7/config"
	"github.com/go-lpc/dtab7/geom"
	"github.com/go-lpc/dtab7/rawfile"
	"github.com/go-lpc/dtab7/unpack"
	"gopkg.in/natefinch/lumberjack.v2"
)

const queueSize = 1024

type server struct {
	name  string
	fname string // default configuration file

	mu    sync.Mutex
	cfg   config.Config
	msg   *log.Logger
	logs  io.Closer
	u     *unpack.Unpacker
	stats unpack.Stats
	alert *alerter
	run   bool

	tps chan []byte
}

func newServer(name, fname string) *server {
	return &server{
		name:  name,
		fname: fname,
		cfg:   config.Default(),
		msg:   log.New(os.Stdout, name+": ", 0),
		tps:   make(chan []byte, queueSize),
	}
}

func (srv *server) close() {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.closeLogs()
}

func (srv *server) closeLogs() {
	if srv.logs == nil {
		return
	}
	_ = srv.logs.Close()
	srv.logs = nil
}

// setupLogs directs the unpacking logs to stdout and, when configured,
// to a rotating log file.
func (srv *server) setupLogs() {
	srv.closeLogs()

	cfg := srv.cfg.Logs
	if cfg.File == "" {
		srv.msg = log.New(os.Stdout, srv.name+": ", 0)
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxAge:     cfg.MaxAgeDays,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	}
	srv.logs = rotator
	srv.msg = log.New(
		io.MultiWriter(os.Stdout, rotator), srv.name+": ",
		log.LstdFlags|log.Lmicroseconds,
	)
}

func (srv *server) reset() {
	srv.stats = unpack.Stats{}
	srv.tps = make(chan []byte, queueSize)
	if srv.alert != nil {
		srv.alert.reset()
	}
}

// OnConfig loads the unpacker configuration.
// The request body may hold the path to the configuration file.
func (srv *server) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")

	fname := srv.fname
	if len(req.Body) > 0 {
		dec := tdaq.NewDecoder(bytes.NewReader(req.Body))
		fname = dec.ReadStr()
		if err := dec.Err(); err != nil {
			ctx.Msg.Errorf("could not decode /config request: %+v", err)
			return fmt.Errorf("could not decode /config request: %w", err)
		}
	}

	cfg := config.Default()
	if fname != "" {
		var err error
		cfg, err = config.Load(fname)
		if err != nil {
			ctx.Msg.Errorf("could not load configuration %q: %+v", fname, err)
			return fmt.Errorf("could not load configuration %q: %w", fname, err)
		}
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.cfg = cfg
	srv.u = nil
	srv.setupLogs()
	ctx.Msg.Infof("configured FEDs %v", cfg.FEDs)
	return nil
}

// OnInit creates the unpacker from the current configuration.
func (srv *server) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")

	srv.mu.Lock()
	defer srv.mu.Unlock()

	tr, err := srv.cfg.Transform(geom.NewNominal())
	if err != nil {
		ctx.Msg.Errorf("could not create transform: %+v", err)
		return fmt.Errorf("could not create transform: %w", err)
	}
	opts, err := srv.cfg.Options(tr)
	if err != nil {
		ctx.Msg.Errorf("could not create decoder options: %+v", err)
		return fmt.Errorf("could not create decoder options: %w", err)
	}
	opts = append(opts, ab7.WithLogger(srv.msg))

	srv.u = unpack.New(srv.cfg.FEDs, opts, unpack.WithLogger(srv.msg))
	srv.alert = newAlerter(srv.name, srv.cfg.Alerts, srv.msg, mailDialer())
	srv.reset()
	return nil
}

func (srv *server) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")

	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.run = false
	srv.reset()
	return nil
}

func (srv *server) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")

	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.u == nil {
		return fmt.Errorf("unpacker not initialized")
	}
	srv.run = true
	return nil
}

func (srv *server) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.run = false
	ctx.Msg.Debugf("received /stop command... -> %v", srv.stats)
	srv.msg.Printf("run summary: %v", srv.stats)
	return nil
}

func (srv *server) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")

	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.closeLogs()
	return nil
}

// onRaw unpacks the events held in a raw input frame.
func (srv *server) onRaw(ctx tdaq.Context, src tdaq.Frame) error {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if !srv.run {
		return nil
	}

	r, err := rawfile.NewReader(src.Body)
	if err != nil {
		ctx.Msg.Errorf("could not read raw frame: %+v", err)
		return fmt.Errorf("could not read raw frame: %w", err)
	}

	for r.NextEvent() {
		evt := r.Event()
		res, err := srv.u.Unpack(ctx.Ctx, evt)
		if err != nil {
			return fmt.Errorf("could not unpack event %d: %w", evt.ID, err)
		}
		srv.stats.Add(res)
		srv.alert.add(res)

		raw, err := encodePrimitives(res)
		if err != nil {
			return fmt.Errorf("could not encode primitives of event %d: %w", evt.ID, err)
		}
		select {
		case srv.tps <- raw:
		default:
			ctx.Msg.Errorf("primitives queue full: dropping event %d", evt.ID)
		}
	}

	if err := r.Err(); err != nil {
		ctx.Msg.Errorf("could not read raw frame: %+v", err)
		return fmt.Errorf("could not read raw frame: %w", err)
	}
	return nil
}

// onPrimitives publishes the primitives of the next unpacked event.
func (srv *server) onPrimitives(ctx tdaq.Context, dst *tdaq.Frame) error {
	srv.mu.Lock()
	tps := srv.tps
	srv.mu.Unlock()

	select {
	case <-ctx.Ctx.Done():
		dst.Body = nil
		return nil
	case data := <-tps:
		dst.Body = data
	}
	return nil
}

// encodePrimitives encodes the event number, the number of primitives
// and, for each primitive, its fields as 32-bit words.
func encodePrimitives(res unpack.Result) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := tdaq.NewEncoder(buf)
	enc.WriteU32(res.Event)
	enc.WriteU32(uint32(len(res.Primitives)))
	for _, tp := range res.Primitives {
		for _, v := range primitiveWords(tp) {
			enc.WriteU32(uint32(int32(v)))
		}
	}
	if err := enc.Err(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func primitiveWords(tp ab7.Primitive) []int {
	return []int{
		tp.BX, tp.Wheel, tp.Sector, tp.Station, tp.SuperLayer,
		tp.Phi, tp.PhiB, tp.Quality, tp.Index, tp.Time, tp.Chi2, tp.RPC,
	}
}
