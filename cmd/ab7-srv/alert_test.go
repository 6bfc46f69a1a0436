// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log"
	"reflect"
	"strings"
	"testing"

	"github.com/go-lpc/dtab7/ab7"
	"github.com/go-lpc/dtab7/config"
	"github.com/go-lpc/dtab7/unpack"
	mail "gopkg.in/gomail.v2"
)

type fakeDialer struct {
	msgs []*mail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*mail.Message) error {
	d.msgs = append(d.msgs, m...)
	return d.err
}

func TestAlerter(t *testing.T) {
	var (
		ok  = unpack.Result{Blocks: make([]ab7.Block, 2)}
		bad = unpack.Result{
			Blocks:  make([]ab7.Block, 1),
			Rejects: []unpack.Reject{{FED: 1369, Err: fmt.Errorf("boom")}},
		}
	)

	for _, tc := range []struct {
		name string
		cfg  config.AlertConfig
		res  []unpack.Result
		dial *fakeDialer
		want int
	}{
		{
			name: "disabled",
			cfg:  config.AlertConfig{Window: 2, MaxAlerts: 5, Targets: []string{"a@example.org"}},
			res:  []unpack.Result{bad, bad, bad, bad},
			dial: &fakeDialer{},
			want: 0,
		},
		{
			name: "below-threshold",
			cfg:  config.AlertConfig{RejectRate: 0.4, Window: 2, MaxAlerts: 5, Targets: []string{"a@example.org"}},
			res:  []unpack.Result{ok, bad, ok, bad},
			dial: &fakeDialer{},
			want: 0,
		},
		{
			name: "above-threshold",
			cfg:  config.AlertConfig{RejectRate: 0.1, Window: 2, MaxAlerts: 5, Targets: []string{"a@example.org"}},
			res:  []unpack.Result{ok, bad, ok, bad, ok},
			dial: &fakeDialer{},
			want: 2,
		},
		{
			name: "max-alerts",
			cfg:  config.AlertConfig{RejectRate: 0.1, Window: 1, MaxAlerts: 2, Targets: []string{"a@example.org"}},
			res:  []unpack.Result{bad, bad, bad, bad},
			dial: &fakeDialer{},
			want: 2,
		},
		{
			name: "no-targets",
			cfg:  config.AlertConfig{RejectRate: 0.1, Window: 1, MaxAlerts: 2},
			res:  []unpack.Result{bad},
			dial: &fakeDialer{},
			want: 0,
		},
		{
			name: "send-error",
			cfg:  config.AlertConfig{RejectRate: 0.1, Window: 1, MaxAlerts: 2, Targets: []string{"a@example.org"}},
			res:  []unpack.Result{bad},
			dial: &fakeDialer{err: fmt.Errorf("no smtp")},
			want: 1,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			buf := new(strings.Builder)
			a := newAlerter("srv", tc.cfg, log.New(buf, "", 0), tc.dial)
			for _, res := range tc.res {
				a.add(res)
			}
			if got := len(tc.dial.msgs); got != tc.want {
				t.Fatalf("invalid number of alerts: got=%d, want=%d\n%s", got, tc.want, buf)
			}
		})
	}
}

func TestAlerterNoDialer(t *testing.T) {
	buf := new(strings.Builder)
	cfg := config.AlertConfig{RejectRate: 0.1, Window: 1, MaxAlerts: 2, Targets: []string{"a@example.org"}}
	a := newAlerter("srv", cfg, log.New(buf, "", 0), nil)
	a.add(unpack.Result{Rejects: []unpack.Reject{{FED: 1368}}})
	if !strings.Contains(buf.String(), "missing credentials") {
		t.Fatalf("missing credentials error:\n%s", buf)
	}

	a.reset()
	if a.events != 0 || a.sent != 0 {
		t.Fatalf("invalid alerter state after reset: %+v", a)
	}
}

func TestAlertMail(t *testing.T) {
	cfg := config.AlertConfig{RejectRate: 0.25, Window: 100}
	msg := newAlertMail("fed1368", "daq@example.org", []string{"a@example.org", "b@example.org"}, 42, 0.5, cfg)

	if got, want := msg.GetHeader("Subject"), []string{"[ab7-srv] fed1368: reject rate alert"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid subject: got=%q, want=%q", got, want)
	}
	if got, want := msg.GetHeader("Bcc"), []string{"a@example.org", "b@example.org"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid targets: got=%q, want=%q", got, want)
	}

	buf := new(strings.Builder)
	_, err := msg.WriteTo(buf)
	if err != nil {
		t.Fatalf("could not write mail: %+v", err)
	}
	if !strings.Contains(buf.String(), "rate:   0.500") {
		t.Fatalf("invalid mail body:\n%s", buf)
	}
}
