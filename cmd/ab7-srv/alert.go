// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"crypto/tls"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/go-lpc/dtab7/config"
	"github.com/go-lpc/dtab7/unpack"
	mail "gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*mail.Message) error
}

var (
	alertMailUsr  = os.Getenv("MAIL_USERNAME")
	alertMailPwd  = os.Getenv("MAIL_PASSWORD")
	alertMailSrv  = os.Getenv("MAIL_SERVER")
	alertMailPort = atoi(os.Getenv("MAIL_PORT"))
)

// mailDialer returns the mail dialer configured from the environment,
// or nil when credentials are missing.
func mailDialer() dialer {
	if alertMailUsr == "" || alertMailPwd == "" ||
		alertMailSrv == "" || alertMailPort == 0 {
		return nil
	}
	dial := mail.NewDialer(alertMailSrv, alertMailPort, alertMailUsr, alertMailPwd)
	dial.TLSConfig = &tls.Config{
		InsecureSkipVerify: true,
	}
	return dial
}

// alerter sends a mail when the fraction of rejected blocks over a window
// of events exceeds a threshold.
type alerter struct {
	name string
	cfg  config.AlertConfig
	msg  *log.Logger
	dial dialer

	events  int
	blocks  int
	rejects int
	sent    int
}

func newAlerter(name string, cfg config.AlertConfig, msg *log.Logger, dial dialer) *alerter {
	return &alerter{name: name, cfg: cfg, msg: msg, dial: dial}
}

func (a *alerter) reset() {
	a.events = 0
	a.blocks = 0
	a.rejects = 0
	a.sent = 0
}

func (a *alerter) add(res unpack.Result) {
	if a.cfg.RejectRate <= 0 {
		return
	}

	a.events++
	a.blocks += len(res.Blocks) + len(res.Rejects)
	a.rejects += len(res.Rejects)
	if a.events < a.cfg.Window {
		return
	}

	var rate float64
	if a.blocks > 0 {
		rate = float64(a.rejects) / float64(a.blocks)
	}
	if rate > a.cfg.RejectRate {
		a.alert(res.Event, rate)
	}
	a.events = 0
	a.blocks = 0
	a.rejects = 0
}

func (a *alerter) alert(evt uint32, rate float64) {
	a.msg.Printf(
		"reject rate %.3f above %.3f over the last %d events (event=%d)",
		rate, a.cfg.RejectRate, a.cfg.Window, evt,
	)
	if a.sent >= a.cfg.MaxAlerts {
		return
	}
	a.sent++

	if a.dial == nil || len(a.cfg.Targets) == 0 {
		a.msg.Printf("could not send mail alert: missing credentials")
		return
	}

	msg := newAlertMail(a.name, alertMailUsr, a.cfg.Targets, evt, rate, a.cfg)
	err := a.dial.DialAndSend(msg)
	if err != nil {
		a.msg.Printf("could not send mail alert: %+v", err)
	}
}

func newAlertMail(name, from string, tgts []string, evt uint32, rate float64, cfg config.AlertConfig) *mail.Message {
	msg := mail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("Bcc", tgts...)
	msg.SetHeader("Subject", fmt.Sprintf("[ab7-srv] %s: reject rate alert", name))
	msg.SetBody("text/plain", fmt.Sprintf(
		"server: %s\nevent:  %d\nrate:   %.3f\nlimit:  %.3f\nwindow: %d events",
		name, evt, rate, cfg.RejectRate, cfg.Window,
	))
	return msg
}

func atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
