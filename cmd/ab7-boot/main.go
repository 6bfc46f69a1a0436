// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ab7-boot (re)starts the AB7 unpacking processes, optionally
// monitoring their CPU and memory usage.
//
// Usage: ab7-boot [OPTIONS] "CMD1 [ARGS...]" ["CMD2 [ARGS...]" ...]
//
// Example:
//
//	$> ab7-boot -pmon -freq=5s "ab7-srv -cfg /etc/dtab7/fed1368.yaml"
package main // import "github.com/go-lpc/dtab7/cmd/ab7-boot"

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/sbinet/pmon"
	"golang.org/x/sync/errgroup"
)

func main() {
	log.SetPrefix("ab7-boot: ")
	log.SetFlags(0)

	var (
		doMon  = flag.Bool("pmon", false, "enable pmon monitoring")
		doFreq = flag.Duration("freq", 1*time.Second, "pmon frequency")
		doKill = flag.Bool("kill", true, "kill previous instances of the commands")
		dir    = flag.String("dir", os.Getenv("DTAB7_LOGDIR"), "directory of the log files")
	)

	flag.Parse()

	cmds, err := commands(flag.Args())
	if err != nil {
		log.Fatalf("%+v", err)
	}

	if *doKill {
		killall(cmds)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	defer signal.Stop(stop)

	err = run(*doMon, *doFreq, cmds, *dir, stop)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func commands(args []string) ([]*exec.Cmd, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no command to boot")
	}
	cmds := make([]*exec.Cmd, 0, len(args))
	for _, arg := range args {
		toks := strings.Fields(arg)
		if len(toks) == 0 {
			return nil, fmt.Errorf("empty command")
		}
		cmds = append(cmds, exec.Command(toks[0], toks[1:]...))
	}
	return cmds, nil
}

func killall(cmds []*exec.Cmd) {
	for _, cmd := range cmds {
		name := filepath.Base(cmd.Path)
		kill := exec.Command("killall", name)
		kill.Stderr = os.Stderr
		kill.Stdout = os.Stdout
		err := kill.Run()
		if err != nil {
			log.Printf("could not kill %q: %+v", name, err)
		}
	}
}

func run(doMon bool, freq time.Duration, cmds []*exec.Cmd, dir string, stop chan os.Signal) error {
	if dir == "" {
		dir = "/var/log/dtab7"
	}

	var (
		grp  errgroup.Group
		kill = make(chan int)
		done = make(chan int)
	)
	for i := range cmds {
		cmd := cmds[i]
		name := fmt.Sprintf("%s-%d", filepath.Base(cmd.Path), i)
		grp.Go(func() error {
			return start(cmd, name, dir, kill, doMon, freq)
		})
	}

	go func() {
		select {
		case <-stop:
			close(kill)
		case <-done:
		}
	}()

	err := grp.Wait()
	close(done)
	if err != nil {
		return fmt.Errorf("could not boot AB7 processes: %w", err)
	}
	return nil
}

func start(cmd *exec.Cmd, name, dir string, kill chan int, doMon bool, freq time.Duration) error {
	out, err := os.Create(filepath.Join(dir, name+".log"))
	if err != nil {
		return fmt.Errorf("could not create output log file for %q: %w", name, err)
	}
	defer out.Close()

	cmd.Stdout = out
	cmd.Stderr = out

	log.Printf("starting %q...", name)
	err = cmd.Start()
	if err != nil {
		return fmt.Errorf("could not start %q: %w", name, err)
	}

	if doMon {
		p, err := pmon.Monitor(cmd.Process.Pid)
		if err != nil {
			return fmt.Errorf("could not start monitoring %q (pid=%d): %w", name, cmd.Process.Pid, err)
		}
		f, err := os.Create(filepath.Join(dir, name+"-pmon.log"))
		if err != nil {
			return fmt.Errorf("could not create pmon log file for command %q: %w", name, err)
		}
		defer f.Close()
		p.W = f
		p.Freq = freq

		go func() {
			log.Printf("run pmon %q...", name)
			err := p.Run()
			if err != nil {
				log.Printf("could not start monitoring %q: %+v", name, err)
			}
		}()

		defer func() {
			err := p.Kill()
			if err != nil {
				log.Printf("could not stop monitoring %q: %+v", name, err)
			}
		}()
	}

	errch := make(chan error, 1)
	go func() {
		errch <- cmd.Wait()
	}()

	select {
	case <-kill:
		err = cmd.Process.Kill()
		if err != nil {
			return fmt.Errorf("could not kill %q: %+v", name, err)
		}
		<-errch
	case err = <-errch:
		if err != nil {
			return fmt.Errorf("could not run %q: %w", name, err)
		}
	}

	return nil
}
