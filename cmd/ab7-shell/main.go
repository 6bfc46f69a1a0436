// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// ab7-shell is an interactive browser of AB7 raw data files.
//
// Usage: ab7-shell [OPTIONS] FILE
//
// Example:
//
//	$> ab7-shell -cfg ab7.yaml ./run_000042.raw
//	ab7> next
//	=== event 1 FED 1368 ===
//	[...]
//	ab7> hits
//	ab7> goto 42
//	ab7> quit
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-lpc/dtab7/config"
	"github.com/peterh/liner"
)

const usage = `ab7-shell is an interactive browser of AB7 raw data files.

Usage: ab7-shell [OPTIONS] FILE

Options:
`

func main() {
	log.SetPrefix("ab7-shell: ")
	log.SetFlags(0)

	var (
		cname = flag.String("cfg", "", "path to YAML unpacker configuration")
		hist  = flag.String("history", filepath.Join(os.TempDir(), ".ab7-shell.history"), "path to history file")
	)

	flag.Usage = func() {
		fmt.Print(usage)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		log.Fatalf("missing path to input raw file")
	}

	cfg := config.Default()
	if *cname != "" {
		var err error
		cfg, err = config.Load(*cname)
		if err != nil {
			log.Fatalf("could not load configuration: %+v", err)
		}
	}

	sh, err := newShell(os.Stdout, flag.Arg(0), cfg)
	if err != nil {
		log.Fatalf("could not open %q: %+v", flag.Arg(0), err)
	}
	defer sh.Close()

	err = loop(sh, *hist)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func loop(sh *shell, hist string) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(line string) []string {
		var cs []string
		for _, name := range sh.names() {
			if strings.HasPrefix(name, strings.ToLower(line)) {
				cs = append(cs, name)
			}
		}
		return cs
	})

	if f, err := os.Open(hist); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		f, err := os.Create(hist)
		if err != nil {
			log.Printf("could not save history: %+v", err)
			return
		}
		defer f.Close()
		_, _ = line.WriteHistory(f)
	}()

	for {
		input, err := line.Prompt("ab7> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(sh.w)
				return nil
			}
			return fmt.Errorf("could not read prompt: %w", err)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		err = sh.exec(input)
		switch {
		case errors.Is(err, errQuit):
			return nil
		case err != nil:
			fmt.Fprintf(sh.w, "error: %v\n", err)
		}
	}
}
