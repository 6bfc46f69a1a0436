// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config describes the configuration of an AB7 unpacking job.
package config // import "github.com/go-lpc/dtab7/config"

import (
	"fmt"
	"os"

	"github.com/go-lpc/dtab7/ab7"
	"github.com/go-lpc/dtab7/chmap"
	"github.com/go-lpc/dtab7/geom"
	"gopkg.in/yaml.v3"
)

// Config is the configuration of an unpacking job.
type Config struct {
	FEDs           []int  `yaml:"feds"`
	ChannelMapping string `yaml:"channel_mapping"`
	Version        string `yaml:"version"`

	RawTPVars          bool `yaml:"raw_tp_vars"`
	CorrectTPTime      bool `yaml:"correct_tp_time_to_l1a"`
	ExtendedPrimitives bool `yaml:"extended_primitives"`
	HexDump            bool `yaml:"hex_dump"`

	XShiftFile string `yaml:"xshift_file"`
	ZShiftFile string `yaml:"zshift_file"`

	Wheel  int `yaml:"wheel"`
	Sector int `yaml:"sector"`

	SlotCeilings struct {
		Soft int `yaml:"soft"`
		Hard int `yaml:"hard"`
	} `yaml:"slot_ceilings"`

	Logs   LogConfig   `yaml:"logs"`
	Alerts AlertConfig `yaml:"alerts"`
}

// AlertConfig describes the mail alerts sent when too many blocks are
// rejected. Mail credentials are read from the environment.
type AlertConfig struct {
	RejectRate float64  `yaml:"reject_rate"` // 0 disables alerts
	Window     int      `yaml:"window"`      // in events
	MaxAlerts  int      `yaml:"max_alerts"`
	Targets    []string `yaml:"targets"`
}

// LogConfig describes the rotating log file of long-running processes.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxAgeDays int    `yaml:"max_age_days"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

// Default returns the default configuration.
func Default() Config {
	var cfg Config
	cfg.FEDs = []int{1368}
	cfg.ChannelMapping = chmap.Dummy.String()
	cfg.Version = ab7.VersionAuto.String()
	cfg.CorrectTPTime = true
	cfg.Wheel = 2
	cfg.Sector = 12
	cfg.SlotCeilings.Soft = ab7.SoftSlotCeiling
	cfg.SlotCeilings.Hard = ab7.HardSlotCeiling
	cfg.Logs.MaxSizeMB = 100
	cfg.Logs.MaxBackups = 3
	cfg.Alerts.Window = 1000
	cfg.Alerts.MaxAlerts = 5
	return cfg
}

// Load reads and validates the YAML configuration file fname.
// Fields missing from the file keep their default value.
func Load(fname string) (Config, error) {
	cfg := Default()

	f, err := os.Open(fname)
	if err != nil {
		return cfg, fmt.Errorf("config: could not open %q: %w", fname, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	err = dec.Decode(&cfg)
	if err != nil {
		return cfg, fmt.Errorf("config: could not decode %q: %w", fname, err)
	}

	err = Validate(&cfg)
	if err != nil {
		return cfg, fmt.Errorf("config: invalid configuration %q: %w", fname, err)
	}

	return cfg, nil
}

// Save writes the configuration to the YAML file fname.
func Save(fname string, cfg Config) error {
	f, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("config: could not create %q: %w", fname, err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	err = enc.Encode(cfg)
	if err != nil {
		return fmt.Errorf("config: could not encode %q: %w", fname, err)
	}
	err = enc.Close()
	if err != nil {
		return fmt.Errorf("config: could not flush %q: %w", fname, err)
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("config: could not close %q: %w", fname, err)
	}
	return nil
}

// Options returns the decoder options described by the configuration.
// tr may be nil.
func (cfg Config) Options(tr geom.Transformer) ([]ab7.Option, error) {
	m, err := chmap.Parse(cfg.ChannelMapping)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	v, err := ab7.ParseVersion(cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	opts := []ab7.Option{
		ab7.WithMapping(m),
		ab7.WithVersion(v),
		ab7.WithRawTPVars(cfg.RawTPVars),
		ab7.WithTimeCorrection(cfg.CorrectTPTime),
		ab7.WithExtendedPrimitives(cfg.ExtendedPrimitives),
		ab7.WithHexDump(cfg.HexDump),
		ab7.WithChamber(cfg.Wheel, cfg.Sector),
		ab7.WithSlotCeilings(cfg.SlotCeilings.Soft, cfg.SlotCeilings.Hard),
	}
	if tr != nil {
		opts = append(opts, ab7.WithTransform(tr))
	}
	return opts, nil
}

// Transform builds the coordinate transform from the shift files of the
// configuration. It returns a nil transform when no x-shift file is set.
func (cfg Config) Transform(geo geom.Geometry) (geom.Transformer, error) {
	if cfg.XShiftFile == "" {
		return nil, nil
	}

	xshift, err := geom.LoadShifts(cfg.XShiftFile)
	if err != nil {
		return nil, fmt.Errorf("config: could not load x-shifts: %w", err)
	}

	var zshift geom.ShiftTable
	if cfg.ZShiftFile != "" {
		zshift, err = geom.LoadShifts(cfg.ZShiftFile)
		if err != nil {
			return nil, fmt.Errorf("config: could not load z-shifts: %w", err)
		}
	}

	return geom.NewTransform(geo, xshift, zshift), nil
}
