// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"

	"github.com/go-lpc/dtab7/ab7"
	"github.com/go-lpc/dtab7/chmap"
)

const maxFED = 0xfff

// Validate checks the configuration.
// It does not modify it.
func Validate(cfg *Config) error {
	if len(cfg.FEDs) == 0 {
		return fmt.Errorf("no FED configured")
	}

	seen := make(map[int]bool, len(cfg.FEDs))
	for _, fed := range cfg.FEDs {
		if fed < 0 || fed > maxFED {
			return fmt.Errorf("FED %d out of range [0, %d]", fed, maxFED)
		}
		if seen[fed] {
			return fmt.Errorf("FED %d configured twice", fed)
		}
		seen[fed] = true
	}

	if _, err := chmap.Parse(cfg.ChannelMapping); err != nil {
		return err
	}
	if _, err := ab7.ParseVersion(cfg.Version); err != nil {
		return err
	}

	if cfg.Wheel < -2 || cfg.Wheel > 2 {
		return fmt.Errorf("wheel %d out of range [-2, 2]", cfg.Wheel)
	}
	if cfg.Sector < 1 || cfg.Sector > 14 {
		return fmt.Errorf("sector %d out of range [1, 14]", cfg.Sector)
	}

	soft, hard := cfg.SlotCeilings.Soft, cfg.SlotCeilings.Hard
	if soft <= 0 || hard <= 0 {
		return fmt.Errorf("slot ceilings must be positive (soft=%d, hard=%d)", soft, hard)
	}
	if soft > hard {
		return fmt.Errorf("soft slot ceiling %d above hard ceiling %d", soft, hard)
	}

	if cfg.ZShiftFile != "" && cfg.XShiftFile == "" {
		return fmt.Errorf("z-shift file %q set without x-shift file", cfg.ZShiftFile)
	}

	alerts := cfg.Alerts
	if alerts.RejectRate < 0 || alerts.RejectRate > 1 {
		return fmt.Errorf("alert reject rate %v out of range [0, 1]", alerts.RejectRate)
	}
	if alerts.RejectRate > 0 && alerts.Window <= 0 {
		return fmt.Errorf("alert window must be positive (window=%d)", alerts.Window)
	}

	return nil
}
