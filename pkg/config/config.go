// Package config holds the injected identifiers spec §6 calls "Configured
// identifiers": the three side-channel port names and the top module
// name. These are opaque to the core transformation engine but must not
// collide with any user signal.
package config

import (
	"fmt"
	"strings"
)

// Config groups the names injected at start-up (spec §6).
type Config struct {
	// ObservePort is the external output bus name for observation taps.
	ObservePort string
	// ControlPortIn/ControlPortOut are the external control bus names
	// (output/input respectively, at the module boundary).
	ControlPortIn  string
	ControlPortOut string
	// TopModule names the root of the instance tree.
	TopModule string
}

// Default returns the original tool's identifier choices.
func Default() Config {
	return Config{
		ObservePort:    "smu_obs",
		ControlPortIn:  "ctrl_in",
		ControlPortOut: "ctrl_out",
	}
}

// reservedSuffixes/Prefixes are the synthesized-name markers this tool
// introduces; a user signal using one of these would silently collide
// with a generated name (spec §6 "Collision detection MAY be
// implemented..."). This repo promotes that MAY to a MUST pre-pass.
var reservedSuffixes = []string{"_controlled", "_int", "_inst"}

// Collides reports whether name would collide with one of the
// identifiers this tool synthesizes or injects.
func (c Config) Collides(name string) bool {
	for _, prefix := range []string{c.ObservePort, c.ControlPortIn, c.ControlPortOut} {
		if prefix != "" && strings.HasPrefix(name, prefix) {
			return true
		}
	}
	for _, suffix := range reservedSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// Validate checks the configuration is minimally sane (non-empty, mutually
// distinct identifiers and a non-empty top module name).
func (c Config) Validate() error {
	if c.ObservePort == "" || c.ControlPortIn == "" || c.ControlPortOut == "" {
		return fmt.Errorf("observe/control port identifiers must be non-empty")
	}
	if c.TopModule == "" {
		return fmt.Errorf("top module name must be non-empty")
	}
	seen := map[string]bool{}
	for _, n := range []string{c.ObservePort, c.ControlPortIn, c.ControlPortOut} {
		if seen[n] {
			return fmt.Errorf("configured identifiers must be distinct, got duplicate %q", n)
		}
		seen[n] = true
	}
	return nil
}
