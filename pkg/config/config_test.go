package config_test

import (
	"testing"

	"github.com/tmakhader/asap-patch/pkg/config"
)

func TestCollides(t *testing.T) {
	cfg := config.Default()

	test := func(name string, expect bool) {
		if got := cfg.Collides(name); got != expect {
			t.Errorf("Collides(%q) = %v, want %v", name, got, expect)
		}
	}

	t.Run("Configured prefixes", func(t *testing.T) {
		test("smu_obs", true)
		test("smu_obs_extra", true)
		test("ctrl_in", true)
		test("ctrl_out", true)
	})

	t.Run("Reserved suffixes", func(t *testing.T) {
		test("a_controlled", true)
		test("foo_int", true)
		test("u0_inst", true)
	})

	t.Run("Ordinary signal names", func(t *testing.T) {
		test("a", false)
		test("data_valid", false)
		test("reset_n", false)
	})
}

func TestValidate(t *testing.T) {
	test := func(cfg config.Config, fail bool) {
		err := cfg.Validate()
		if (err != nil) != fail {
			t.Errorf("Validate() = %v, want fail=%v", err, fail)
		}
	}

	t.Run("Default plus top module", func(t *testing.T) {
		cfg := config.Default()
		cfg.TopModule = "TOP"
		test(cfg, false)
	})

	t.Run("Missing top module", func(t *testing.T) {
		test(config.Default(), true)
	})

	t.Run("Empty identifier", func(t *testing.T) {
		cfg := config.Config{ObservePort: "", ControlPortIn: "ctrl_in", ControlPortOut: "ctrl_out", TopModule: "TOP"}
		test(cfg, true)
	})

	t.Run("Duplicate identifiers", func(t *testing.T) {
		cfg := config.Config{ObservePort: "bus", ControlPortIn: "bus", ControlPortOut: "ctrl_out", TopModule: "TOP"}
		test(cfg, true)
	})
}
