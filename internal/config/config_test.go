package config_test

import (
	"errors"
	"testing"

	"github.com/okian/landpower/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.BatchSize, convey.ShouldEqual, 500)
			convey.So(cfg.PageSize, convey.ShouldEqual, 1000)
			convey.So(cfg.BatchConcurrency, convey.ShouldEqual, 4)
			convey.So(cfg.LandMultiplier, convey.ShouldEqual, 1.0)
			convey.So(cfg.StakingContractAddress, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_StrategyDefaults(t *testing.T) {
	convey.Convey("Given a config with a staking contract", t, func() {
		cfg := config.New()
		cfg.StakingContractAddress = "0x1111111111111111111111111111111111111111"
		cfg.LandMultiplier = 3

		convey.Convey("Then the strategy defaults mirror it", func() {
			opts := cfg.StrategyDefaults()
			convey.So(opts.Addresses.Land, convey.ShouldEqual, cfg.LandAddress)
			convey.So(opts.Addresses.Estate, convey.ShouldEqual, cfg.EstateAddress)
			convey.So(opts.Addresses.StakingContract, convey.ShouldEqual, cfg.StakingContractAddress)
			convey.So(opts.Multipliers.Land, convey.ShouldEqual, 3.0)
			convey.So(opts.Subgraphs.LandWorks, convey.ShouldEqual, cfg.SubgraphURL)
			convey.So(opts.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with invalid values", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = " " }},
			{"zero batch size", func(c *config.Config) { c.BatchSize = 0 }},
			{"oversized batch", func(c *config.Config) { c.BatchSize = 501 }},
			{"zero page size", func(c *config.Config) { c.PageSize = 0 }},
			{"zero concurrency", func(c *config.Config) { c.BatchConcurrency = 0 }},
			{"zero query timeout", func(c *config.Config) { c.QueryTimeoutMS = 0 }},
			{"negative multiplier", func(c *config.Config) { c.LandMultiplier = -1 }},
		}

		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)

			convey.Convey("Then "+tc.name+" is rejected", func() {
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
