package config

import (
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Tunables are operational knobs that can change without a restart.
type Tunables struct {
	StockCacheTTL        time.Duration `mapstructure:"stockCacheTTL"`
	LookupRatePerSecond  float64       `mapstructure:"lookupRatePerSecond"`
	LookupBurst          int           `mapstructure:"lookupBurst"`
	ReorderSweepInterval time.Duration `mapstructure:"reorderSweepInterval"`
	ReorderSweepBatch    int           `mapstructure:"reorderSweepBatch"`
}

func DefaultTunables() Tunables {
	return Tunables{
		StockCacheTTL:        30 * time.Second,
		LookupRatePerSecond:  20,
		LookupBurst:          40,
		ReorderSweepInterval: 5 * time.Minute,
		ReorderSweepBatch:    100,
	}
}

// TunablesHolder hands out the current tunables snapshot and follows
// edits to the config file at runtime.
type TunablesHolder struct {
	current atomic.Value // holds Tunables
}

func NewTunablesHolder() (*TunablesHolder, error) {
	v := viper.New()

	v.SetConfigName("voucherd")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/voucherd/config")
	v.AddConfigPath("/etc/voucherd")
	v.AddConfigPath(".")

	v.SetEnvPrefix("VOUCHERD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultTunables()
	v.SetDefault("tunables.stockCacheTTL", defaults.StockCacheTTL)
	v.SetDefault("tunables.lookupRatePerSecond", defaults.LookupRatePerSecond)
	v.SetDefault("tunables.lookupBurst", defaults.LookupBurst)
	v.SetDefault("tunables.reorderSweepInterval", defaults.ReorderSweepInterval)
	v.SetDefault("tunables.reorderSweepBatch", defaults.ReorderSweepBatch)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	holder := &TunablesHolder{}
	if err := holder.reload(v); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if err := holder.reload(v); err != nil {
			log.Printf("tunables reload failed: %v", err)
		}
	})
	v.WatchConfig()

	return holder, nil
}

func (h *TunablesHolder) reload(v *viper.Viper) error {
	cfg := DefaultTunables()
	if err := v.UnmarshalKey("tunables", &cfg); err != nil {
		return err
	}
	cfg = cfg.withDefaults()
	h.current.Store(cfg)
	return nil
}

// Current returns the latest tunables snapshot.
func (h *TunablesHolder) Current() Tunables {
	if v, ok := h.current.Load().(Tunables); ok {
		return v
	}
	return DefaultTunables()
}

func (t Tunables) withDefaults() Tunables {
	defaults := DefaultTunables()
	if t.StockCacheTTL <= 0 {
		t.StockCacheTTL = defaults.StockCacheTTL
	}
	if t.LookupRatePerSecond <= 0 {
		t.LookupRatePerSecond = defaults.LookupRatePerSecond
	}
	if t.LookupBurst <= 0 {
		t.LookupBurst = defaults.LookupBurst
	}
	if t.ReorderSweepInterval <= 0 {
		t.ReorderSweepInterval = defaults.ReorderSweepInterval
	}
	if t.ReorderSweepBatch <= 0 {
		t.ReorderSweepBatch = defaults.ReorderSweepBatch
	}
	return t
}
