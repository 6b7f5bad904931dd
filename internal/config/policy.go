package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// CoordinationPolicy tunes the request-lifecycle coordination loops without a
// redeploy: how often clients are told to poll their own requests, how often
// the server sweeps expired donations, and how far ahead "expiring soon"
// looks.
type CoordinationPolicy struct {
	PollInterval        time.Duration `mapstructure:"pollInterval"`
	ExpirySweepInterval time.Duration `mapstructure:"expirySweepInterval"`
	ExpiringSoonDays    int           `mapstructure:"expiringSoonDays"`
}

func DefaultCoordinationPolicy() CoordinationPolicy {
	return CoordinationPolicy{
		PollInterval:        30 * time.Second,
		ExpirySweepInterval: time.Minute,
		ExpiringSoonDays:    3,
	}
}

type PolicyHolder struct {
	current atomic.Value // holds CoordinationPolicy
}

func NewPolicyHolder() (*PolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("coordination")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/foodbridge/config") // Volume-mounted config
	v.AddConfigPath("/etc/foodbridge")            // System config
	v.AddConfigPath(".")                          // Current directory (dev mode)

	v.SetEnvPrefix("FOODBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultCoordinationPolicy()
	v.SetDefault("coordination.pollInterval", defaults.PollInterval)
	v.SetDefault("coordination.expirySweepInterval", defaults.ExpirySweepInterval)
	v.SetDefault("coordination.expiringSoonDays", defaults.ExpiringSoonDays)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var policy CoordinationPolicy
	if err := v.UnmarshalKey("coordination", &policy); err != nil {
		return nil, err
	}
	if err := validateCoordinationPolicy(policy); err != nil {
		return nil, err
	}

	holder := &PolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated CoordinationPolicy
		if err := v.UnmarshalKey("coordination", &updated); err != nil {
			log.Printf("[coordination-policy] reload failed: %v", err)
			return
		}
		if err := validateCoordinationPolicy(updated); err != nil {
			log.Printf("[coordination-policy] invalid policy ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[coordination-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPolicyHolder wraps a fixed policy, bypassing file watching.
func NewStaticPolicyHolder(policy CoordinationPolicy) *PolicyHolder {
	holder := &PolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func (h *PolicyHolder) Get() CoordinationPolicy {
	return h.current.Load().(CoordinationPolicy)
}

func validateCoordinationPolicy(policy CoordinationPolicy) error {
	if policy.PollInterval <= 0 {
		return errors.New("coordination.pollInterval must be positive")
	}
	if policy.ExpirySweepInterval <= 0 {
		return errors.New("coordination.expirySweepInterval must be positive")
	}
	if policy.ExpiringSoonDays < 0 {
		return errors.New("coordination.expiringSoonDays cannot be negative")
	}
	return nil
}
