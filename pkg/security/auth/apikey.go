package auth

import (
	"fmt"
	"sync"

	"mercator-hq/strcalc/pkg/config"
)

// LookupEnv resolves an environment variable. os.LookupEnv satisfies it.
type LookupEnv func(key string) (string, bool)

// Validator checks API keys against a configured set. The set can be
// replaced with Reload while requests are being validated.
type Validator struct {
	mu   sync.RWMutex
	keys map[string]*KeyInfo
}

// NewValidator resolves the configured keys. It fails when a key_env
// variable is unset or empty, or when two entries resolve to the same key.
func NewValidator(keys []config.APIKeyConfig, lookup LookupEnv) (*Validator, error) {
	resolved, err := resolveKeys(keys, lookup)
	if err != nil {
		return nil, err
	}
	return &Validator{keys: resolved}, nil
}

// Reload replaces the key set. On error the current keys stay in effect.
func (v *Validator) Reload(keys []config.APIKeyConfig, lookup LookupEnv) error {
	resolved, err := resolveKeys(keys, lookup)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.keys = resolved
	v.mu.Unlock()
	return nil
}

func resolveKeys(keys []config.APIKeyConfig, lookup LookupEnv) (map[string]*KeyInfo, error) {
	resolved := make(map[string]*KeyInfo, len(keys))

	for _, k := range keys {
		value := k.Key
		if k.KeyEnv != "" {
			if lookup == nil {
				return nil, fmt.Errorf("key %q: no environment lookup for %s", k.Name, k.KeyEnv)
			}
			env, ok := lookup(k.KeyEnv)
			if !ok || env == "" {
				return nil, fmt.Errorf("key %q: environment variable %s is not set", k.Name, k.KeyEnv)
			}
			value = env
		}
		if value == "" {
			return nil, fmt.Errorf("key %q: empty key", k.Name)
		}
		if existing, ok := resolved[value]; ok {
			return nil, fmt.Errorf("key %q: same value as key %q", k.Name, existing.Name)
		}

		resolved[value] = &KeyInfo{
			Name:    k.Name,
			Key:     value,
			Enabled: !k.Disabled,
		}
	}

	return resolved, nil
}

// Validate returns the info for key.
func (v *Validator) Validate(key string) (*KeyInfo, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	info, ok := v.keys[key]
	if !ok {
		return nil, ErrInvalidKey
	}
	if !info.Enabled {
		return nil, ErrKeyDisabled
	}
	return info, nil
}

// Len returns the number of configured keys.
func (v *Validator) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.keys)
}
