// Package tier implements the tiered dispatch between the tree-walking
// interpreter and the bytecode VM for a single rule expression: interpret
// on the AST until an expression is "hot" enough to be worth compiling,
// then prefer the compiled form forever after. Config follows the same
// yaml-tagged, programmatically defaulted shape as a scheduler's own
// config, applied to a compile-promotion policy instead of a
// worker-pool policy.
package tier

import "gopkg.in/yaml.v3"

// Config controls when a cached expression is compiled to bytecode.
//
//   - EagerCompileNodeCount: an expression whose AST has at least this many
//     nodes is compiled on its very first evaluation (if compilable at
//     all), since a large compilable tree is assumed to be worth the
//     compile cost immediately.
//   - PromotionHitCount: a smaller expression is interpreted until its hit
//     counter reaches this threshold, then lazily promoted to bytecode.
type Config struct {
	EagerCompileNodeCount int `yaml:"eager_compile_node_count"`
	PromotionHitCount     int `yaml:"promotion_hit_count"`
}

// DefaultConfig returns the stock eager-compile and promotion thresholds.
func DefaultConfig() Config {
	return Config{
		EagerCompileNodeCount: 5,
		PromotionHitCount:     100,
	}
}

// LoadConfig parses a YAML document into a Config, starting from
// DefaultConfig so an operator's file only needs to override the fields
// it cares about.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal renders cfg back to YAML, for operators persisting a tuned
// promotion policy alongside the rule set it was tuned for.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
