package duration

import (
	"encoding/json"

	"github.com/warp/value-engine/generic"
)

// Register the duration builder with the generic registry
func init() {
	generic.RegisterConstraint(generic.ConstraintDuration, build)
}

func build(config json.RawMessage, env generic.Environment) (generic.Constraint, error) {
	var cfg Config
	if err := generic.DecodeConfig(generic.ConstraintDuration, config, &cfg); err != nil {
		return nil, err
	}
	return NewConstraint(cfg, env)
}
