package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from environment variables using `env` struct tags.
//
//	type Config struct {
//	    Port      int    `env:"HTTP_PORT" envDefault:"5000"`
//	    JWTSecret string `env:"JWT_SECRET,required,notEmpty"`
//	}
//
// When required variables are missing the error names all of them at once,
// so a misconfigured deployment fails with one actionable message.
func Load(cfg any) error {
	err := env.Parse(cfg)
	if err == nil {
		return nil
	}

	if missing := missingVars(err); len(missing) > 0 {
		return fmt.Errorf("parse config: missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return fmt.Errorf("parse config: %w", err)
}

func missingVars(err error) []string {
	var agg env.AggregateError
	if !errors.As(err, &agg) {
		return nil
	}

	var keys []string
	for _, e := range agg.Errors {
		var notSet env.EnvVarIsNotSetError
		var empty env.EmptyEnvVarError
		switch {
		case errors.As(e, &notSet):
			keys = append(keys, notSet.Key)
		case errors.As(e, &empty):
			keys = append(keys, empty.Key)
		}
	}
	sort.Strings(keys)
	return keys
}
