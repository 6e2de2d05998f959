// Package config provides configuration loading, validation, and hot
// reloading for the Callisto retention service.
//
// Configuration is loaded from a YAML file, merged with defaults, overridden
// by CALLISTO_* environment variables, and validated before use. The
// retention period can be changed at runtime: a file watcher reloads the
// configuration on change and publishes the new threshold through a
// RetentionPolicy accessor, which the sweeper reads once per cycle.
//
// Usage:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	policy := config.NewRetentionPolicy(cfg.Sweeper.RetentionDays)
//	watcher, _ := config.NewWatcher("config.yaml", policy, nil)
//	go watcher.Watch(ctx)
package config
