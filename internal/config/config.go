// Package config loads ymir.json, the optional project configuration file
// that sits beside a script's entry file (spec.md §6). The core never
// reads this file itself — the driver decodes it and passes the result
// in — so this package only owns the shape and defaulting rules.
package config

import (
	"encoding/json"
	"fmt"
)

// BearerMode mirrors ast.BearerMode but is spelled the way ymir.json's
// "generateBearerAuth" field spells it (spec.md §6).
type BearerMode string

const (
	BearerModeNone  BearerMode = "NONE"
	BearerModeBasic BearerMode = "BASIC"
	BearerModeFull  BearerMode = "FULL"
)

// JavaPackages is the "target.packages" mapping for the Java/Spring
// emitter (spec.md §4.6, §6).
type JavaPackages struct {
	Main       string `json:"main"`
	DTO        string `json:"dto"`
	Config     string `json:"config"`
	Controller string `json:"controller"`
	Auth       string `json:"auth"`
}

// TargetConfig is the "target" mapping (spec.md §6): target-specific
// configuration, presently only meaningful for the Java/Spring emitter.
type TargetConfig struct {
	Packages         JavaPackages `json:"packages"`
	UseSpringSecurity bool        `json:"useSpringSecurity"`
	AppendRequest    bool         `json:"appendRequest"`
}

// FrontendConfig is the optional "frontend" mapping (spec.md §6, §4.7).
type FrontendConfig struct {
	Mode   string `json:"mode"`
	Output string `json:"output"`
}

// Config is the decoded form of ymir.json (spec.md §6). All fields are
// optional in the file; Load applies the documented defaults after
// decoding.
type Config struct {
	Output            string         `json:"output"`
	Debug             bool           `json:"debug"`
	DetailedErrors    bool           `json:"detailedErrors"`
	Target            TargetConfig   `json:"target"`
	GenerateBearerAuth BearerMode    `json:"generateBearerAuth"`
	Frontend          *FrontendConfig `json:"frontend"`
}

// Default returns the configuration ymir uses when no ymir.json is
// present beside the entry file.
func Default() Config {
	return Config{
		Output: "build",
		Target: TargetConfig{
			Packages: JavaPackages{
				Main:       "com.ymir.generated",
				DTO:        "com.ymir.generated.dto",
				Config:     "com.ymir.generated.config",
				Controller: "com.ymir.generated.controller",
				Auth:       "com.ymir.generated.auth",
			},
		},
		GenerateBearerAuth: BearerModeNone,
	}
}

// Load decodes raw ymir.json content, filling any field the file omits
// with Default's value. A malformed document is a ConfigError per
// spec.md §7.
func Load(raw []byte) (Config, error) {
	cfg := Default()
	if len(raw) == 0 {
		return cfg, nil
	}
	// Decode into the already-defaulted struct so omitted fields keep
	// their default rather than zeroing out.
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("ConfigError: malformed ymir.json: %w", err)
	}
	if cfg.Output == "" {
		cfg.Output = "build"
	}
	if cfg.GenerateBearerAuth == "" {
		cfg.GenerateBearerAuth = BearerModeNone
	}
	if cfg.Target.Packages.Main == "" {
		cfg.Target.Packages = Default().Target.Packages
	}
	return cfg, nil
}
