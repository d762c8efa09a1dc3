package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Duration wraps time.Duration so that JSON config files can use
// human-readable strings like "15m" or "720h".
type Duration time.Duration

// UnmarshalJSON parses either a duration string ("1h30m") or a raw
// number of nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		parsed, err := time.ParseDuration(asString)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", asString, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var asNumber int64
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(asNumber)
	return nil
}

// StructuredJSONConfig mirrors StructuredConfig with JSON-friendly field
// types. It exists so that durations can be written as strings in the
// config file.
type StructuredJSONConfig struct {
	App struct {
		TokenSignKey         string   `json:"token_sign_key"`
		TokenIssuer          string   `json:"token_issuer"`
		AccessTokenDuration  Duration `json:"access_token_duration"`
		RefreshTokenDuration Duration `json:"refresh_token_duration"`
		Version              string   `json:"version"`
	} `json:"app"`
	WebAuthn struct {
		RPID          string   `json:"rp_id"`
		RPDisplayName string   `json:"rp_display_name"`
		RPOrigins     []string `json:"rp_origins"`
		CeremonyTTL   Duration `json:"ceremony_ttl"`
	} `json:"webauthn"`
	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db"`
		Redis struct {
			Addr     string `json:"address"`
			Password string `json:"password"`
			DB       int    `json:"db"`
		} `json:"redis"`
	} `json:"storage"`
	Server struct {
		HTTPAddress    string   `json:"address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server"`
	Workers struct {
		BlocklistSweepInterval Duration `json:"blocklist_sweep_interval"`
	} `json:"workers"`
}

// parseJSON reads the JSON config file at path and converts it into a
// *StructuredConfig suitable for merging with the env and flag layers.
func parseJSON(path string) (*StructuredConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading JSON config file: %w", err)
	}

	var jsonCfg StructuredJSONConfig
	if err := json.Unmarshal(raw, &jsonCfg); err != nil {
		return nil, fmt.Errorf("error parsing JSON config file: %w", err)
	}

	return &StructuredConfig{
		App: App{
			TokenSignKey:         jsonCfg.App.TokenSignKey,
			TokenIssuer:          jsonCfg.App.TokenIssuer,
			AccessTokenDuration:  time.Duration(jsonCfg.App.AccessTokenDuration),
			RefreshTokenDuration: time.Duration(jsonCfg.App.RefreshTokenDuration),
			Version:              jsonCfg.App.Version,
		},
		WebAuthn: WebAuthn{
			RPID:          jsonCfg.WebAuthn.RPID,
			RPDisplayName: jsonCfg.WebAuthn.RPDisplayName,
			RPOrigins:     jsonCfg.WebAuthn.RPOrigins,
			CeremonyTTL:   time.Duration(jsonCfg.WebAuthn.CeremonyTTL),
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			Redis: Redis{
				Addr:     jsonCfg.Storage.Redis.Addr,
				Password: jsonCfg.Storage.Redis.Password,
				DB:       jsonCfg.Storage.Redis.DB,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Workers: Workers{
			BlocklistSweepInterval: time.Duration(jsonCfg.Workers.BlocklistSweepInterval),
		},
	}, nil
}
