//go:build !gcloud

package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestValidateForRun_LocalDefaults(t *testing.T) {
	t.Setenv(envFileEnv, filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv(dbDriverEnv, "")
	t.Setenv(expoEndpointEnv, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := ValidateForRun(cfg); err != nil {
		t.Errorf("ValidateForRun() error = %v", err)
	}
}

func TestNotifierConfig_ValidateExpo(t *testing.T) {
	tests := []struct {
		name string
		cfg  NotifierConfig
		want error
	}{
		{"default endpoint", NotifierConfig{ExpoEndpoint: defaultExpoEndpoint}, nil},
		{"relative endpoint", NotifierConfig{ExpoEndpoint: "/push"}, ErrInvalidExpoEndpoint},
		{"ftp endpoint", NotifierConfig{ExpoEndpoint: "ftp://exp.host/push"}, ErrInvalidExpoEndpoint},
		{"negative rate", NotifierConfig{ExpoEndpoint: defaultExpoEndpoint, ExpoMaxRequestsPerSecond: -1}, ErrNegativeExpoRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}
