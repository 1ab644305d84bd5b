package bootstrap

import (
	"sort"
	"testing"

	"github.com/strixlab/patrol/config"
)

func TestErrorChannelCapacity(t *testing.T) {
	tests := []struct {
		name  string
		modes []config.ServiceMode
		want  int
	}{
		{
			name: "no services enabled",
			want: 0,
		},
		{
			name:  "api only",
			modes: []config.ServiceMode{config.ServiceModeAPI},
			want:  1,
		},
		{
			name:  "scheduler only",
			modes: []config.ServiceMode{config.ServiceModeScheduler},
			want:  1,
		},
		{
			name:  "api and scheduler",
			modes: []config.ServiceMode{config.ServiceModeAPI, config.ServiceModeScheduler},
			want:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enabled := make(map[config.ServiceMode]bool, len(tt.modes))
			for _, mode := range tt.modes {
				enabled[mode] = true
			}

			if got := errorChannelCapacity(enabled); got != tt.want {
				t.Fatalf("errorChannelCapacity(%v) = %d, want %d", tt.modes, got, tt.want)
			}
		})
	}
}

func TestErrorChannelBufferSize(t *testing.T) {
	tests := []struct {
		name  string
		modes []config.ServiceMode
		want  int
	}{
		{
			name: "no services enabled",
			want: 1,
		},
		{
			name:  "api only",
			modes: []config.ServiceMode{config.ServiceModeAPI},
			want:  2,
		},
		{
			name:  "api and scheduler",
			modes: []config.ServiceMode{config.ServiceModeAPI, config.ServiceModeScheduler},
			want:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enabled := make(map[config.ServiceMode]bool, len(tt.modes))
			for _, mode := range tt.modes {
				enabled[mode] = true
			}

			if got := errorChannelBufferSize(enabled); got != tt.want {
				t.Fatalf("errorChannelBufferSize(%v) = %d, want %d", tt.modes, got, tt.want)
			}
		})
	}
}

func TestValidateServiceConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.AppConfig
		wantErr bool
	}{
		{
			name:    "nil config",
			wantErr: true,
		},
		{
			name:    "default services",
			cfg:     &config.AppConfig{Services: "api,scheduler"},
			wantErr: false,
		},
		{
			name:    "unknown service",
			cfg:     &config.AppConfig{Services: "api,reaper"},
			wantErr: true,
		},
		{
			name:    "empty services",
			cfg:     &config.AppConfig{Services: ""},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateServiceConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateServiceConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnabledServices(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.AppConfig
		want []string
	}{
		{
			name: "nil config",
			want: []string{},
		},
		{
			name: "both services",
			cfg:  &config.AppConfig{Services: "api,scheduler"},
			want: []string{"api", "scheduler"},
		},
		{
			name: "scheduler only",
			cfg:  &config.AppConfig{Services: "scheduler"},
			want: []string{"scheduler"},
		},
		{
			name: "invalid falls back to empty",
			cfg:  &config.AppConfig{Services: "reaper"},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetEnabledServices(tt.cfg)
			sort.Strings(got)

			if len(got) != len(tt.want) {
				t.Fatalf("GetEnabledServices() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("GetEnabledServices() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}
