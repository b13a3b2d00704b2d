package config

import "testing"

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 0},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_ThresholdOutOfRange(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Search: SearchConfig{DefaultThreshold: 1.5},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for out-of-range threshold")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Search.DefaultLimit != 10 {
		t.Errorf("expected DefaultLimit=10, got %d", cfg.Search.DefaultLimit)
	}
	if cfg.Search.DefaultThreshold != 0.5 {
		t.Errorf("expected DefaultThreshold=0.5, got %f", cfg.Search.DefaultThreshold)
	}
	if cfg.Generator.Workers != 4 {
		t.Errorf("expected Workers=4, got %d", cfg.Generator.Workers)
	}
	if cfg.Generator.QueueSize != 256 {
		t.Errorf("expected QueueSize=256, got %d", cfg.Generator.QueueSize)
	}
	if cfg.Generator.DrainTimeoutSec != 15 {
		t.Errorf("expected DrainTimeoutSec=15, got %d", cfg.Generator.DrainTimeoutSec)
	}
	if cfg.Intake.MaxCandidates != 3 {
		t.Errorf("expected MaxCandidates=3, got %d", cfg.Intake.MaxCandidates)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database:  DatabaseConfig{ReadinessTimeout: 15},
		Search:    SearchConfig{DefaultLimit: 25, DefaultThreshold: 0.3, MaxLimit: 50},
		Generator: GeneratorConfig{Workers: 2, QueueSize: 16, DrainTimeoutSec: 5},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Search.DefaultLimit != 25 {
		t.Errorf("expected DefaultLimit=25, got %d", cfg.Search.DefaultLimit)
	}
	if cfg.Search.DefaultThreshold != 0.3 {
		t.Errorf("expected DefaultThreshold=0.3, got %f", cfg.Search.DefaultThreshold)
	}
	if cfg.Generator.Workers != 2 {
		t.Errorf("expected Workers=2, got %d", cfg.Generator.Workers)
	}
}
