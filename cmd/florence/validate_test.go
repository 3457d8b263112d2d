package main

import (
	"testing"

	"florence-hq/vesta/pkg/cli"
)

func TestValidateConfigValidFile(t *testing.T) {
	cfgFile = "testdata/valid-config.yaml"
	validateFlags.format = "text"

	if err := validateConfig(nil, []string{}); err != nil {
		t.Errorf("validateConfig() with valid file returned error: %v", err)
	}
}

func TestValidateConfigValidFileJSON(t *testing.T) {
	cfgFile = "testdata/valid-config.yaml"
	validateFlags.format = "json"

	if err := validateConfig(nil, []string{}); err != nil {
		t.Errorf("validateConfig() with JSON format returned error: %v", err)
	}
}

func TestValidateConfigInvalidFile(t *testing.T) {
	cfgFile = "testdata/invalid-config.yaml"
	validateFlags.format = "text"

	err := validateConfig(nil, []string{})
	if err == nil {
		t.Fatal("validateConfig() with invalid file should return error")
	}
	if code := cli.ExitCode(err); code != cli.ExitConfig {
		t.Errorf("ExitCode = %d, want %d", code, cli.ExitConfig)
	}
}

func TestValidateConfigUnknownKey(t *testing.T) {
	// Strict parsing rejects keys the configuration does not define
	cfgFile = "testdata/unknown-key.yaml"
	validateFlags.format = "text"

	err := validateConfig(nil, []string{})
	if err == nil {
		t.Fatal("validateConfig() with unknown key should return error")
	}
	if code := cli.ExitCode(err); code != cli.ExitConfig {
		t.Errorf("ExitCode = %d, want %d", code, cli.ExitConfig)
	}
}

func TestValidateConfigNonexistentFile(t *testing.T) {
	cfgFile = "testdata/nonexistent.yaml"
	validateFlags.format = "text"

	err := validateConfig(nil, []string{})
	if err == nil {
		t.Fatal("validateConfig() with nonexistent file should return error")
	}
	if code := cli.ExitCode(err); code != cli.ExitConfig {
		t.Errorf("ExitCode = %d, want %d", code, cli.ExitConfig)
	}
}

func TestValidateConfigBadFormatFlag(t *testing.T) {
	cfgFile = "testdata/valid-config.yaml"
	validateFlags.format = "xml"

	err := validateConfig(nil, []string{})
	if err == nil {
		t.Fatal("validateConfig() with unsupported format should return error")
	}
	if code := cli.ExitCode(err); code != cli.ExitFailure {
		t.Errorf("ExitCode = %d, want %d", code, cli.ExitFailure)
	}
}

func TestIntervalString(t *testing.T) {
	if got := intervalString(-1); got != "disabled" {
		t.Errorf("intervalString(-1) = %q, want %q", got, "disabled")
	}
	if got := intervalString(0); got != "0s" {
		t.Errorf("intervalString(0) = %q, want %q", got, "0s")
	}
}
