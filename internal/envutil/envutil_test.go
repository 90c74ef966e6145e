package envutil

import "testing"

func TestHostEnvKeyUsesDefaultPrefix(t *testing.T) {
	t.Setenv("ENV_PREFIX", "")
	if got := HostEnvKey("PORT_EMULATOR"); got != "EDA_PORT_EMULATOR" {
		t.Fatalf("unexpected key: %s", got)
	}
}

func TestHostEnvKeyUsesOverridePrefix(t *testing.T) {
	t.Setenv("ENV_PREFIX", "ACME")
	t.Setenv("ACME_PORT_EMULATOR", "4566")
	if got := GetHostEnv("PORT_EMULATOR"); got != "4566" {
		t.Fatalf("unexpected value: %s", got)
	}
}

func TestGetenvDefault(t *testing.T) {
	t.Setenv("EDA_TEST_VALUE", "   ")
	if got := GetenvDefault("EDA_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback for blank value, got %q", got)
	}
	t.Setenv("EDA_TEST_VALUE", " set ")
	if got := GetenvDefault("EDA_TEST_VALUE", "fallback"); got != "set" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
}
