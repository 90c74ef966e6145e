package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/photo-album/eda-app/internal/config"
)

func TestNewHandlerNamesAllMailVariables(t *testing.T) {
	t.Setenv("SES_EMAIL_FROM", "album@example.com")
	t.Setenv("SES_EMAIL_TO", "")
	t.Setenv("SES_REGION", "eu-west-1")

	_, err := newHandler(context.Background(), config.Runtime{}, nil)
	if !errors.Is(err, config.ErrMissingConfig) {
		t.Fatalf("expected ErrMissingConfig, got %v", err)
	}
	for _, name := range []string{"SES_EMAIL_FROM", "SES_EMAIL_TO", "SES_REGION"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("expected %s in error: %v", name, err)
		}
	}
}
