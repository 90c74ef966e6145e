package main

import (
	"context"
	"errors"
	"testing"

	"github.com/photo-album/eda-app/internal/config"
)

func TestNewHandlerRequiresMailSettings(t *testing.T) {
	t.Setenv("SES_EMAIL_FROM", "")
	t.Setenv("SES_EMAIL_TO", "")
	t.Setenv("SES_REGION", "")
	if _, err := newHandler(context.Background(), config.Runtime{}, nil); !errors.Is(err, config.ErrMissingConfig) {
		t.Fatalf("expected ErrMissingConfig, got %v", err)
	}
}

func TestNewHandlerUsesSenderAddress(t *testing.T) {
	t.Setenv("SES_EMAIL_FROM", "album@example.com")
	t.Setenv("SES_EMAIL_TO", "owner@example.com")
	t.Setenv("SES_REGION", "eu-west-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	handler, err := newHandler(context.Background(), config.Runtime{Region: "eu-west-1", Endpoint: "http://localhost:4566"}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if handler.From != "album@example.com" {
		t.Fatalf("unexpected sender: %q", handler.From)
	}
}
