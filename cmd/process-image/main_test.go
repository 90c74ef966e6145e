package main

import (
	"context"
	"errors"
	"testing"

	"github.com/photo-album/eda-app/internal/config"
)

func TestNewHandlerRequiresTableName(t *testing.T) {
	t.Setenv("TABLE_NAME", "")
	if _, err := newHandler(context.Background(), config.Runtime{}, nil); !errors.Is(err, config.ErrMissingConfig) {
		t.Fatalf("expected ErrMissingConfig, got %v", err)
	}
}

func TestNewHandlerAppliesPartitionKey(t *testing.T) {
	t.Setenv("TABLE_NAME", "ImageTable")
	t.Setenv("TABLE_PARTITION_KEY", "photoName")
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	handler, err := newHandler(context.Background(), config.Runtime{Region: "eu-west-1"}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if handler.TableName != "ImageTable" || handler.PartitionKey != "photoName" {
		t.Fatalf("unexpected handler config: %s %s", handler.TableName, handler.PartitionKey)
	}
}
