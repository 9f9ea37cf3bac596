package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		env     string
		level   string
		wantErr bool
	}{
		{"prod", "", false},
		{"local", "debug", false},
		{"docker", "warn", false},
		{"staging", "", true},
		{"dev", "loud", true},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewLogger(%q, %q) error = %v, wantErr %v", tt.env, tt.level, err, tt.wantErr)
			}
			if err == nil && l == nil {
				t.Fatal("expected a logger")
			}
		})
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "warn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Core().Enabled(zap.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !l.Core().Enabled(zap.WarnLevel) {
		t.Error("warn should be enabled")
	}
}

func TestConfig_Fields(t *testing.T) {
	tests := []struct {
		env      string
		encoding string
	}{
		{"prod", "json"},
		{"local", "console"},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg, err := Config(tt.env, "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Encoding != tt.encoding {
				t.Errorf("encoding = %q, want %q", cfg.Encoding, tt.encoding)
			}
			if cfg.InitialFields["service"] != ServiceName || cfg.InitialFields["env"] != tt.env {
				t.Errorf("initial fields = %v", cfg.InitialFields)
			}
		})
	}
}

func TestContextLogger(t *testing.T) {
	fallback := zap.NewExample()
	if got := FromContextOr(context.Background(), fallback); got != fallback {
		t.Error("expected fallback for a bare context")
	}
	if got := FromContext(context.Background()); got == nil {
		t.Error("FromContext must never return nil")
	}

	l := zap.NewExample().With(zap.String("request_id", "r1"))
	ctx := ContextWithLogger(context.Background(), l)
	if got := FromContext(ctx); got != l {
		t.Error("expected the stored logger")
	}
	if got := FromContextOr(ctx, fallback); got != l {
		t.Error("stored logger should win over fallback")
	}
}
