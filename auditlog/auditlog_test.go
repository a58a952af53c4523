package auditlog

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestSchemaDeclaresExpectedTable(t *testing.T) {
	if !strings.Contains(Schema, "fsm_audit_log") {
		t.Fatal("Schema should declare the fsm_audit_log table")
	}
	if !strings.Contains(Schema, "engine_id") {
		t.Fatal("Schema should carry an engine_id column for multi-engine deployments")
	}
}

func TestOpenFailsFastOnUnparsableDSN(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := Open(ctx, "not-a-valid-dsn", nil); err == nil {
		t.Fatal("expected Open to report an error for a malformed DSN")
	}
}
