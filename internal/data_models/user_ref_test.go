package dto

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUserRef_AcceptsIDOrObject(t *testing.T) {
	var req EscalateTaskRequest

	if err := json.Unmarshal([]byte(`{"targetUserId":"u2","reason":"overload"}`), &req); err != nil {
		t.Fatalf("unmarshal id form: %v", err)
	}
	if req.TargetUserID.ID != "u2" {
		t.Errorf("expected u2, got %q", req.TargetUserID.ID)
	}

	if err := json.Unmarshal([]byte(`{"targetUserId":{"id":"u3","name":"Carol"}}`), &req); err != nil {
		t.Fatalf("unmarshal object form: %v", err)
	}
	if req.TargetUserID.ID != "u3" {
		t.Errorf("expected u3, got %q", req.TargetUserID.ID)
	}

	if err := json.Unmarshal([]byte(`{"targetUserId":42}`), &req); err == nil {
		t.Error("expected error for numeric reference")
	}
}

func TestDate_Formats(t *testing.T) {
	var req CreateTaskRequest
	if err := json.Unmarshal([]byte(`{"date":"2024-03-15"}`), &req); err != nil {
		t.Fatalf("unmarshal date: %v", err)
	}
	if !req.Date.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %s", req.Date)
	}

	if err := json.Unmarshal([]byte(`{"date":"2024-03-15T22:00:00-05:00"}`), &req); err != nil {
		t.Fatalf("unmarshal timestamp: %v", err)
	}
	if req.Date.Day() != 16 {
		t.Errorf("expected timestamp normalized to UTC, got %s", req.Date)
	}

	if err := json.Unmarshal([]byte(`{"date":"15/03/2024"}`), &req); err == nil {
		t.Error("expected error for unsupported layout")
	}
}
