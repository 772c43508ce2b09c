// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

func TestNewUserMessage(t *testing.T) {
	atts := []Attachment{{URL: "https://files/x.png", Name: "x.png", ContentType: "image/png"}}
	msg := NewUserMessage("hello", atts)

	if msg.Role != RoleUser {
		t.Errorf("Expected role user, got %s", msg.Role)
	}
	if msg.Content != "hello" {
		t.Errorf("Expected content 'hello', got '%s'", msg.Content)
	}
	if len(msg.Attachments) != 1 {
		t.Errorf("Expected 1 attachment, got %d", len(msg.Attachments))
	}
	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("Expected msg_ prefix, got '%s'", msg.ID)
	}
}

func TestMessageIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		msg := NewMessage(RoleUser, "x")
		if seen[msg.ID] {
			t.Fatalf("Duplicate message ID: %s", msg.ID)
		}
		seen[msg.ID] = true
	}
}

func TestAppendDelta_Order(t *testing.T) {
	msg := NewAssistantMessage()

	deltas := []string{"Hel", "lo ", " wor", "ld"}
	for _, d := range deltas {
		msg.AppendDelta(d)
	}

	// Content equals the ordered concatenation of delta payloads
	if msg.DisplayContent() != "Hello  world" {
		t.Errorf("Expected 'Hello  world', got '%s'", msg.DisplayContent())
	}

	msg.FinalizeStream()
	if msg.IsStreaming {
		t.Error("Expected streaming to be finished")
	}
	if msg.Content != "Hello  world" {
		t.Errorf("Expected finalized content 'Hello  world', got '%s'", msg.Content)
	}
}

func TestAppendDelta_IgnoredAfterFinalize(t *testing.T) {
	msg := NewAssistantMessage()
	msg.AppendDelta("done")
	msg.FinalizeStream()

	msg.AppendDelta(" extra")
	if msg.Content != "done" {
		t.Errorf("Expected 'done', got '%s'", msg.Content)
	}
}

func TestMessageIsEmpty(t *testing.T) {
	msg := NewAssistantMessage()
	if !msg.IsEmpty() {
		t.Error("New assistant message should be empty")
	}
	msg.AppendDelta("x")
	if msg.IsEmpty() {
		t.Error("Message with streamed content should not be empty")
	}
}

func TestPreview(t *testing.T) {
	msg := NewMessage(RoleUser, "first line of a fairly long message\nsecond line")
	preview := msg.Preview(20)
	if preview != "first line of a f..." {
		t.Errorf("Unexpected preview: '%s'", preview)
	}
}

func TestRoleDisplayName(t *testing.T) {
	tests := []struct {
		role     Role
		expected string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Assistant"},
		{RoleSystem, "System"},
		{Role("other"), "other"},
	}

	for _, tt := range tests {
		if got := tt.role.DisplayName(); got != tt.expected {
			t.Errorf("DisplayName(%s): expected %s, got %s", tt.role, tt.expected, got)
		}
	}
}
