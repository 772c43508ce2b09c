// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"
	"time"
)

func TestRenderCoalescer_NothingPending(t *testing.T) {
	rc := NewRenderCoalescer()
	if rc.TakeIfDue() {
		t.Error("Empty coalescer must not request a render")
	}
}

func TestRenderCoalescer_BatchSizeForcesFlush(t *testing.T) {
	rc := NewRenderCoalescer()

	// Under the batch threshold immediately after a flush: not due yet.
	rc.Note()
	if rc.TakeIfDue() {
		t.Error("Single note right after flush must wait for the interval")
	}

	// Hitting the batch size flushes regardless of timing.
	for i := 0; i < 20; i++ {
		rc.Note()
	}
	if !rc.TakeIfDue() {
		t.Error("Batch threshold must force a flush")
	}
	if rc.Pending() != 0 {
		t.Errorf("Flush must clear pending notes, got %d", rc.Pending())
	}
}

func TestRenderCoalescer_IntervalElapsed(t *testing.T) {
	rc := NewRenderCoalescer()
	rc.minInterval = 5 * time.Millisecond

	rc.Note()
	time.Sleep(10 * time.Millisecond)

	if !rc.TakeIfDue() {
		t.Error("Elapsed interval with pending notes must flush")
	}
}

func TestRenderCoalescer_ForceTake(t *testing.T) {
	rc := NewRenderCoalescer()

	rc.Note()
	if !rc.ForceTake() {
		t.Error("ForceTake must report pending changes")
	}
	if rc.ForceTake() {
		t.Error("Second ForceTake must report nothing pending")
	}
}
