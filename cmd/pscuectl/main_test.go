package main

import (
	"testing"
)

func TestJoinArgs(t *testing.T) {
	got := joinArgs([]string{"git", "commit", "-m"})
	if got != "git commit -m" {
		t.Fatalf("expected 'git commit -m', got '%s'", got)
	}
}

func TestJoinArgsSingle(t *testing.T) {
	got := joinArgs([]string{"status"})
	if got != "status" {
		t.Fatalf("expected 'status', got '%s'", got)
	}
}
