package workshop

import (
	"strings"
	"testing"
)

// TestPendingBuildKey tests that the pending index is scoped by player and character
func TestPendingBuildKey(t *testing.T) {
	key := PendingBuildKey("default", "p1", "knight")

	expected := "kitbash:default:pending:p1:knight"
	if key != expected {
		t.Errorf("PendingBuildKey() = %q, expected %q", key, expected)
	}

	if PendingBuildKey("default", "p1", "knight") == PendingBuildKey("default", "p2", "knight") {
		t.Error("pending keys for different players must differ")
	}
}

// TestBuildKeyPrefix tests that build keys share the scan prefix
func TestBuildKeyPrefix(t *testing.T) {
	key := BuildKey("default", "abc")
	if !strings.HasPrefix(key, BuildKeyPrefix("default")) {
		t.Errorf("BuildKey() = %q does not start with %q", key, BuildKeyPrefix("default"))
	}
}

// TestInstanceIsolation tests that keys and channels differ per instance
func TestInstanceIsolation(t *testing.T) {
	pairs := [][2]string{
		{PlayerKey("a", "p1"), PlayerKey("b", "p1")},
		{PlayerUnlockedKey("a", "p1"), PlayerUnlockedKey("b", "p1")},
		{CharacterKey("a", "knight"), CharacterKey("b", "knight")},
		{ValidBuildsKey("a", "p1", "knight"), ValidBuildsKey("b", "p1", "knight")},
		{BuildEventsChannel("a"), BuildEventsChannel("b")},
	}

	for _, p := range pairs {
		if p[0] == p[1] {
			t.Errorf("expected instance-scoped names to differ, both were %q", p[0])
		}
		if !strings.HasPrefix(p[0], "kitbash:a:") {
			t.Errorf("%q should start with 'kitbash:a:'", p[0])
		}
	}
}
