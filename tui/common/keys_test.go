package common

import "testing"

func TestDefaultKeyMap_HasCriticalBindings(t *testing.T) {
	km := DefaultKeyMap()
	if len(km.ToggleHints.Keys()) == 0 || km.ToggleHints.Keys()[0] != "?" {
		t.Fatalf("expected ? key binding for hints")
	}
	if keys := km.Quit.Keys(); len(keys) != 2 || keys[1] != "ctrl+c" {
		t.Fatalf("expected ctrl+c quit binding, got %v", keys)
	}
	if len(km.ToggleBoosts.Keys()) == 0 || km.ToggleBoosts.Keys()[0] != "b" {
		t.Fatalf("expected b to toggle boosts")
	}
}

func TestShortHelp_NoDuplicateKeys(t *testing.T) {
	seen := map[string]bool{}
	for _, b := range DefaultKeyMap().ShortHelp() {
		for _, k := range b.Keys() {
			if seen[k] {
				t.Fatalf("key %q bound twice", k)
			}
			seen[k] = true
		}
	}
}
