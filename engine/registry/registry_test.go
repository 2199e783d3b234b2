package registry

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
)

func TestSetActiveClear(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	a := rig.NewRig()
	b := rig.NewRig()

	if Active() != nil {
		t.Fatalf("registry should start empty")
	}
	if prev := Set(a); prev != nil {
		t.Fatalf("prev = %v, want nil", prev)
	}
	if Active() != a {
		t.Fatalf("active rig not published")
	}
	if prev := Set(b); prev != a {
		t.Fatalf("Set did not return the replaced rig")
	}

	if Clear(a) {
		t.Fatalf("clearing a replaced rig must not unregister its successor")
	}
	if Active() != b {
		t.Fatalf("active = %v, want b", Active())
	}
	if !Clear(b) || Active() != nil {
		t.Fatalf("Clear(b) should empty the registry")
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	rigs := []rig.Rig{rig.NewRig(), rig.NewRig(), rig.NewRig()}
	var wg sync.WaitGroup
	for i := range 30 {
		wg.Add(1)
		go func(r rig.Rig) {
			defer wg.Done()
			Set(r)
			_ = Active()
			Clear(r)
		}(rigs[i%len(rigs)])
	}
	wg.Wait()

	if r := Active(); r != nil {
		found := false
		for _, c := range rigs {
			found = found || c == r
		}
		if !found {
			t.Fatalf("registry holds an unknown rig")
		}
	}
}
