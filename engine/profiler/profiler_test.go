package profiler

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
)

type fakeRig struct {
	mode  rig.Mode
	proj  rig.Projection
	focus bool
}

func (f fakeRig) Mode() rig.Mode             { return f.mode }
func (f fakeRig) Fov() float32               { return 62.5 }
func (f fakeRig) Projection() rig.Projection { return f.proj }
func (f fakeRig) OrthoSize() float32         { return 12 }
func (f fakeRig) Focusing() bool             { return f.focus }

func TestTickReportsRig(t *testing.T) {
	cases := []struct {
		name string
		rig  RigStats
		want []string
	}{
		{"no_rig", nil, []string{"Mode: none"}},
		{"perspective", fakeRig{mode: rig.ModeChase}, []string{"Mode: chase", "FOV: 62.5"}},
		{"orthographic", fakeRig{mode: rig.ModeTop, proj: rig.ProjectionOrthographic}, []string{"Mode: top", "Ortho: 12.0"}},
		{"focusing", fakeRig{mode: rig.ModeHood, focus: true}, []string{"Mode: hood", "(focusing)"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var logged []string
			p := NewProfiler(
				WithInterval(time.Millisecond),
				WithRig(c.rig),
				WithLogf(func(format string, args ...any) {
					logged = append(logged, fmt.Sprintf(format, args...))
				}),
			)
			time.Sleep(2 * time.Millisecond)
			if !p.Tick() {
				t.Fatalf("Tick should report once the interval elapsed")
			}
			if len(logged) != 1 || !strings.HasPrefix(logged[0], "[Profiler] FPS: ") {
				t.Fatalf("logged = %q", logged)
			}
			for _, w := range c.want {
				if !strings.Contains(p.LastLine(), w) {
					t.Fatalf("line %q missing %q", p.LastLine(), w)
				}
			}
		})
	}
}

func TestTickWaitsForInterval(t *testing.T) {
	calls := 0
	p := NewProfiler(WithInterval(time.Hour), WithLogf(func(string, ...any) { calls++ }))
	for range 10 {
		if p.Tick() {
			t.Fatalf("Tick reported before the interval elapsed")
		}
	}
	if calls != 0 {
		t.Fatalf("logged %d times, want 0", calls)
	}
}
