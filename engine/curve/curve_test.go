package curve

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

type fovSink struct {
	fov   float32
	calls int
}

func (f *fovSink) SetTargetFov(fov float32) {
	f.fov = fov
	f.calls++
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestSampleDefaultScript(t *testing.T) {
	s, err := NewSampler([]byte(DefaultScript))
	if err != nil {
		t.Fatalf("compile default script: %v", err)
	}

	cases := []struct {
		name     string
		t        float32
		distance float32
		want     float32
	}{
		{"far_at_start", 0, 20, 35},
		{"close_at_start", 0, 0, 45},
		{"half_close", 0, 10, 40},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := s.Sample(c.t, c.distance, 0)
			if err != nil {
				t.Fatalf("sample: %v", err)
			}
			if !near(got, c.want) {
				t.Fatalf("fov = %v, want %v", got, c.want)
			}
		})
	}
}

func TestSampleErrors(t *testing.T) {
	cases := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"integer_fov", "fov := 50", nil},
		{"uses_speed", "fov := 30 + speed", nil},
		{"missing_fov", "x := 1", ErrNoFov},
		{"string_fov", `fov := "wide"`, ErrNoFov},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, err := NewSampler([]byte(c.src))
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			_, err = s.Sample(0, 0, 0)
			if !errors.Is(err, c.wantErr) {
				t.Fatalf("err = %v, want %v", err, c.wantErr)
			}
		})
	}
}

func TestCompileError(t *testing.T) {
	if _, err := NewSampler([]byte("fov := (")); err == nil {
		t.Fatalf("expected a compile error")
	}
}

func TestRuntimeError(t *testing.T) {
	s, err := NewSampler([]byte("fov := 1 / int(distance)"))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := s.Sample(0, 0, 0); err == nil || errors.Is(err, ErrNoFov) {
		t.Fatalf("err = %v, want a runtime error", err)
	}
}

func TestLoadSampler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fov.tengo")
	if err := os.WriteFile(path, []byte("fov := 42.5"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadSampler(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got, err := s.Sample(0, 0, 0)
	if err != nil || got != 42.5 {
		t.Fatalf("sample = %v, %v; want 42.5", got, err)
	}

	if _, err := LoadSampler(filepath.Join(t.TempDir(), "missing.tengo")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestDriverFeedsTarget(t *testing.T) {
	s, err := NewSampler([]byte("fov := 20 + t"))
	if err != nil {
		t.Fatal(err)
	}
	sink := &fovSink{}
	d := NewDriver(s, sink)

	d.Update(0.5, 0, 0)
	d.Update(0.5, 0, 0)
	if !near(sink.fov, 21) || sink.calls != 2 {
		t.Fatalf("fov = %v after %d calls, want 21 after 2", sink.fov, sink.calls)
	}

	d.Update(float32(math.NaN()), 0, 0)
	if !near(d.Elapsed(), 1) {
		t.Fatalf("elapsed = %v, want 1", d.Elapsed())
	}

	d.Reset()
	d.Update(0, 0, 0)
	if !near(sink.fov, 20) {
		t.Fatalf("fov after reset = %v, want 20", sink.fov)
	}
}

func TestDriverKeepsFovOnFailure(t *testing.T) {
	s, err := NewSampler([]byte("x := t"))
	if err != nil {
		t.Fatal(err)
	}
	sink := &fovSink{fov: 33}
	d := NewDriver(s, sink)
	d.Update(1.0/60, 0, 0)
	d.Update(1.0/60, 0, 0)
	if sink.calls != 0 || sink.fov != 33 {
		t.Fatalf("failing curve changed the target fov to %v", sink.fov)
	}
}

func TestDriverSurvivesScriptFault(t *testing.T) {
	s, err := NewSampler([]byte("fov := 40 + 10 / int(distance)"))
	if err != nil {
		t.Fatal(err)
	}
	sink := &fovSink{}
	d := NewDriver(s, sink)

	d.Update(1.0/60, 2, 0)
	if !near(sink.fov, 45) {
		t.Fatalf("fov = %v, want 45", sink.fov)
	}
	d.Update(1.0/60, 0, 0)
	if !near(sink.fov, 45) || sink.calls != 1 {
		t.Fatalf("division by zero changed the fov to %v", sink.fov)
	}
	d.Update(1.0/60, 5, 0)
	if !near(sink.fov, 42) || sink.calls != 2 {
		t.Fatalf("fov = %v after recovering, want 42", sink.fov)
	}
}
