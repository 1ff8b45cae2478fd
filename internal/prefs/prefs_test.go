package prefs

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestFallbacks(t *testing.T) {
	p := New()
	test.That(t, p.Int("calibration.0.N", -1), test.ShouldEqual, -1)
	test.That(t, p.Double("calibration.0.0.mx", 2.5), test.ShouldEqual, 2.5)
	test.That(t, p.String("name", "x"), test.ShouldEqual, "x")

	p.PutString("calibration.0.N", "seven")
	test.That(t, p.Int("calibration.0.N", -1), test.ShouldEqual, -1)
	test.That(t, p.Double("calibration.0.N", 1), test.ShouldEqual, 1)

	test.That(t, p.Flush(), test.ShouldBeNil)
	test.That(t, p.Path(), test.ShouldEqual, "")
}

func TestDoublesAreExact(t *testing.T) {
	p := New()
	for i, v := range []float64{0.1, -1.0 / 3.0, math.Pi, 1e-300, math.MaxFloat64, math.Inf(-1)} {
		key := fmt.Sprintf("d.%d", i)
		p.PutDouble(key, v)
		test.That(t, math.Float64bits(p.Double(key, 0)), test.ShouldEqual, math.Float64bits(v))
	}
	p.PutInt("n", 42)
	test.That(t, p.Int("n", 0), test.ShouldEqual, 42)
}

func TestFlushAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", prefsFile)

	p, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Keys(""), test.ShouldBeEmpty)

	p.PutInt("calibration.1.N", 1)
	p.PutDouble("calibration.1.0.px", -0.123456789012345)
	p.PutString("other", "value")
	test.That(t, p.Flush(), test.ShouldBeNil)

	entries, err := os.ReadDir(filepath.Dir(path))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, entries, test.ShouldHaveLength, 1)

	loaded, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loaded.Int("calibration.1.N", 0), test.ShouldEqual, 1)
	test.That(t, loaded.Double("calibration.1.0.px", 0), test.ShouldEqual, -0.123456789012345)
	test.That(t, loaded.Keys("calibration"), test.ShouldResemble, []string{"calibration.1.0.px", "calibration.1.N"})
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	test.That(t, os.WriteFile(path, []byte("{not json"), 0o644), test.ShouldBeNil)

	p, err := Load(path)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, p, test.ShouldNotBeNil)
	test.That(t, p.Keys(""), test.ShouldBeEmpty)
	test.That(t, p.Path(), test.ShouldEqual, path)
}

func TestRemove(t *testing.T) {
	p := New()
	p.PutInt("calibration.0.N", 2)
	p.PutDouble("calibration.0.0.mx", 1)
	p.PutInt("calibration.1.N", 0)
	p.PutInt("calibration.10.N", 0)

	p.Remove("calibration.1")
	test.That(t, p.Keys(""), test.ShouldResemble, []string{"calibration.0.0.mx", "calibration.0.N", "calibration.10.N"})

	p.Remove("calibration")
	test.That(t, p.Keys(""), test.ShouldBeEmpty)
}
