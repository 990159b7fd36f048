package cli

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Fepozopo/lutimg/pkg/stdimg"
)

// isolate keeps the developer's .env and LUTIMG_* settings out of the run.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testChdir(t, dir)
	for _, k := range []string{"LUTIMG_COLOR", "LUTIMG_PLOT_DIR", "LUTIMG_PREVIEW", "LUTIMG_UPDATE_REPO"} {
		t.Setenv(k, "")
	}
	return dir
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

// stepGray is left half lo, right half hi.
func stepGray(w, h int, lo, hi uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := lo
			if x >= w/2 {
				v = hi
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(""), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestEqualizeWritesOutput(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	plots := filepath.Join(dir, "plots")
	writePNG(t, in, stepGray(8, 4, 50, 150))

	code, _, stderr := runCLI(in, out, "--plot-dir", plots)
	if code != exitOK {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}
	img, err := stdimg.Load(out, true)
	if err != nil {
		t.Fatalf("load output: %v", err)
	}
	if got := img.At(0, 0, 0); got != 127 {
		t.Fatalf("left half = %d, want 127", got)
	}
	if got := img.At(0, 7, 0); got != 255 {
		t.Fatalf("right half = %d, want 255", got)
	}
	for _, name := range []string{"input_histogram.png", "output_histogram.png"} {
		if _, err := os.Stat(filepath.Join(plots, name)); err != nil {
			t.Fatalf("missing plot %s: %v", name, err)
		}
	}
}

func TestWrongArgumentCountIsUsageError(t *testing.T) {
	isolate(t)
	for _, args := range [][]string{{}, {"only.png"}, {"a.png", "b.png", "c.png"}} {
		code, _, stderr := runCLI(args...)
		if code != exitUsage {
			t.Fatalf("args %v: exit %d, want %d", args, code, exitUsage)
		}
		if !strings.HasPrefix(stderr, "error: ") {
			t.Fatalf("args %v: stderr %q", args, stderr)
		}
	}
	if code, _, _ := runCLI("--no-such-flag", "a.png", "b.png"); code != exitUsage {
		t.Fatalf("unknown flag: exit %d, want %d", code, exitUsage)
	}
}

func TestSixteenBitInputFails(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "deep.png")
	out := filepath.Join(dir, "out.png")
	src := image.NewGray16(image.Rect(0, 0, 4, 4))
	src.SetGray16(1, 1, color.Gray16{Y: 0x1234})
	writePNG(t, in, src)

	code, _, stderr := runCLI(in, out)
	if code != exitError {
		t.Fatalf("exit %d, want %d", code, exitError)
	}
	if !strings.Contains(stderr, "unsupported bit depth") {
		t.Fatalf("stderr %q", stderr)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("output should not exist, stat err %v", err)
	}
}

func TestMissingInputFails(t *testing.T) {
	dir := isolate(t)
	code, _, stderr := runCLI(filepath.Join(dir, "nope.png"), filepath.Join(dir, "out.png"))
	if code != exitError || !strings.HasPrefix(stderr, "error: ") {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}
}

func TestApplyCommand(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	writePNG(t, in, stepGray(4, 4, 100, 250))

	code, _, stderr := runCLI("apply", "brightness", in, out, "20")
	if code != exitOK {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}
	img, err := stdimg.Load(out, true)
	if err != nil {
		t.Fatalf("load output: %v", err)
	}
	if img.At(0, 0, 0) != 120 || img.At(0, 3, 0) != 255 {
		t.Fatalf("unexpected samples %d %d", img.At(0, 0, 0), img.At(0, 3, 0))
	}

	if code, _, _ := runCLI("apply", "blur", in, out); code != exitUsage {
		t.Fatalf("unknown transform: exit %d, want %d", code, exitUsage)
	}
	if code, _, stderr := runCLI("apply", "exposure", in, out, "--", "-1"); code != exitError || !strings.Contains(stderr, "invalid argument") {
		t.Fatalf("negative gamma: exit %d, stderr %q", code, stderr)
	}
	if code, _, stderr := runCLI("apply", "contrast", in, out, "inf"); code != exitError || !strings.Contains(stderr, "invalid argument") {
		t.Fatalf("infinite contrast: exit %d, stderr %q", code, stderr)
	}
	if code, _, _ := runCLI("apply", "brightness", in); code != exitUsage {
		t.Fatalf("short apply: exit %d, want %d", code, exitUsage)
	}
}

func TestHistogramCommand(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "hist.png")
	writePNG(t, in, stepGray(4, 4, 10, 200))

	code, _, stderr := runCLI("histogram", in, out)
	if code != exitOK {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open plot: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode plot: %v", err)
	}
	if cfg.Width != 512 || cfg.Height != 160 {
		t.Fatalf("plot size %dx%d", cfg.Width, cfg.Height)
	}
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	code, stdout, _ := runCLI("version")
	if code != exitOK || stdout != "lutimg "+Version+"\n" {
		t.Fatalf("exit %d, stdout %q", code, stdout)
	}
}

// testChdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func testChdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore cwd %s: %v", old, err)
		}
	})
}
