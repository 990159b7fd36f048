package cli

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"os/exec"
	"strings"

	"github.com/disintegration/imaging"
)

// Terminal preview for the equalized image and its histograms.
//
// Backends, in detection order:
//   - iTerm2-style OSC 1337 inline images (iTerm2, WezTerm, Warp, VSCode, ...)
//   - the kitty graphics protocol (kitty, ghostty, Konsole)
//   - chafa, when found on PATH, for everything else
//
// PREVIEW_BACKEND=kitty|inline|chafa forces a backend and PREVIEW_DEBUG=1
// traces decisions on stderr.

// character cell assumptions used to size previews
const (
	charW   = 8
	charH   = 16
	minCols = 6
	minRows = 3
	maxCols = 80
	maxRows = 40
)

// Previewer writes inline images to a terminal.
type Previewer struct {
	Out   io.Writer
	Debug io.Writer // nil disables tracing
}

// NewPreviewer returns a Previewer writing to out, tracing to stderr when
// PREVIEW_DEBUG is set.
func NewPreviewer(out io.Writer) *Previewer {
	p := &Previewer{Out: out}
	if d := os.Getenv("PREVIEW_DEBUG"); d == "1" || d == "true" {
		p.Debug = os.Stderr
	}
	return p
}

func (p *Previewer) debugf(format string, args ...interface{}) {
	if p.Debug != nil {
		fmt.Fprintf(p.Debug, "lutimg-preview: "+format+"\n", args...)
	}
}

func isKitty() bool {
	if os.Getenv("KITTY_WINDOW_ID") != "" || os.Getenv("KONSOLE_VERSION") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "kitty") || strings.Contains(term, "ghostty")
}

func isInlineImageCapable() bool {
	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "Tabby", "Bobcat":
		return true
	}
	if os.Getenv("ITERM_SESSION_ID") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "wezterm") || strings.Contains(term, "warp") || strings.Contains(term, "vscode")
}

func hasChafa() bool {
	if os.Getenv("NO_CHAFA") == "1" {
		return false
	}
	_, err := exec.LookPath("chafa")
	return err == nil
}

// PreviewSupported reports whether any backend is likely to work.
func PreviewSupported() bool {
	switch strings.ToLower(os.Getenv("PREVIEW_BACKEND")) {
	case "kitty", "inline", "iterm", "wezterm":
		return true
	}
	return isKitty() || isInlineImageCapable() || hasChafa()
}

// PreviewSize is the placement of a preview in character cells and the
// pixel size the image is scaled down to.
type PreviewSize struct {
	Cols        int
	Rows        int
	PixelWidth  int
	PixelHeight int
}

// computePreviewSize fits an image of w x h pixels into the preview area
// without scaling up.
func computePreviewSize(w, h int) PreviewSize {
	if w <= 0 || h <= 0 {
		return PreviewSize{Cols: minCols, Rows: minRows, PixelWidth: minCols * charW, PixelHeight: minRows * charH}
	}
	scale := math.Min(1.0, math.Min(float64(maxCols*charW)/float64(w), float64(maxRows*charH)/float64(h)))
	targetW := int(math.Round(float64(w) * scale))
	targetH := int(math.Round(float64(h) * scale))
	cols := min(max(int(math.Round(float64(targetW)/charW)), minCols), maxCols)
	rows := min(max(int(math.Round(float64(targetH)/charH)), minRows), maxRows)
	return PreviewSize{
		Cols:        cols,
		Rows:        rows,
		PixelWidth:  max(targetW, 1),
		PixelHeight: max(targetH, 1),
	}
}

// Show encodes img as PNG, scaled to the preview area, and sends it with
// the first backend that works.
func (p *Previewer) Show(img image.Image) error {
	if img == nil {
		return fmt.Errorf("nil image")
	}
	b := img.Bounds()
	size := computePreviewSize(b.Dx(), b.Dy())
	if size.PixelWidth < b.Dx() || size.PixelHeight < b.Dy() {
		img = imaging.Fit(img, size.PixelWidth, size.PixelHeight, imaging.Box)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return fmt.Errorf("png encode failed: %w", err)
	}
	return p.send(buf.Bytes(), size)
}

func (p *Previewer) send(blob []byte, size PreviewSize) error {
	switch v := strings.ToLower(os.Getenv("PREVIEW_BACKEND")); v {
	case "":
	case "kitty":
		return p.sendKitty(blob, size)
	case "inline", "iterm", "wezterm":
		return p.sendInline(blob, size)
	case "chafa":
		return p.sendChafa(blob, size)
	default:
		p.debugf("unknown PREVIEW_BACKEND value: %s", v)
	}

	if isInlineImageCapable() {
		p.debugf("attempting inline protocol")
		return p.sendInline(blob, size)
	}
	if isKitty() {
		p.debugf("attempting kitty protocol")
		return p.sendKitty(blob, size)
	}
	if hasChafa() {
		p.debugf("attempting chafa")
		return p.sendChafa(blob, size)
	}
	return fmt.Errorf("no preview protocol matched")
}

// postImageNewlines keeps following text directly under the image.
func postImageNewlines(rows int) int {
	switch {
	case rows <= 2:
		return 1
	case rows <= 6:
		return 2
	case rows <= 20:
		return 3
	}
	return 4
}

func (p *Previewer) newlines(rows int) error {
	_, err := io.WriteString(p.Out, strings.Repeat("\n", postImageNewlines(rows)))
	return err
}

// sendKitty transmits PNG data with the kitty graphics protocol in base64
// chunks of at most 4096 bytes. The first chunk carries the placement.
func (p *Previewer) sendKitty(data []byte, size PreviewSize) error {
	enc := base64.StdEncoding.EncodeToString(data)
	const chunkSize = 4096
	for pos := 0; pos < len(enc); pos += chunkSize {
		end := min(pos+chunkSize, len(enc))
		more := "0"
		if end < len(enc) {
			more = "1"
		}
		var seq string
		if pos == 0 {
			// a=T transmit+display, f=100 PNG, t=d direct payload, q=2 quiet
			seq = fmt.Sprintf("\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%s;%s\x1b\\", size.Cols, size.Rows, more, enc[pos:end])
		} else {
			seq = "\x1b_Gm=" + more + ";" + enc[pos:end] + "\x1b\\"
		}
		if _, err := io.WriteString(p.Out, seq); err != nil {
			return err
		}
	}
	p.debugf("kitty: sent %d bytes as %dx%d cells", len(data), size.Cols, size.Rows)
	return p.newlines(size.Rows)
}

// sendInline emits the iTerm2 OSC 1337 inline file sequence.
func (p *Previewer) sendInline(data []byte, size PreviewSize) error {
	meta := fmt.Sprintf("size=%d;width=%dpx;height=%dpx;", len(data), size.PixelWidth, size.PixelHeight)
	seq := "\x1b]1337;File=name=preview.png;inline=1;" + meta + ":" + base64.StdEncoding.EncodeToString(data) + "\a"
	if _, err := io.WriteString(p.Out, seq); err != nil {
		return err
	}
	p.debugf("inline: sent %d bytes", len(data))
	return p.newlines(0)
}

// sendChafa pipes the PNG through chafa for terminals without an image
// protocol.
func (p *Previewer) sendChafa(data []byte, size PreviewSize) error {
	if _, err := exec.LookPath("chafa"); err != nil {
		return fmt.Errorf("chafa not found in PATH: %w", err)
	}
	cmd := exec.Command("chafa", "--fill=block", "--symbols=block", "-s", fmt.Sprintf("%dx%d", size.Cols, size.Rows), "-")
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = p.Out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("chafa failed: %w", err)
	}
	return p.newlines(size.Rows)
}
