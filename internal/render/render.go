// Package render turns generated document text into PDF bytes: plain text
// through the built-in PDF writer, LaTeX through a pdflatex subprocess.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/tutordesk/internal/docgen"
)

// ErrLatexNotFound means the configured pdflatex binary is not on PATH.
// This is a deployment problem, not a document problem.
var ErrLatexNotFound = errors.New("pdflatex binary not found")

// RenderError reports a failed LaTeX compilation. LogTail carries the end
// of the compiler log so the teacher-facing error can show what went wrong.
type RenderError struct {
	LogTail string
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("latex render failed: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Config controls rendering.
type Config struct {
	// LatexBin is the pdflatex binary name or path.
	LatexBin string

	// FontPath points to a Unicode TTF used for plain-text rendering.
	// The font is not shipped with the binary; non-Latin deployments
	// must install one (e.g. DejaVu Sans). Empty or missing falls back
	// to the built-in Latin font.
	FontPath string

	// Timeout bounds one pdflatex run.
	Timeout time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		LatexBin: "pdflatex",
		Timeout:  60 * time.Second,
	}
}

// Renderer renders documents to PDF.
type Renderer struct {
	cfg Config
	log zerolog.Logger
}

// New creates a Renderer.
func New(cfg Config, log zerolog.Logger) *Renderer {
	if cfg.LatexBin == "" {
		cfg.LatexBin = DefaultConfig().LatexBin
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.FontPath != "" {
		if _, err := os.Stat(cfg.FontPath); err != nil {
			log.Warn().
				Str("font_path", cfg.FontPath).
				Msg("unicode font not found, falling back to built-in Latin font; non-Latin text will not render correctly")
			cfg.FontPath = ""
		}
	}
	return &Renderer{cfg: cfg, log: log}
}

// Render produces the PDF bytes for a document.
func (r *Renderer) Render(ctx context.Context, doc *docgen.Document) ([]byte, error) {
	switch doc.Format {
	case docgen.FormatTeX:
		return r.renderTeX(ctx, doc.Text)
	default:
		return r.renderText(doc.Text)
	}
}

// checkLatex verifies the configured binary exists before any document work.
func (r *Renderer) checkLatex() error {
	if _, err := exec.LookPath(r.cfg.LatexBin); err != nil {
		return fmt.Errorf("%w: %q", ErrLatexNotFound, r.cfg.LatexBin)
	}
	return nil
}
