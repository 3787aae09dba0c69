package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	texJobName  = "document"
	logTailSize = 2000
)

// renderTeX compiles a LaTeX source with pdflatex in a temp dir. A failed
// compile surfaces as a RenderError carrying the end of the compiler log.
func (r *Renderer) renderTeX(ctx context.Context, source string) ([]byte, error) {
	if err := r.checkLatex(); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "tutordesk-tex-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	texPath := filepath.Join(dir, texJobName+".tex")
	if err := os.WriteFile(texPath, []byte(source), 0o600); err != nil {
		return nil, fmt.Errorf("write tex source: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.cfg.LatexBin,
		"-interaction=nonstopmode",
		"-halt-on-error",
		"-output-directory", dir,
		texPath,
	)
	cmd.Dir = dir

	if out, err := cmd.CombinedOutput(); err != nil {
		r.log.Debug().Err(err).Str("dir", dir).Msg("pdflatex failed")
		return nil, &RenderError{LogTail: r.logTail(dir, out), Err: err}
	}

	pdf, err := os.ReadFile(filepath.Join(dir, texJobName+".pdf"))
	if err != nil {
		// Zero exit but no output file still counts as a compile failure.
		return nil, &RenderError{LogTail: r.logTail(dir, nil), Err: fmt.Errorf("no output file: %w", err)}
	}
	return pdf, nil
}

// logTail returns the end of the pdflatex log, falling back to the captured
// process output when the log file is absent.
func (r *Renderer) logTail(dir string, fallback []byte) string {
	data, err := os.ReadFile(filepath.Join(dir, texJobName+".log"))
	if err != nil {
		data = fallback
	}
	text := strings.TrimSpace(string(data))
	if len(text) > logTailSize {
		text = text[len(text)-logTailSize:]
	}
	return text
}
