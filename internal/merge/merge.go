package merge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfcheck/internal/filetype"
	"github.com/local/pdfcheck/internal/metrics"
)

// ErrNoFiles is returned when Files is called without inputs.
var ErrNoFiles = errors.New("no files to merge")

// InputPages records the page count contributed by one input.
type InputPages struct {
	Path  string
	Pages int
}

// Result summarizes a merge.
type Result struct {
	Output string
	Inputs []InputPages
	Total  int
}

// Files merges inputs, in order, into output.
func Files(ctx context.Context, inputs []string, output string) (Result, error) {
	if len(inputs) == 0 {
		return Result{}, ErrNoFiles
	}
	if err := filetype.ValidateInputs(inputs); err != nil {
		return Result{}, err
	}
	if err := checkOutput(inputs, output); err != nil {
		return Result{}, err
	}

	res := Result{Output: output}
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if err := filetype.RequirePDF(in); err != nil {
			return Result{}, err
		}
		n, err := countPages(in)
		if err != nil {
			return Result{}, err
		}
		res.Inputs = append(res.Inputs, InputPages{Path: in, Pages: n})
		res.Total += n
	}

	if err := write(inputs, output); err != nil {
		return Result{}, fmt.Errorf("failed to save merged PDF: %w", err)
	}
	metrics.AddMerged(res.Total)
	log.Info().Int("inputs", len(inputs)).Int("pages", res.Total).Str("output", output).Msg("merged pdfs")
	return res, nil
}

// checkOutput rejects an output path that names one of the inputs.
func checkOutput(inputs []string, output string) error {
	outAbs, err := filepath.Abs(output)
	if err != nil {
		return err
	}
	outInfo, statErr := os.Stat(output)
	for _, in := range inputs {
		inAbs, err := filepath.Abs(in)
		if err != nil {
			return err
		}
		same := inAbs == outAbs
		if !same && statErr == nil {
			if inInfo, err := os.Stat(in); err == nil {
				same = os.SameFile(inInfo, outInfo)
			}
		}
		if same {
			return fmt.Errorf("Output file cannot be one of the inputs: %s", output)
		}
	}
	return nil
}

// write merges into a temp file next to output and renames it into place, so
// a failed merge leaves any existing output untouched.
func write(inputs []string, output string) (err error) {
	f, err := os.CreateTemp(filepath.Dir(output), ".pdfcheck-merge-*.pdf")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	conf := model.NewDefaultConfiguration()
	if err := api.Merge("", inputs, f, conf, false); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, output)
}

// countPages returns the page count of path, rejecting empty documents.
func countPages(path string) (int, error) {
	name := filepath.Base(path)
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to load '%s': %w. %s", name, err, loadHint(err))
	}
	if n == 0 {
		return 0, fmt.Errorf("PDF '%s' has no pages", name)
	}
	return n, nil
}

func loadHint(err error) string {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "encrypt") || strings.Contains(msg, "password") {
		return "This PDF may be password-protected."
	}
	return "The file may be corrupted."
}
