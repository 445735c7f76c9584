package filetype

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

const pdfMIME = "application/pdf"

// FileTypeInfo contains detected file type information
type FileTypeInfo struct {
	MIMEType    string
	Extension   string
	IsPDF       bool
	Description string
}

// Detect detects the actual file type using magic bytes, not filename
func Detect(filePath string) (*FileTypeInfo, error) {
	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}

	log.Debug().Str("mime", mtype.String()).Str("ext", mtype.Extension()).Str("file", filePath).Msg("detected file type")

	info := &FileTypeInfo{
		MIMEType:  mtype.String(),
		Extension: mtype.Extension(),
		IsPDF:     mtype.Is(pdfMIME),
	}
	switch {
	case info.IsPDF:
		info.Description = "PDF document"
	case strings.HasPrefix(info.MIMEType, "text/"):
		info.Description = "Plain text file"
	case strings.HasPrefix(info.MIMEType, "image/"):
		info.Description = "Image file"
	default:
		info.Description = fmt.Sprintf("Unsupported file type: %s", info.MIMEType)
	}
	return info, nil
}

// RequirePDF fails unless the content of filePath is a PDF.
func RequirePDF(filePath string) error {
	info, err := Detect(filePath)
	if err != nil {
		return err
	}
	if !info.IsPDF {
		return fmt.Errorf("Not a PDF: %s (detected %s)", filePath, info.MIMEType)
	}
	return nil
}

// Size returns the size of filePath in bytes.
func Size(filePath string) (int64, error) {
	st, err := os.Stat(filePath)
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

// ValidateInputs checks, in order, that every path exists, is non-empty and has
// a .pdf extension. The first failure is returned; an empty list passes.
func ValidateInputs(paths []string) error {
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("File not found: %s", p)
		}
		if st.Size() == 0 {
			return fmt.Errorf("File is empty: %s", p)
		}
		if !strings.EqualFold(filepath.Ext(p), ".pdf") {
			return fmt.Errorf("Not a PDF: %s", p)
		}
	}
	return nil
}
