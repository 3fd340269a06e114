// Package filetype validates input files by magic bytes, not filename.
package filetype

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// Info contains detected file type information.
type Info struct {
	MIMEType    string
	Extension   string
	Supported   bool
	Description string
}

// Detect inspects a file's magic bytes and reports whether the splitter can
// process it. Only PDF input is supported; extensions are not trusted.
func Detect(filePath string) (*Info, error) {
	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}

	info := &Info{
		MIMEType:  mtype.String(),
		Extension: mtype.Extension(),
	}
	log.Debug().Str("mime", info.MIMEType).Str("ext", info.Extension).Str("file", filePath).Msg("detected file type")

	if info.MIMEType == "application/pdf" {
		info.Supported = true
		info.Description = "PDF document"
		return info, nil
	}

	info.Description = fmt.Sprintf("Unsupported file type: %s", info.MIMEType)
	return info, nil
}
