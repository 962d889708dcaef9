package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxDimension = 3840
	defaultJPEGQuality  = 85
)

type Upload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type Result struct {
	Bytes       []byte
	ContentType string
	Resized     bool
}

// Processor normalizes a user-supplied image before it is uploaded: decode,
// downscale to maxDimension if needed, re-encode.
type Processor interface {
	Process(ctx context.Context, upload Upload, maxDimension int) (*Result, error)
}

// ImagingProcessor re-encodes in process. PNG stays PNG; everything else
// (jpeg, webp) comes out as JPEG, since webp has decode support only.
type ImagingProcessor struct {
	jpegQuality int
}

func NewImagingProcessor() *ImagingProcessor {
	return &ImagingProcessor{jpegQuality: defaultJPEGQuality}
}

func (p *ImagingProcessor) Process(ctx context.Context, upload Upload, maxDimension int) (*Result, error) {
	if upload.Reader == nil {
		return nil, fmt.Errorf("media: empty reader")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}

	img, err := imaging.Decode(upload.Reader, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("media: decode %s: %w", upload.FileName, err)
	}

	resized := false
	bounds := img.Bounds()
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
		resized = true
	}

	format, contentType := p.outputFormat(upload.ContentType)

	var buf bytes.Buffer
	opts := []imaging.EncodeOption{}
	if format == imaging.JPEG {
		opts = append(opts, imaging.JPEGQuality(p.jpegQuality))
	}
	if err := imaging.Encode(&buf, img, format, opts...); err != nil {
		return nil, fmt.Errorf("media: encode %s: %w", upload.FileName, err)
	}

	return &Result{
		Bytes:       buf.Bytes(),
		ContentType: contentType,
		Resized:     resized,
	}, nil
}

func (p *ImagingProcessor) outputFormat(contentType string) (imaging.Format, string) {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/png":
		return imaging.PNG, "image/png"
	default:
		return imaging.JPEG, "image/jpeg"
	}
}
