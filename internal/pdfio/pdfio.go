// Package pdfio handles PDF file access: resolving input references to local
// files, counting pages, and writing page selections to new PDFs.
package pdfio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog/log"

	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Resolve turns an input reference into a local filesystem path. Supported:
//   - s3://bucket/key (downloaded to temp via AWS SDK v2)
//   - http(s):// URLs (downloaded to temp)
//   - file://path and plain filesystem paths
//
// cleanup removes any temp file and is always safe to call.
func Resolve(ctx context.Context, ref string) (localPath string, cleanup func(), err error) {
	// Strip optional #page fragment if present
	if i := strings.Index(ref, "#"); i >= 0 {
		ref = ref[:i]
	}

	cleanup = func() {}
	switch {
	case strings.HasPrefix(ref, "s3://"):
		localPath, err = downloadS3ToTemp(ctx, ref)
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		localPath, err = downloadHTTPToTemp(ctx, ref)
	case strings.HasPrefix(ref, "file://"):
		return strings.TrimPrefix(ref, "file://"), cleanup, nil
	default:
		return ref, cleanup, nil
	}
	if err != nil {
		return "", cleanup, err
	}
	tmp := localPath
	return tmp, func() { _ = os.Remove(tmp) }, nil
}

// PageCount returns the number of pages in a local PDF.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("pdf page count failed: %w", err)
	}
	return n, nil
}

// Document writes page selections of one source PDF to part files.
type Document struct {
	path string
}

// NewDocument wraps a local PDF path.
func NewDocument(path string) *Document {
	return &Document{path: path}
}

// WritePages creates outPath containing exactly the given 1-based pages, in
// the given order. Duplicate page numbers are rejected upstream; pdfcpu's
// collect operation preserves the requested order, so reordered groups come
// out as reordered part files.
func (d *Document) WritePages(ctx context.Context, outPath string, pages []int) error {
	if len(pages) == 0 {
		return fmt.Errorf("no pages selected for %s", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	selection := make([]string, len(pages))
	for i, p := range pages {
		selection[i] = strconv.Itoa(p)
	}

	if err := api.CollectFile(d.path, outPath, selection, nil); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	log.Debug().Str("out", outPath).Ints("pages", pages).Msg("wrote part file")
	return nil
}

func downloadHTTPToTemp(ctx context.Context, url string) (string, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("http %d", resp.StatusCode)
	}
	f, err := os.CreateTemp("", "scoredl-*.pdf")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", err
	}
	return f.Name(), nil
}

func downloadS3ToTemp(ctx context.Context, s3url string) (string, error) {
	// s3://bucket/key
	path := strings.TrimPrefix(s3url, "s3://")
	slash := strings.Index(path, "/")
	if slash <= 0 {
		return "", fmt.Errorf("invalid s3 url: %s", s3url)
	}
	bucket := path[:slash]
	key := path[slash+1:]

	cfg, err := awscfg.LoadDefaultConfig(ctx)
	if err != nil {
		return "", err
	}
	cli := s3.NewFromConfig(cfg)

	out, err := cli.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		return "", err
	}
	defer out.Body.Close()

	// .pdf extension keeps pdfcpu happy with temp files
	f, err := os.CreateTemp("", "s3score-*.pdf")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, out.Body); err != nil {
		return "", err
	}
	log.Info().Str("bucket", bucket).Str("key", key).Str("file", filepath.Base(f.Name())).Msg("downloaded s3 pdf to temp")
	return f.Name(), nil
}
