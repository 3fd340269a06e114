package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/local/scoresplit/internal/analyze"
	"github.com/local/scoresplit/internal/config"
	"github.com/local/scoresplit/internal/filetype"
	"github.com/local/scoresplit/internal/grouping"
	"github.com/local/scoresplit/internal/metadata"
	"github.com/local/scoresplit/internal/naming"
	"github.com/local/scoresplit/internal/ocr"
	"github.com/local/scoresplit/internal/pdfio"
	"github.com/local/scoresplit/internal/splitter"
)

var (
	splitOutputDir   string
	splitSessionFile string
	splitTemplate    string
	splitThreshold   float64
	splitLanguage    string
	splitDPI         int
	splitForceOCR    bool
	splitAnalyzeOnly bool
	splitTitle       string
	splitComposer    string
	splitArranger    string
	splitYear        string
)

var splitCmd = &cobra.Command{
	Use:   "split [pdf]",
	Short: "Analyze a score PDF and write one file per instrument part",
	Args:  cobra.ExactArgs(1),
	RunE:  runSplit,
}

func init() {
	splitCmd.Flags().StringVarP(&splitOutputDir, "output-dir", "o", "", "directory for split part files")
	splitCmd.Flags().StringVar(&splitSessionFile, "session-file", "", "JSON session file for metadata persistence")
	splitCmd.Flags().StringVar(&splitTemplate, "template", "", "filename template, e.g. {composer}_{title}_{part}")
	splitCmd.Flags().Float64Var(&splitThreshold, "threshold", 0, "part label similarity threshold (0..1)")
	splitCmd.Flags().StringVar(&splitLanguage, "lang", "", "tesseract language, e.g. eng+deu")
	splitCmd.Flags().IntVar(&splitDPI, "dpi", 0, "rasterization DPI for OCR")
	splitCmd.Flags().BoolVar(&splitForceOCR, "force-ocr", false, "OCR every page, ignoring embedded text")
	splitCmd.Flags().BoolVar(&splitAnalyzeOnly, "analyze-only", false, "detect parts without writing files")
	splitCmd.Flags().StringVar(&splitTitle, "title", "", "override detected title")
	splitCmd.Flags().StringVar(&splitComposer, "composer", "", "set composer name")
	splitCmd.Flags().StringVar(&splitArranger, "arranger", "", "set arranger name")
	splitCmd.Flags().StringVar(&splitYear, "year", "", "set year")
	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	ref := args[0]

	// CLI flags override environment configuration.
	ocrCfg := cfg.OCR
	if splitLanguage != "" {
		ocrCfg.Language = splitLanguage
	}
	if splitDPI > 0 {
		ocrCfg.DPI = splitDPI
	}
	if splitForceOCR {
		ocrCfg.Force = true
	}
	splitCfg := cfg.Split
	if splitTemplate != "" {
		splitCfg.Template = splitTemplate
	}
	if splitThreshold > 0 {
		splitCfg.SimilarityThreshold = splitThreshold
	}
	if splitOutputDir != "" {
		splitCfg.OutputDir = splitOutputDir
	}

	localPath, cleanup, err := pdfio.Resolve(ctx, ref)
	if err != nil {
		return fmt.Errorf("resolve input: %w", err)
	}
	defer cleanup()

	info, err := filetype.Detect(localPath)
	if err != nil {
		return err
	}
	if !info.Supported {
		return fmt.Errorf("%s: %s", ref, info.Description)
	}

	pageCount, err := pdfio.PageCount(localPath)
	if err != nil {
		return err
	}
	log.Info().Str("file", ref).Int("pages", pageCount).Msg("processing PDF")

	vocabulary, err := config.LoadVocabulary(cfg.ConfigDir)
	if err != nil {
		return err
	}

	tess, err := ocr.NewTesseract(ocrCfg.Language)
	if err != nil {
		return err
	}
	defer tess.Close()

	meta, err := metadata.NewStore(splitSessionFile)
	if err != nil {
		return err
	}
	meta.Update(ref, map[string]string{
		"title":    splitTitle,
		"composer": splitComposer,
		"arranger": splitArranger,
		"year":     splitYear,
	}, nil)

	sp := splitter.New(splitter.Deps{
		DocPath:  ref,
		Source:   ocr.NewProvider(localPath, ocrCfg, tess),
		Writer:   pdfio.NewDocument(localPath),
		Analyzer: analyze.New(vocabulary),
		Grouper:  grouping.New(splitCfg.SimilarityThreshold),
		Namer:    naming.New(splitCfg.Template),
		Metadata: meta,
	})

	groups, err := sp.AnalyzeAll(ctx)
	if err != nil {
		return err
	}

	// A title passed on the command line wins over the detected one.
	if splitTitle != "" {
		meta.Update(ref, map[string]string{"title": splitTitle}, nil)
	}

	cmd.Println("Detected parts:")
	if groups.Len() == 0 {
		cmd.Println("  (none)")
	}
	for _, part := range groups.Names() {
		pages, _ := groups.Pages(part)
		cmd.Printf("  %s: %d pages (%s)\n", part, len(pages), joinPages(pages))
	}

	if splitSessionFile != "" {
		if err := meta.SaveSession(); err != nil {
			return err
		}
		cmd.Printf("Session saved to %s\n", splitSessionFile)
	}

	if splitAnalyzeOnly {
		return nil
	}

	outputs, err := sp.Split(ctx, splitCfg.OutputDir)
	if err != nil {
		return err
	}

	cmd.Println("Output files:")
	parts := make([]string, 0, len(outputs))
	for part := range outputs {
		parts = append(parts, part)
	}
	sort.Strings(parts)
	for _, part := range parts {
		cmd.Printf("  %s: %s\n", part, outputs[part])
	}
	return nil
}

func joinPages(pages []int) string {
	strs := make([]string, len(pages))
	for i, p := range pages {
		strs[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(strs, ", ")
}
