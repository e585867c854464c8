package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"digital-library/archive"
	"digital-library/bibtex"
	"digital-library/models"
)

// AttachmentStore persists matched PDF blobs and returns the storage key
// plus the absolute URL under which the file is served.
type AttachmentStore interface {
	Save(name string, content []byte) (key, url string, err error)
}

// Notifier is told about every article the importer creates so subscribers
// can be mailed. Implementations must not fail the import.
type Notifier interface {
	ArticleCreated(ctx context.Context, article *models.Article)
}

// ImportRequest is the normalized input of one bulk import call, resolved
// at the HTTP boundary from either a JSON payload or a multipart form.
type ImportRequest struct {
	// Bibtex is the raw multi-record text.
	Bibtex string

	// Archive is an optional zip of candidate PDF attachments.
	Archive []byte

	// EditionID selects an existing edition directly. When zero, EventName
	// and Year are used to get-or-create one.
	EditionID uint
	EventName string
	Year      int
}

// SkippedEntry reports a record rejected by validation.
type SkippedEntry struct {
	Title         string   `json:"title"`
	Reason        string   `json:"reason"`
	MissingFields []string `json:"missing_fields"`
}

// ProcessingError reports a record that passed validation but failed a
// store operation.
type ProcessingError struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// ImportResult accumulates the per-record outcomes of one import call.
type ImportResult struct {
	Edition       *models.Edition
	Created       []*models.Article
	Skipped       []SkippedEntry
	Errors        []ProcessingError
	PDFMatches    int
	PDFsInArchive int
}

// ImportService drives the bulk import pipeline: split, extract, validate,
// persist, match PDFs, and report. One call is a single synchronous pass in
// source order; per-record failures never abort the batch.
type ImportService struct {
	Store       EntityStore
	Attachments AttachmentStore
	Notifier    Notifier
	Logger      *zap.Logger
}

// NewImportService creates a new ImportService. Attachments and Notifier
// may be nil, disabling PDF upload and notification respectively.
func NewImportService(store EntityStore, attachments AttachmentStore, notifier Notifier, logger *zap.Logger) *ImportService {
	return &ImportService{
		Store:       store,
		Attachments: attachments,
		Notifier:    notifier,
		Logger:      logger,
	}
}

// Run executes one bulk import. It fails as a whole only during edition
// resolution; afterwards every failure is captured per record in the
// result. Prior successfully created entities of a failed record are not
// rolled back.
func (s *ImportService) Run(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	edition, err := s.resolveEdition(req)
	if err != nil {
		return nil, err
	}
	log := s.Logger.With(
		zap.String("event", edition.Event.Name),
		zap.Int("year", edition.Year),
	)

	var idx archive.Index
	if len(req.Archive) > 0 {
		idx = archive.BuildIndex(req.Archive)
	} else {
		idx = archive.Index{}
	}

	result := &ImportResult{Edition: edition, PDFsInArchive: countPDFs(idx)}
	blocks := bibtex.Split(req.Bibtex)
	log.Info("Starting bulk import",
		zap.Int("records", len(blocks)),
		zap.Int("archive_pdfs", result.PDFsInArchive))

	for _, block := range blocks {
		s.processRecord(ctx, block, edition, idx, result)
	}

	log.Info("Bulk import finished",
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("errors", len(result.Errors)),
		zap.Int("pdf_matches", result.PDFMatches))
	return result, nil
}

// resolveEdition picks the target edition: an explicit reference is used
// as-is, otherwise event and edition are get-or-created from name and year.
func (s *ImportService) resolveEdition(req ImportRequest) (*models.Edition, error) {
	if req.EditionID != 0 {
		return s.Store.GetEdition(req.EditionID)
	}
	if req.EventName == "" || req.Year == 0 {
		return nil, ErrEditionNotFound
	}
	event, err := s.Store.GetOrCreateEvent(req.EventName)
	if err != nil {
		return nil, err
	}
	return s.Store.GetOrCreateEdition(event, req.Year)
}

// processRecord handles one raw block: extract, validate, persist, attach.
// Every failure lands in the result; processRecord itself never fails.
func (s *ImportService) processRecord(ctx context.Context, block bibtex.RawRecordBlock, edition *models.Edition, idx archive.Index, result *ImportResult) {
	rec := bibtex.Extract(block)

	title := rec.Title
	if title == "" {
		title = fmt.Sprintf("Entry #%d", block.Index)
	}

	outcome := bibtex.Validate(rec)
	if !outcome.Accepted {
		result.Skipped = append(result.Skipped, SkippedEntry{
			Title:         title,
			Reason:        outcome.RejectionReason,
			MissingFields: outcome.MissingFields(),
		})
		return
	}

	article := &models.Article{
		Title:     rec.Title,
		Abstract:  rec.Abstract,
		PDFURL:    rec.URL,
		EditionID: edition.ID,
		Edition:   *edition,
		Bibtex:    rec.RawText,
	}
	if err := s.Store.CreateArticle(article); err != nil {
		result.Errors = append(result.Errors, ProcessingError{
			Title:  title,
			Reason: fmt.Sprintf("Database error: %v", err),
		})
		return
	}

	for _, name := range rec.Authors {
		author, err := s.Store.GetOrCreateAuthor(name)
		if err == nil {
			err = s.Store.AddAuthor(article, author)
		}
		if err != nil {
			result.Errors = append(result.Errors, ProcessingError{
				Title:  title,
				Reason: fmt.Sprintf("Database error: %v", err),
			})
			return
		}
		article.Authors = append(article.Authors, author)
	}

	if pdf := archive.Match(rec, idx); pdf != nil && s.Attachments != nil {
		key, url, err := s.Attachments.Save(pdf.Name, pdf.Content)
		if err == nil {
			err = s.Store.AttachPDF(article, key, url)
		}
		if err != nil {
			result.Errors = append(result.Errors, ProcessingError{
				Title:  title,
				Reason: fmt.Sprintf("PDF attachment failed: %v", err),
			})
			return
		}
		result.PDFMatches++
	}

	result.Created = append(result.Created, article)
	if s.Notifier != nil {
		s.Notifier.ArticleCreated(ctx, article)
	}
}

// countPDFs counts distinct files in the index; each PDF is stored under
// two keys.
func countPDFs(idx archive.Index) int {
	names := make(map[string]struct{}, len(idx))
	for _, pdf := range idx {
		names[pdf.Name] = struct{}{}
	}
	return len(names)
}

// Report is the summary block of the import response.
type Report struct {
	Summary ReportSummary `json:"summary"`
	Details ReportDetails `json:"details"`
}

// ReportSummary holds the aggregate counts of one import call.
type ReportSummary struct {
	TotalEntriesProcessed   int     `json:"total_entries_processed"`
	SuccessfulImports       int     `json:"successful_imports"`
	SkippedEntries          int     `json:"skipped_entries"`
	ProcessingErrors        int     `json:"processing_errors"`
	SuccessRate             float64 `json:"success_rate"`
	PDFFilesInArchive       int     `json:"pdf_files_in_archive"`
	PDFsSuccessfullyMatched int     `json:"pdfs_successfully_matched"`
}

// ReportDetails breaks skip reasons down by frequency.
type ReportDetails struct {
	SkippedBreakdown      map[string]int `json:"skipped_breakdown"`
	MostCommonSkipReasons []ReasonCount  `json:"most_common_skip_reasons"`
}

// ReasonCount is a (reason, count) pair, serialized as a two-element array.
type ReasonCount struct {
	Reason string
	Count  int
}

// MarshalJSON renders the pair as ["reason", count].
func (rc ReasonCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{rc.Reason, rc.Count})
}

// BuildReport aggregates an import result into the report surfaced to API
// clients. The success rate is created/total*100 rounded to one decimal,
// and 0 when nothing was processed.
func BuildReport(result *ImportResult) Report {
	total := len(result.Created) + len(result.Skipped) + len(result.Errors)
	rate := 0.0
	if total > 0 {
		rate = math.Round(float64(len(result.Created))/float64(total)*1000) / 10
	}

	breakdown := make(map[string]int)
	for _, sk := range result.Skipped {
		breakdown[sk.Reason]++
	}
	reasons := make([]ReasonCount, 0, len(breakdown))
	for reason, count := range breakdown {
		reasons = append(reasons, ReasonCount{Reason: reason, Count: count})
	}
	sort.Slice(reasons, func(i, j int) bool {
		if reasons[i].Count != reasons[j].Count {
			return reasons[i].Count > reasons[j].Count
		}
		return reasons[i].Reason < reasons[j].Reason
	})

	return Report{
		Summary: ReportSummary{
			TotalEntriesProcessed:   total,
			SuccessfulImports:       len(result.Created),
			SkippedEntries:          len(result.Skipped),
			ProcessingErrors:        len(result.Errors),
			SuccessRate:             rate,
			PDFFilesInArchive:       result.PDFsInArchive,
			PDFsSuccessfullyMatched: result.PDFMatches,
		},
		Details: ReportDetails{
			SkippedBreakdown:      breakdown,
			MostCommonSkipReasons: reasons,
		},
	}
}
