// Package services – ExportService
//
// This file renders the submitted responses of a survey as a CSV or XLSX
// table: one row per response, one column per question. When an archive is
// configured, the file is also uploaded and a download URL is returned.
package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const (
	exportTimeLayout = "2006-01-02 15:04:05"
	exportSheet      = "Responses"
	contentTypeCSV   = "text/csv; charset=utf-8"
	contentTypeXLSX  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportArchive stores generated files and returns a download URL.
type ExportArchive interface {
	Put(ctx context.Context, objectName, contentType string, data []byte) (url string, err error)
}

// ExportService builds response exports.
type ExportService struct {
	DB *gorm.DB

	// Archive is optional.
	Archive ExportArchive

	// Location renders timestamps; UTC when nil.
	Location *time.Location
	Now      func() time.Time
}

// ExportFile is a rendered export. URL is set when the file was archived.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
	URL         string
}

// Export renders the submitted responses of surveyID in format (csv when
// empty).
func (s *ExportService) Export(ctx context.Context, actor Actor, surveyID uint, format string) (*ExportFile, error) {
	tr := otel.Tracer("services/ExportService")
	ctx, span := tr.Start(ctx, "Export",
		trace.WithAttributes(
			attribute.Int("survey.id", int(surveyID)),
			attribute.String("format", format),
		),
	)
	defer span.End()

	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return nil, ErrUnsupportedFormat
	}

	sv, err := repo.GetSurveyTree(ctx, s.DB, surveyID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrSurveyNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := actor.canManageSurvey(sv); err != nil {
		return nil, err
	}

	responses, err := repo.ListSubmittedResponses(ctx, s.DB, surveyID)
	if err != nil {
		return nil, err
	}
	if len(responses) == 0 {
		return nil, ErrNoSubmittedResponses
	}

	table := BuildExportTable(sv, responses, s.Location)
	f := &ExportFile{Filename: fmt.Sprintf("%s_%d.%s", Slugify(sv.Title, "survey"), sv.ID, format)}
	switch format {
	case FormatXLSX:
		f.ContentType = contentTypeXLSX
		f.Data, err = table.XLSX()
	default:
		f.ContentType = contentTypeCSV
		f.Data, err = table.CSV()
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if s.Archive != nil {
		name := fmt.Sprintf("exports/%d/%s_%s", sv.ID, clock(s.Now).Format("20060102T150405Z"), f.Filename)
		url, err := s.Archive.Put(ctx, name, f.ContentType, f.Data)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("archive export: %w", err)
		}
		f.URL = url
	}
	return f, nil
}

// ExportTable is the rendered header and rows of an export.
type ExportTable struct {
	Header []string
	Rows   [][]string
}

// BuildExportTable lays out responses of sv. Questions and choices of sv
// must be preloaded in order.
func BuildExportTable(sv *domain.Survey, responses []domain.Response, loc *time.Location) ExportTable {
	if loc == nil {
		loc = time.UTC
	}
	t := ExportTable{Header: []string{"ResponseId", "RespondentId", "StartedAt", "SubmittedAt"}}
	for _, q := range sv.Questions {
		t.Header = append(t.Header, fmt.Sprintf("Q%d: %s", q.OrderIndex, q.Text))
	}

	for _, r := range responses {
		byQuestion := map[uint][]domain.ResponseDetail{}
		for _, d := range r.Details {
			byQuestion[d.QuestionID] = append(byQuestion[d.QuestionID], d)
		}
		row := []string{
			fmt.Sprintf("%d", r.ID),
			r.RespondentID,
			r.StartedAt.In(loc).Format(exportTimeLayout),
			"",
		}
		if r.SubmittedAt != nil {
			row[3] = r.SubmittedAt.In(loc).Format(exportTimeLayout)
		}
		for _, q := range sv.Questions {
			row = append(row, formatAnswer(q, byQuestion[q.ID]))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// formatAnswer renders the detail rows of one question: choice texts joined
// with "; ", the number in invariant notation, or the text.
func formatAnswer(q domain.Question, rows []domain.ResponseDetail) string {
	if len(rows) == 0 {
		return ""
	}
	choices := make(map[uint]string, len(q.Choices))
	for _, c := range q.Choices {
		choices[c.ID] = c.Text
	}

	var parts []string
	seen := map[uint]struct{}{}
	for _, d := range rows {
		switch {
		case d.ChoiceID != nil:
			if _, dup := seen[*d.ChoiceID]; dup {
				continue
			}
			seen[*d.ChoiceID] = struct{}{}
			if text, ok := choices[*d.ChoiceID]; ok {
				parts = append(parts, text)
			} else {
				parts = append(parts, fmt.Sprintf("%d", *d.ChoiceID))
			}
		case d.AnswerNumber != nil:
			parts = append(parts, d.AnswerNumber.String())
		case d.AnswerText != nil:
			if t := strings.TrimSpace(*d.AnswerText); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, "; ")
}

// CSV encodes the table as UTF-8 with a byte order mark.
func (t ExportTable) CSV() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.Write(t.Header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// XLSX encodes the table as a workbook with a single sheet.
func (t ExportTable) XLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, err
	}
	write := func(rowIdx int, vals []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(vals))
		for i, v := range vals {
			row[i] = v
		}
		return f.SetSheetRow(exportSheet, cell, &row)
	}
	if err := write(1, t.Header); err != nil {
		return nil, err
	}
	for i, r := range t.Rows {
		if err := write(i+2, r); err != nil {
			return nil, err
		}
	}
	if err := f.SetPanes(exportSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
