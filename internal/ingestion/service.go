package ingestion

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"

	"github.com/rpattn/fishql/internal/model"
	"github.com/rpattn/fishql/internal/store"
)

var (
	// ErrUnsupportedFormat is returned when an uploaded file is not supported.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrMissingColumn is returned when the header row lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

	timeLayouts = []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.000",
		"2006/01/02",
		"02/01/2006",
	}
)

// Known columns, keyed by their normalized header.
const (
	columnID           = "id"
	columnLabel        = "label"
	columnName         = "name"
	columnDescription  = "description"
	columnComments     = "comments"
	columnStatusID     = "statusid"
	columnLevelID      = "levelid"
	columnParentID     = "parentid"
	columnCreationDate = "creationdate"
)

// Default status of imported rows without a status column.
const statusEnabled = 1

// Service imports referential tables (locations, gears, taxon groups...)
// into the local store so they resolve offline.
type Service struct {
	store    store.Store
	validate *validator.Validate
}

// NewService creates a new ingestion service.
func NewService(s store.Store) *Service {
	return &Service{
		store:    s,
		validate: validator.New(),
	}
}

// Request describes the ingestion input.
type Request struct {
	EntityName     string
	FileName       string
	HeaderRowIndex *int
	Data           io.Reader
}

// PreviewRequest describes the preview input prior to ingestion.
type PreviewRequest struct {
	EntityName     string
	FileName       string
	HeaderRowIndex *int
	Data           io.Reader
	Limit          int
}

// RowError reports why a row was rejected.
type RowError struct {
	RowNumber int    `json:"rowNumber"`
	Message   string `json:"message"`
}

// Summary returns ingestion level metrics.
type Summary struct {
	EntityName  string     `json:"entityName"`
	TotalRows   int        `json:"totalRows"`
	ValidRows   int        `json:"validRows"`
	InvalidRows int        `json:"invalidRows"`
	Created     int        `json:"created"`
	Updated     int        `json:"updated"`
	Errors      []RowError `json:"errors"`
	// IgnoredColumns lists headers that map to no referential attribute.
	IgnoredColumns []string `json:"ignoredColumns"`
}

// PreviewRow captures sample data and validation feedback.
type PreviewRow struct {
	RowNumber int               `json:"rowNumber"`
	Values    map[string]string `json:"values"`
	Errors    []string          `json:"errors,omitempty"`
}

// HeaderCandidate represents a potential header row option.
type HeaderCandidate struct {
	Index   int      `json:"index"`
	Values  []string `json:"values"`
	Current bool     `json:"current"`
}

// PreviewResult returns preview metadata back to clients.
type PreviewResult struct {
	TotalRows        int               `json:"totalRows"`
	InvalidRows      int               `json:"invalidRows"`
	Headers          []string          `json:"headers"`
	IgnoredColumns   []string          `json:"ignoredColumns"`
	Rows             []PreviewRow      `json:"rows"`
	HeaderCandidates []HeaderCandidate `json:"headerCandidates"`
}

type tableData struct {
	headers        []string
	columns        map[string]int
	ignored        []string
	rows           [][]string
	headerRowIndex int
}

// referentialRow is one parsed line, checked before it becomes a
// model.Referential.
type referentialRow struct {
	ID           int    `validate:"gt=0"`
	Label        string `validate:"required_without=Name,max=50"`
	Name         string `validate:"max=100"`
	Description  string
	Comments     string
	StatusID     int `validate:"min=0,max=2"`
	LevelID      *int
	ParentID     *int
	CreationDate *time.Time
}

// Ingest reads the uploaded file and upserts every valid row as a
// referential of req.EntityName.
func (s *Service) Ingest(ctx context.Context, req Request) (Summary, error) {
	summary := Summary{
		EntityName:     req.EntityName,
		Errors:         []RowError{},
		IgnoredColumns: []string{},
	}
	if strings.TrimSpace(req.EntityName) == "" {
		return summary, errors.New("entity name is required")
	}
	if req.Data == nil {
		return summary, errors.New("data reader is required")
	}

	payload, err := io.ReadAll(req.Data)
	if err != nil {
		return summary, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(payload) == 0 {
		return summary, errors.New("file is empty")
	}

	table, _, err := parseTable(req.FileName, payload, req.HeaderRowIndex)
	if err != nil {
		return summary, err
	}
	summary.TotalRows = len(table.rows)
	summary.IgnoredColumns = append(summary.IgnoredColumns, table.ignored...)

	collection := store.ReferentialCollection(model.TypenameReferential, req.EntityName)
	for rowIdx, raw := range table.rows {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		rowNumber := table.headerRowIndex + rowIdx + 2 // 1-based, after the header

		row, err := s.parseRow(table, raw)
		if err != nil {
			s.rowError(&summary, rowNumber, err)
			continue
		}

		ref := row.toReferential(req.EntityName)
		existing, err := s.store.Get(ctx, collection, row.ID)
		switch {
		case err == nil:
			ref.UpdateDate = existing.Date("updateDate")
		case errors.Is(err, store.ErrNotFound):
		default:
			return summary, fmt.Errorf("failed to read %s %d: %w", collection, row.ID, err)
		}

		if _, err := s.store.Save(ctx, ref); err != nil {
			s.rowError(&summary, rowNumber, fmt.Errorf("failed to store referential: %w", err))
			continue
		}
		if existing != nil {
			summary.Updated++
		} else {
			summary.Created++
		}
		summary.ValidRows++
	}

	log.Printf("[INGESTION] %s from %s: %d rows, %d created, %d updated, %d invalid",
		req.EntityName, req.FileName, summary.TotalRows, summary.Created, summary.Updated, summary.InvalidRows)
	return summary, nil
}

// Preview runs validations against a limited set of rows without storing
// anything.
func (s *Service) Preview(ctx context.Context, req PreviewRequest) (PreviewResult, error) {
	result := PreviewResult{
		Headers:          []string{},
		IgnoredColumns:   []string{},
		Rows:             []PreviewRow{},
		HeaderCandidates: []HeaderCandidate{},
	}
	if req.Data == nil {
		return result, errors.New("data reader is required")
	}
	payload, err := io.ReadAll(req.Data)
	if err != nil {
		return result, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(payload) == 0 {
		return result, errors.New("file is empty")
	}

	table, records, err := parseTable(req.FileName, payload, req.HeaderRowIndex)
	result.HeaderCandidates = buildHeaderCandidates(records, 10, table.headerRowIndex)
	if err != nil {
		return result, err
	}
	result.Headers = table.headers
	result.IgnoredColumns = append(result.IgnoredColumns, table.ignored...)
	result.TotalRows = len(table.rows)

	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	for rowIdx, raw := range table.rows {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		row := PreviewRow{
			RowNumber: table.headerRowIndex + rowIdx + 2,
			Values:    make(map[string]string, len(table.headers)),
		}
		for i, header := range table.headers {
			row.Values[header] = strings.TrimSpace(raw[i])
		}
		if _, err := s.parseRow(table, raw); err != nil {
			row.Errors = strings.Split(err.Error(), "; ")
			result.InvalidRows++
		}
		if len(result.Rows) < limit {
			result.Rows = append(result.Rows, row)
		}
	}
	return result, nil
}

func (s *Service) rowError(summary *Summary, rowNumber int, err error) {
	summary.InvalidRows++
	summary.Errors = append(summary.Errors, RowError{RowNumber: rowNumber, Message: err.Error()})
	log.Printf("[INGESTION] %s row %d rejected: %v", summary.EntityName, rowNumber, err)
}

func (s *Service) parseRow(table tableData, raw []string) (referentialRow, error) {
	cell := func(column string) string {
		idx, ok := table.columns[column]
		if !ok {
			return ""
		}
		return strings.TrimSpace(raw[idx])
	}

	var problems []string
	row := referentialRow{
		Label:       cell(columnLabel),
		Name:        cell(columnName),
		Description: cell(columnDescription),
		Comments:    cell(columnComments),
		StatusID:    statusEnabled,
	}

	if id, err := parseOptionalInt(cell(columnID)); err != nil {
		problems = append(problems, fmt.Sprintf("id: %v", err))
	} else if id != nil {
		row.ID = *id
	}
	if status, err := parseOptionalInt(cell(columnStatusID)); err != nil {
		problems = append(problems, fmt.Sprintf("status_id: %v", err))
	} else if status != nil {
		row.StatusID = *status
	}
	var err error
	if row.LevelID, err = parseOptionalInt(cell(columnLevelID)); err != nil {
		problems = append(problems, fmt.Sprintf("level_id: %v", err))
	}
	if row.ParentID, err = parseOptionalInt(cell(columnParentID)); err != nil {
		problems = append(problems, fmt.Sprintf("parent_id: %v", err))
	}
	if value := cell(columnCreationDate); value != "" {
		parsed, err := parseTimestamp(value)
		if err != nil {
			problems = append(problems, fmt.Sprintf("creation_date: %v", err))
		} else {
			row.CreationDate = &parsed
		}
	}
	if len(problems) > 0 {
		return row, errors.New(strings.Join(problems, "; "))
	}

	if err := s.validate.Struct(row); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				problems = append(problems, fmt.Sprintf("%s: failed %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return row, errors.New(strings.Join(problems, "; "))
		}
		return row, err
	}
	return row, nil
}

func (r referentialRow) toReferential(entityName string) *model.Referential {
	ref := &model.Referential{
		EntityBase:   model.EntityBase{ID: model.IntPtr(r.ID)},
		Label:        r.Label,
		Name:         r.Name,
		Description:  r.Description,
		Comments:     r.Comments,
		EntityName:   entityName,
		CreationDate: r.CreationDate,
		Status:       &model.ReferentialRef{EntityBase: model.EntityBase{ID: model.IntPtr(r.StatusID)}},
	}
	if r.LevelID != nil {
		ref.Level = &model.ReferentialRef{EntityBase: model.EntityBase{ID: r.LevelID}}
	}
	if r.ParentID != nil {
		ref.Parent = &model.Referential{EntityBase: model.EntityBase{ID: r.ParentID}, EntityName: entityName}
	}
	return ref
}

func parseTable(fileName string, payload []byte, headerRowIndex *int) (tableData, [][]string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return parseCSV(payload, headerRowIndex)
	case ".xlsx":
		return parseExcel(payload, headerRowIndex)
	default:
		return tableData{}, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func parseCSV(payload []byte, headerRowIndex *int) (tableData, [][]string, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1
	if semicolonSeparated(payload) {
		csvReader.Comma = ';'
	}

	records, err := csvReader.ReadAll()
	if err != nil {
		return tableData{}, nil, fmt.Errorf("failed to read csv: %w", err)
	}

	table, err := normalizeTable(records, headerRowIndex)
	if err != nil {
		return tableData{}, records, err
	}
	return table, records, nil
}

// semicolonSeparated detects the separator used by spreadsheet exports in
// locales where the comma is the decimal mark.
func semicolonSeparated(payload []byte) bool {
	line := payload
	if idx := bytes.IndexByte(payload, '\n'); idx >= 0 {
		line = payload[:idx]
	}
	return bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','})
}

func parseExcel(payload []byte, headerRowIndex *int) (tableData, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return tableData{}, nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return tableData{}, nil, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return tableData{}, nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}

	table, err := normalizeTable(rows, headerRowIndex)
	if err != nil {
		return tableData{}, rows, err
	}
	return table, rows, nil
}

func normalizeTable(records [][]string, headerRowIndex *int) (tableData, error) {
	if len(records) == 0 {
		return tableData{}, errors.New("no rows found in file")
	}

	var headerRow []string
	var dataRows [][]string
	headerIndex := -1

	if headerRowIndex != nil {
		if *headerRowIndex < 0 || *headerRowIndex >= len(records) {
			return tableData{}, fmt.Errorf("header row index %d out of range", *headerRowIndex)
		}
		if len(cleanRow(records[*headerRowIndex])) == 0 {
			return tableData{}, fmt.Errorf("selected header row %d is empty", *headerRowIndex+1)
		}
		headerRow = records[*headerRowIndex]
		headerIndex = *headerRowIndex
		for idx := *headerRowIndex + 1; idx < len(records); idx++ {
			if len(cleanRow(records[idx])) == 0 {
				continue
			}
			dataRows = append(dataRows, records[idx])
		}
	} else {
		for idx, row := range records {
			if len(cleanRow(row)) == 0 {
				continue
			}
			if headerRow == nil {
				headerRow = row
				headerIndex = idx
				continue
			}
			dataRows = append(dataRows, row)
		}
	}

	if headerRow == nil {
		return tableData{}, errors.New("header row could not be detected")
	}

	headers := sanitizeHeaders(headerRow)
	columns := make(map[string]int, len(headers))
	var ignored []string
	for idx, header := range headers {
		key := columnKey(header)
		if !knownColumn(key) {
			ignored = append(ignored, header)
			continue
		}
		if _, dup := columns[key]; !dup {
			columns[key] = idx
		}
	}
	if _, ok := columns[columnID]; !ok {
		return tableData{headerRowIndex: headerIndex}, fmt.Errorf("%w: id", ErrMissingColumn)
	}
	_, hasLabel := columns[columnLabel]
	_, hasName := columns[columnName]
	if !hasLabel && !hasName {
		return tableData{headerRowIndex: headerIndex}, fmt.Errorf("%w: label or name", ErrMissingColumn)
	}

	for i := range dataRows {
		dataRows[i] = padRow(dataRows[i], len(headers))
	}

	return tableData{
		headers:        headers,
		columns:        columns,
		ignored:        ignored,
		rows:           dataRows,
		headerRowIndex: headerIndex,
	}, nil
}

// columnKey folds "Status ID", "status_id" and "statusId" to "statusid".
func columnKey(header string) string {
	return strings.ToLower(strings.ReplaceAll(header, "_", ""))
}

func knownColumn(key string) bool {
	switch key {
	case columnID, columnLabel, columnName, columnDescription, columnComments,
		columnStatusID, columnLevelID, columnParentID, columnCreationDate:
		return true
	}
	return false
}

func buildHeaderCandidates(records [][]string, limit int, currentIndex int) []HeaderCandidate {
	if limit <= 0 {
		limit = 10
	}

	candidates := make([]HeaderCandidate, 0, limit)
	for idx, row := range records {
		if len(cleanRow(row)) == 0 {
			continue
		}

		values := make([]string, len(row))
		for i, cell := range row {
			values[i] = strings.TrimSpace(cell)
		}

		candidates = append(candidates, HeaderCandidate{
			Index:   idx,
			Values:  values,
			Current: idx == currentIndex,
		})

		if len(candidates) >= limit {
			break
		}
	}

	return candidates
}

func cleanRow(row []string) []string {
	var cleaned []string
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			cleaned = append(cleaned, cell)
		}
	}
	return cleaned
}

func sanitizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int)

	for idx, value := range raw {
		name := strings.TrimSpace(value)
		name = strings.ReplaceAll(name, " ", "_")
		name = strings.ReplaceAll(name, ".", "_")
		name = strings.ReplaceAll(name, "-", "_")
		name = strings.Trim(name, "_")
		if name == "" {
			name = fmt.Sprintf("column_%d", idx+1)
		}

		base := name
		count := seen[base]
		if count > 0 {
			name = fmt.Sprintf("%s_%d", base, count+1)
		}
		seen[base] = count + 1

		headers[idx] = name
	}

	return headers
}

func padRow(row []string, length int) []string {
	if len(row) >= length {
		return row[:length]
	}
	padded := make([]string, length)
	copy(padded, row)
	return padded
}

func parseOptionalInt(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		// Spreadsheets hand integers back as "12.0".
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int(f)) {
			return nil, fmt.Errorf("invalid integer %q", raw)
		}
		n = int(f)
	}
	return &n, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
}
