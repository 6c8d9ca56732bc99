// Package export writes filtered entities as CSV or XLSX files.
package export

import (
	"bufio"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/rpattn/fishql/internal/dates"
	"github.com/rpattn/fishql/internal/filter"
	"github.com/rpattn/fishql/internal/model"
	"github.com/rpattn/fishql/internal/store"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for a format other than csv and xlsx.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat reads a format name, case insensitive.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnsupportedFormat, value)
}

// MimeType returns the content type of files written in f.
func (f Format) MimeType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Table is a header row followed by value rows.
type Table struct {
	Headers []string
	Rows    [][]any
}

// Result describes a written export file.
type Result struct {
	FileName     string
	Path         string
	MimeType     string
	RowsExported int
	BytesWritten int64
}

type Service struct {
	exportDir      string
	pageSize       int
	now            func() time.Time
	downloadSigner *downloadSigner
}

type Option func(*Service)

func WithExportDirectory(dir string) Option {
	return func(s *Service) {
		if strings.TrimSpace(dir) != "" {
			s.exportDir = filepath.Clean(dir)
		}
	}
}

func WithPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// WithDownloadTokenTTL customizes the TTL for generated download links.
func WithDownloadTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.downloadSigner = newDownloadSigner(ttl)
		}
	}
}

func NewService(opts ...Option) *Service {
	service := &Service{
		exportDir: filepath.Join(os.TempDir(), "fishql-exports"),
		pageSize:  1000,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	if service.downloadSigner == nil {
		service.downloadSigner = newDownloadSigner(5 * time.Minute)
	}
	return service
}

// Export reads every entity of ds accepted by f, page by page, and writes
// them to a new file named after base.
func Export[E model.Entity](ctx context.Context, s *Service, ds *store.DataSource[E], f filter.Filter[E], columns []Column[E], base string, format Format) (Result, error) {
	var items []E
	offset := 0
	for {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		page, total, err := ds.Load(ctx, f, store.Page{Offset: offset, Size: s.pageSize})
		if err != nil {
			return Result{}, fmt.Errorf("load %s: %w", ds.Collection(), err)
		}
		items = append(items, page...)
		offset += len(page)
		if len(page) == 0 || offset >= total {
			break
		}
	}
	return s.Write(base, format, BuildTable(columns, items))
}

// Write writes table to the export directory. The file is written under a
// temporary name and renamed once complete.
func (s *Service) Write(base string, format Format, table Table) (Result, error) {
	if err := s.ensureExportDirectory(); err != nil {
		return Result{}, err
	}
	name := finalFileName(base, format)
	tempFile, err := os.CreateTemp(s.exportDir, fmt.Sprintf("%s-*.tmp", strings.TrimSuffix(name, "."+string(format))))
	if err != nil {
		return Result{}, fmt.Errorf("create temp export file: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = tempFile.Close()
			_ = os.Remove(tempPath)
		}
	}()

	buffered := bufio.NewWriterSize(tempFile, 1<<20)
	counter := &countingWriter{writer: buffered}
	switch format {
	case FormatCSV:
		err = WriteCSV(counter, table)
	case FormatXLSX:
		err = WriteXLSX(counter, "export", table)
	default:
		err = fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return Result{}, err
	}
	if err := buffered.Flush(); err != nil {
		return Result{}, fmt.Errorf("flush export file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return Result{}, fmt.Errorf("sync export file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return Result{}, fmt.Errorf("close export file: %w", err)
	}

	finalPath := filepath.Join(s.exportDir, name)
	if err := os.Rename(tempPath, finalPath); err != nil {
		return Result{}, fmt.Errorf("promote export file: %w", err)
	}
	cleanup = false
	log.Printf("[EXPORT] %s completed (rows=%d bytes=%d)", name, len(table.Rows), counter.count)
	return Result{
		FileName:     name,
		Path:         finalPath,
		MimeType:     format.MimeType(),
		RowsExported: len(table.Rows),
		BytesWritten: counter.count,
	}, nil
}

// WriteCSV writes table as CSV.
func WriteCSV(w io.Writer, table Table) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(table.Headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(table.Headers))
	for _, row := range table.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = formatValue(row[i])
			}
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flush rows: %w", err)
	}
	return nil
}

// WriteXLSX writes table as a single sheet workbook. Numbers stay numeric
// cells, dates are written as ISO-8601 strings.
func WriteXLSX(w io.Writer, sheet string, table Table) error {
	book := excelize.NewFile()
	defer func() { _ = book.Close() }()

	if sheet != "" && sheet != "Sheet1" {
		if err := book.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("name sheet: %w", err)
		}
	} else {
		sheet = "Sheet1"
	}
	stream, err := book.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open sheet writer: %w", err)
	}

	header := make([]any, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := writeXLSXRow(stream, 1, header); err != nil {
		return err
	}
	for r, row := range table.Rows {
		values := make([]any, len(row))
		for i, v := range row {
			values[i] = cellValue(v)
		}
		if err := writeXLSXRow(stream, r+2, values); err != nil {
			return err
		}
	}
	if err := stream.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if err := book.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeXLSXRow(stream *excelize.StreamWriter, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := stream.SetRow(cell, values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

// BuildDownloadURL returns a signed link to an export file.
func (s *Service) BuildDownloadURL(fileName string) string {
	token := s.downloadSigner.Sign(fileName, s.now())
	values := url.Values{}
	values.Set("token", token)
	return fmt.Sprintf("/exports/files/%s?%s", url.PathEscape(fileName), values.Encode())
}

// ValidateDownloadToken ensures the token is valid for the given file.
func (s *Service) ValidateDownloadToken(fileName, token string) error {
	return s.downloadSigner.Verify(fileName, token, s.now())
}

// OpenFile opens an export file for streaming to the client. Only plain
// file names of the export directory are accepted.
func (s *Service) OpenFile(fileName string) (*os.File, error) {
	if fileName == "" || fileName != filepath.Base(fileName) || strings.HasPrefix(fileName, ".") {
		return nil, errors.New("invalid export file name")
	}
	file, err := os.Open(filepath.Join(s.exportDir, fileName))
	if err != nil {
		return nil, fmt.Errorf("open export file: %w", err)
	}
	return file, nil
}

func (s *Service) ensureExportDirectory() error {
	if strings.TrimSpace(s.exportDir) == "" {
		return errors.New("export directory is not configured")
	}
	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return fmt.Errorf("ensure export directory: %w", err)
	}
	return nil
}

func finalFileName(base string, format Format) string {
	base = sanitizeFileComponent(base)
	if base == "" {
		base = "export"
	}
	return fmt.Sprintf("%s-%s.%s", base, uuid.NewString(), format)
}

func sanitizeFileComponent(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	builder := strings.Builder{}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			builder.WriteRune(r)
		case r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == '-' || r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteRune('-')
		}
	}
	result := strings.Trim(builder.String(), "-")
	if result == "" {
		return "export"
	}
	return result
}

type countingWriter struct {
	writer *bufio.Writer
	count  int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.writer.Write(p)
	c.count += int64(n)
	return n, err
}

// cellValue keeps numbers and booleans typed for spreadsheet cells.
func cellValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case int, int32, int64, float32, float64, bool:
		return v
	case *int:
		if v == nil {
			return nil
		}
		return *v
	case *float64:
		if v == nil {
			return nil
		}
		return *v
	}
	return formatValue(value)
}

func formatValue(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		return dates.Format(&v)
	case *time.Time:
		return dates.Format(v)
	case *int:
		if v == nil {
			return ""
		}
		return strconv.Itoa(*v)
	case *float64:
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case json.Number:
		return v.String()
	case float32, float64, int, int32, int64, uint, uint32, uint64:
		return fmt.Sprintf("%v", v)
	case []string:
		return strings.Join(v, ", ")
	case map[string]any, []any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

type downloadSigner struct {
	secret []byte
	ttl    time.Duration
}

func newDownloadSigner(ttl time.Duration) *downloadSigner {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &downloadSigner{secret: []byte(uuid.New().String()), ttl: ttl}
}

func (s *downloadSigner) Sign(fileName string, now time.Time) string {
	expires := now.Add(s.ttl).Unix()
	payload := fmt.Sprintf("%s:%d", fileName, expires)
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))
	raw := fmt.Sprintf("%s:%s", payload, signature)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func (s *downloadSigner) Verify(fileName, token string, now time.Time) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("missing download token")
	}
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return fmt.Errorf("decode token: %w", err)
	}
	parts := strings.Split(string(decoded), ":")
	if len(parts) != 3 {
		return errors.New("invalid token format")
	}
	if parts[0] != fileName {
		return errors.New("token does not match export file")
	}
	expires, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid token expiration: %w", err)
	}
	if now.Unix() > expires {
		return errors.New("download token expired")
	}
	payload := fmt.Sprintf("%s:%s", parts[0], parts[1])
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	expected := mac.Sum(nil)
	provided, err := hex.DecodeString(parts[2])
	if err != nil {
		return fmt.Errorf("invalid token signature: %w", err)
	}
	if !hmac.Equal(expected, provided) {
		return errors.New("invalid download token")
	}
	return nil
}
