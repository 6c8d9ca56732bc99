package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rpattn/fishql/internal/filter"
	"github.com/rpattn/fishql/internal/model"
	"github.com/rpattn/fishql/internal/store"
)

func sampleLandings() []*model.Landing {
	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	return []*model.Landing{
		{
			RootDataFields: model.RootDataFields{
				DataFields: model.DataFields{EntityBase: model.EntityBase{ID: model.IntPtr(1)}},
				Program:    &model.ReferentialRef{Label: "SIH-OBSMER"},
			},
			DateTime:          &at,
			Location:          &model.ReferentialRef{EntityBase: model.EntityBase{ID: model.IntPtr(3)}, Label: "XBL"},
			Observers:         []*model.Person{{FirstName: "Ana", LastName: "Le Goff"}, {LastName: "Morvan"}},
			MeasurementValues: map[string]string{model.PmfmStrategyLabel: "24LEUCCIR001"},
		},
		{
			RootDataFields: model.RootDataFields{
				DataFields:            model.DataFields{EntityBase: model.EntityBase{ID: model.IntPtr(-1)}},
				SynchronizationStatus: model.SyncStatusDirty,
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, BuildTable(LandingColumns(), sampleLandings())); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(records))
	}
	header := records[0]
	row := map[string]string{}
	for i, h := range header {
		row[h] = records[1][i]
	}
	if row["id"] != "1" || row["program"] != "SIH-OBSMER" || row["location"] != "XBL" {
		t.Fatalf("unexpected first row %v", row)
	}
	if row["date_time"] != "2024-03-01T08:00:00.000Z" {
		t.Fatalf("expected ISO date, got %q", row["date_time"])
	}
	if row["observers"] != "Ana Le Goff, Morvan" || row["strategy"] != "24LEUCCIR001" {
		t.Fatalf("unexpected observers or strategy %v", row)
	}
	if row["quality_status"] != model.QualityStatusModified {
		t.Fatalf("unexpected quality status %q", row["quality_status"])
	}
	second := map[string]string{}
	for i, h := range header {
		second[h] = records[2][i]
	}
	if second["id"] != "-1" || second["location"] != "" || second["trip_id"] != "" || second["synchronization_status"] != model.SyncStatusDirty {
		t.Fatalf("unexpected second row %v", second)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, "landings", BuildTable(LandingColumns(), sampleLandings())); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	book, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "landings" {
		t.Fatalf("unexpected sheets %v", sheets)
	}
	rows, err := book.GetRows("landings")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "id" || rows[1][0] != "1" || rows[1][3] != "XBL" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestServiceExportFromDataSource(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := store.OpenSQLite(filepath.Join(dir, "fishql.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	ds := store.NewDataSource(s, model.TypenameLanding, model.LandingFromObject)
	for id := 1; id <= 5; id++ {
		location := 3
		if id > 3 {
			location = 4
		}
		landing := &model.Landing{Location: &model.ReferentialRef{EntityBase: model.EntityBase{ID: model.IntPtr(location)}, Label: "L"}}
		landing.ID = model.IntPtr(id)
		if _, err := ds.Save(ctx, landing); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	service := NewService(WithExportDirectory(filepath.Join(dir, "exports")), WithPageSize(2))
	f := &filter.LandingFilter{Location: &model.ReferentialRef{EntityBase: model.EntityBase{ID: model.IntPtr(3)}}}
	result, err := Export(ctx, service, ds, f, LandingColumns(), "Landings 2024", FormatCSV)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if result.RowsExported != 3 {
		t.Fatalf("expected 3 rows over several pages, got %d", result.RowsExported)
	}
	if !strings.HasPrefix(result.FileName, "landings-2024-") || !strings.HasSuffix(result.FileName, ".csv") {
		t.Fatalf("unexpected file name %q", result.FileName)
	}
	data, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if int64(len(data)) != result.BytesWritten {
		t.Fatalf("expected %d bytes, file has %d", result.BytesWritten, len(data))
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "exports"))
	if len(entries) != 1 {
		t.Fatalf("expected temp file to be renamed, found %d entries", len(entries))
	}
}

func TestDownloadHandler(t *testing.T) {
	service := NewService(WithExportDirectory(t.TempDir()))
	result, err := service.Write("operations", FormatXLSX, BuildTable(OperationColumns(), []*model.Operation{{Comments: "haul"}}))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	handler := NewHTTPHandler(service)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, service.BuildDownloadURL(result.FileName), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected download to succeed, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != FormatXLSX.MimeType() {
		t.Fatalf("unexpected content type %q", got)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/exports/files/"+result.FileName+"?token=bogus", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected forged token to be refused, got %d", rec.Code)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" XLSX "); err != nil || f != FormatXLSX {
		t.Fatalf("expected xlsx, got %q %v", f, err)
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}
