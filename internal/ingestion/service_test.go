package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rpattn/fishql/internal/model"
	"github.com/rpattn/fishql/internal/store"
)

func openStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "fishql.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestIngestCSVStoresReferentials(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	service := NewService(s)

	data := "\xEF\xBB\xBFid,label,name,Status ID,level_id,notes\n" +
		"12,XBL,Le Guilvinec,1,3,harbour\n" +
		"13,XLR,La Rochelle,,3,\n" +
		"abc,BAD,Broken,1,,\n" +
		"14,,,1,,\n"

	summary, err := service.Ingest(ctx, Request{EntityName: "Location", FileName: "locations.csv", Data: strings.NewReader(data)})
	if err != nil {
		t.Fatalf("ingest returned error: %v", err)
	}
	if summary.TotalRows != 4 || summary.ValidRows != 2 || summary.InvalidRows != 2 || summary.Created != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.IgnoredColumns) != 1 || summary.IgnoredColumns[0] != "notes" {
		t.Fatalf("expected notes column to be ignored, got %v", summary.IgnoredColumns)
	}
	if summary.Errors[0].RowNumber != 4 || !strings.Contains(summary.Errors[0].Message, "id") {
		t.Fatalf("unexpected first row error: %+v", summary.Errors[0])
	}

	collection := store.ReferentialCollection(model.TypenameReferential, "Location")
	obj, err := s.Get(ctx, collection, 13)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	ref := model.ReferentialFromObject(obj)
	if ref.Label != "XLR" || ref.EntityName != "Location" {
		t.Fatalf("unexpected referential %+v", ref)
	}
	if ref.Status == nil || !model.IntEquals(ref.Status.ID, statusEnabled) {
		t.Fatalf("expected default enabled status, got %+v", ref.Status)
	}
	if ref.Level == nil || !model.IntEquals(ref.Level.ID, 3) {
		t.Fatalf("expected level 3, got %+v", ref.Level)
	}
}

func TestIngestUpdatesExistingRows(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	service := NewService(s)

	first := "id;label;name\n12;XBL;Guilvinec\n"
	if _, err := service.Ingest(ctx, Request{EntityName: "Location", FileName: "a.csv", Data: strings.NewReader(first)}); err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	second := "id;label;name\n12;XBL;Le Guilvinec\n"
	summary, err := service.Ingest(ctx, Request{EntityName: "Location", FileName: "b.csv", Data: strings.NewReader(second)})
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if summary.Updated != 1 || summary.Created != 0 || summary.InvalidRows != 0 {
		t.Fatalf("expected an update without conflict, got %+v", summary)
	}
	obj, err := s.Get(ctx, store.ReferentialCollection(model.TypenameReferential, "Location"), 12)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if obj.String("name") != "Le Guilvinec" {
		t.Fatalf("expected name to be replaced, got %q", obj.String("name"))
	}
}

func TestIngestExcel(t *testing.T) {
	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	rows := [][]any{
		{"Gear referential"},
		{"source", "SIH"},
		{"id", "label", "name", "creation_date", "parent_id"},
		{7, "OTB", "Bottom otter trawl", "2024-01-15", 2},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := book.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := book.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	s := openStore(t)
	service := NewService(s)
	headerRow := 2
	summary, err := service.Ingest(context.Background(), Request{
		EntityName:     "Gear",
		FileName:       "gears.xlsx",
		HeaderRowIndex: &headerRow,
		Data:           bytes.NewReader(buf.Bytes()),
	})
	if err != nil {
		t.Fatalf("ingest returned error: %v", err)
	}
	if summary.ValidRows != 1 || summary.InvalidRows != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	obj, err := s.Get(context.Background(), store.ReferentialCollection(model.TypenameReferential, "Gear"), 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	ref := model.ReferentialFromObject(obj)
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if ref.CreationDate == nil || !ref.CreationDate.Equal(want) {
		t.Fatalf("unexpected creation date %v", ref.CreationDate)
	}
	if ref.Parent == nil || !model.IntEquals(ref.Parent.ID, 2) {
		t.Fatalf("expected parent 2, got %+v", ref.Parent)
	}
}

func TestIngestRejectsBadInput(t *testing.T) {
	service := NewService(openStore(t))
	ctx := context.Background()

	if _, err := service.Ingest(ctx, Request{EntityName: "Location", FileName: "x.json", Data: strings.NewReader("{}")}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
	if _, err := service.Ingest(ctx, Request{EntityName: "Location", FileName: "x.csv", Data: strings.NewReader("label,name\nA,B\n")}); !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected missing id column, got %v", err)
	}
	if _, err := service.Ingest(ctx, Request{FileName: "x.csv", Data: strings.NewReader("id,label\n1,A\n")}); err == nil {
		t.Fatalf("expected entity name to be required")
	}
}

func TestPreviewDoesNotStore(t *testing.T) {
	s := openStore(t)
	service := NewService(s)
	data := "id,label,status_id\n1,A,1\n2,B,9\n"

	result, err := service.Preview(context.Background(), PreviewRequest{EntityName: "Location", FileName: "x.csv", Data: strings.NewReader(data)})
	if err != nil {
		t.Fatalf("preview returned error: %v", err)
	}
	if result.TotalRows != 2 || result.InvalidRows != 1 || len(result.Rows) != 2 {
		t.Fatalf("unexpected preview: %+v", result)
	}
	if len(result.Rows[1].Errors) == 0 || !strings.Contains(result.Rows[1].Errors[0], "statusid") {
		t.Fatalf("expected status error, got %v", result.Rows[1].Errors)
	}
	if len(result.HeaderCandidates) == 0 || !result.HeaderCandidates[0].Current {
		t.Fatalf("expected first row to be the current header, got %+v", result.HeaderCandidates)
	}
	rows, err := s.List(context.Background(), store.ReferentialCollection(model.TypenameReferential, "Location"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("preview must not store rows, found %d", len(rows))
	}
}

func TestHTTPHandlerIngests(t *testing.T) {
	handler := NewHTTPHandler(NewService(openStore(t)))

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	_ = form.WriteField("entityName", "Location")
	part, err := form.CreateFormFile("file", "locations.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("id,label\n1,XBL\n"))
	_ = form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/referentials/import", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var summary Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Created != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/referentials/import", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
