package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpattn/fishql/internal/export"
	"github.com/rpattn/fishql/internal/ingestion"
	"github.com/rpattn/fishql/internal/model"
	"github.com/rpattn/fishql/internal/referential"
	"github.com/rpattn/fishql/internal/store"
)

type testEnv struct {
	store  store.Store
	server *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	s, err := store.OpenSQLite(filepath.Join(dir, "fishql.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	srv := New(Dependencies{
		Store:     s,
		Exports:   export.NewService(export.WithExportDirectory(filepath.Join(dir, "exports"))),
		Ingestion: ingestion.NewService(s),
		NewLoader: func() *referential.Loader {
			return referential.NewLoader(referential.NewStoreFetcher(s))
		},
	}, DefaultOptions())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{store: s, server: ts}
}

func (e *testEnv) seedLandings(t *testing.T) {
	t.Helper()
	ds := store.NewDataSource(e.store, model.TypenameLanding, model.LandingFromObject)
	for id := 1; id <= 4; id++ {
		location := 3
		if id == 4 {
			location = 4
		}
		obj := model.Object{
			"id":       id,
			"dateTime": "2024-03-01T08:00:00.000Z",
			"location": model.Object{"id": location, "label": "XBL"},
		}
		if _, err := ds.Save(context.Background(), model.LandingFromObject(obj)); err != nil {
			t.Fatalf("save landing %d: %v", id, err)
		}
	}
}

func (e *testEnv) get(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	var body map[string]string
	if code := env.get(t, "/healthz", &body); code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected health response %d %v", code, body)
	}
}

func TestListLandingsWithFilterAndPage(t *testing.T) {
	env := newTestEnv(t)
	env.seedLandings(t)

	query := url.Values{}
	query.Set("filter", `{"locationId":3}`)
	query.Set("offset", "1")
	query.Set("size", "1")

	var body struct {
		Data  []map[string]any `json:"data"`
		Total int              `json:"total"`
	}
	if code := env.get(t, "/api/landings?"+query.Encode(), &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body.Total != 3 || len(body.Data) != 1 {
		t.Fatalf("expected page 2 of 3 landings, got %d of %d", len(body.Data), body.Total)
	}
	if body.Data[0]["id"] != float64(2) || body.Data[0]["__typename"] != model.TypenameLanding {
		t.Fatalf("unexpected landing %v", body.Data[0])
	}
}

func TestListSortsDescending(t *testing.T) {
	env := newTestEnv(t)
	env.seedLandings(t)

	var body struct {
		Data []map[string]any `json:"data"`
	}
	if code := env.get(t, "/api/landings?sortBy=id&sortDirection=desc&size=2", &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(body.Data) != 2 || body.Data[0]["id"] != float64(4) || body.Data[1]["id"] != float64(3) {
		t.Fatalf("unexpected order %v", body.Data)
	}
}

func TestListRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{
		"/api/landings?filter=" + url.QueryEscape("{not json"),
		"/api/landings?size=-1",
		"/api/operations/abc",
	} {
		if code := env.get(t, path, nil); code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, code)
		}
	}
}

func TestSaveGetDeleteOperation(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Post(env.server.URL+"/api/operations", "application/json",
		strings.NewReader(`{"tripId":7,"rankOrderOnPeriod":1,"comments":"first haul"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	var saved map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || saved["id"] != float64(-1) {
		t.Fatalf("expected a local id, got %d %v", resp.StatusCode, saved)
	}

	var fetched map[string]any
	if code := env.get(t, "/api/operations/-1", &fetched); code != http.StatusOK || fetched["comments"] != "first haul" {
		t.Fatalf("unexpected fetch %d %v", code, fetched)
	}
	var generic map[string]any
	if code := env.get(t, "/api/entities/"+model.TypenameOperation+"/-1", &generic); code != http.StatusOK || generic["tripId"] != float64(7) {
		t.Fatalf("unexpected registry fetch %d %v", code, generic)
	}
	if code := env.get(t, "/api/entities/UnknownVO/1", nil); code != http.StatusNotFound {
		t.Fatalf("expected unknown typename to be 404, got %d", code)
	}

	req, _ := http.NewRequest(http.MethodDelete, env.server.URL+"/api/operations/-1", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if code := env.get(t, "/api/operations/-1", nil); code != http.StatusNotFound {
		t.Fatalf("expected deleted operation to be 404, got %d", code)
	}
}

func TestSaveConflictIs409(t *testing.T) {
	env := newTestEnv(t)
	env.seedLandings(t)

	resp, err := http.Post(env.server.URL+"/api/landings", "application/json",
		strings.NewReader(`{"id":1,"updateDate":"2000-01-01T00:00:00.000Z"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestExportAndDownload(t *testing.T) {
	env := newTestEnv(t)
	env.seedLandings(t)

	var result struct {
		FileName     string `json:"fileName"`
		RowsExported int    `json:"rowsExported"`
		DownloadURL  string `json:"downloadUrl"`
	}
	path := "/api/landings/export.csv?filter=" + url.QueryEscape(`{"locationId":4}`)
	if code := env.get(t, path, &result); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if result.RowsExported != 1 || !strings.HasSuffix(result.FileName, ".csv") {
		t.Fatalf("unexpected export result %+v", result)
	}

	resp, err := http.Get(env.server.URL + result.DownloadURL)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "text/csv" {
		t.Fatalf("unexpected download %d %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	if code := env.get(t, "/api/landings/export.pdf", nil); code != http.StatusBadRequest {
		t.Fatalf("expected unsupported format to be 400, got %d", code)
	}
}

func TestReferentialRoutes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for id, label := range map[int]string{12: "XBL", 13: "XLR"} {
		ref := &model.Referential{EntityBase: model.EntityBase{ID: model.IntPtr(id)}, Label: label, EntityName: "Location"}
		if id == 13 {
			ref.Level = &model.ReferentialRef{EntityBase: model.EntityBase{ID: model.IntPtr(2)}, Label: "HARBOUR"}
		}
		if _, err := env.store.Save(ctx, ref); err != nil {
			t.Fatalf("save referential: %v", err)
		}
	}

	var ref map[string]any
	if code := env.get(t, "/api/referentials/Location/13", &ref); code != http.StatusOK || ref["label"] != "XLR" {
		t.Fatalf("unexpected referential %d %v", code, ref)
	}
	if code := env.get(t, "/api/referentials/Location/99", nil); code != http.StatusNotFound {
		t.Fatalf("expected missing referential to be 404, got %d", code)
	}

	var list struct {
		Data  []map[string]any `json:"data"`
		Total int              `json:"total"`
	}
	path := "/api/referentials/Location?filter=" + url.QueryEscape(`{"searchText":"XB*"}`)
	if code := env.get(t, path, &list); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if list.Total != 1 || list.Data[0]["label"] != "XBL" || list.Data[0]["entityName"] != "Location" {
		t.Fatalf("unexpected referential list %+v", list)
	}

	path = "/api/referentials/Location?filter=" + url.QueryEscape(`{"levelLabels":["HARBOUR"]}`)
	if code := env.get(t, path, &list); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if list.Total != 1 || list.Data[0]["label"] != "XLR" || list.Data[0]["levelLabel"] != "HARBOUR" {
		t.Fatalf("unexpected referential list by level %+v", list)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.get(t, "/healthz", nil)

	resp, err := http.Get(env.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		sb.Write(buf[:n])
		if err != nil {
			break
		}
	}
	if !strings.Contains(sb.String(), `fishql_http_requests_total{code="200",method="GET",route="/healthz"} 1`) {
		t.Fatalf("expected healthz to be counted:\n%s", sb.String())
	}
}
