package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/centavo-app/centavo/internal/ledger"
	"github.com/centavo-app/centavo/internal/models"
	"github.com/centavo-app/centavo/internal/store"
	"github.com/centavo-app/centavo/internal/testutil"
)

type recordedFlusher struct{ calls int }

func (f *recordedFlusher) Flush(context.Context) error {
	f.calls++
	return nil
}

// testEnv sets up a memory-backed service and router for testing.
// authToken="" means disabled mode; a non-empty token enables token mode.
func testEnv(t *testing.T, authToken string) (*ledger.Service, http.Handler, *recordedFlusher) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	st := store.New(&testutil.MemoryGateway{}, logger)
	fl := &recordedFlusher{}
	svc := ledger.NewService(st, fl, logger)
	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, router, fl
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAndGetRecord(t *testing.T) {
	_, router, _ := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/records", map[string]any{
		"type": "EXPENSE", "date": "2025-05-02", "description": "groceries", "value": "84.30",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created models.Record
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("created record has no id")
	}

	w = doJSON(t, router, http.MethodGet, "/records/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got models.Record
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Description != "groceries" {
		t.Errorf("description = %q", got.Description)
	}
}

func TestCreateRecord_Invalid(t *testing.T) {
	_, router, _ := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/records", map[string]any{"type": "BANANA"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	w = doJSON(t, router, http.MethodPost, "/records", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", w.Code)
	}
}

func TestUpdateRecord_PartialBody(t *testing.T) {
	svc, router, _ := testEnv(t, "")
	rec, err := svc.Create(models.Record{
		Type: models.TypePayable, Date: "2025-05-10", Description: "rent", Status: models.StatusPending,
	})
	if err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, router, http.MethodPut, "/records/"+rec.ID, map[string]string{"status": "PAID"})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}
	var got models.Record
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusPaid || got.Description != "rent" {
		t.Errorf("updated record = %+v", got)
	}
}

func TestUpdateRecord_NotFound(t *testing.T) {
	_, router, _ := testEnv(t, "")
	w := doJSON(t, router, http.MethodPut, "/records/ghost", map[string]string{"notes": "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDeleteRecord_UnknownIDIsNoContent(t *testing.T) {
	_, router, _ := testEnv(t, "")
	w := doJSON(t, router, http.MethodDelete, "/records/ghost", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}

func TestListRecords_Filters(t *testing.T) {
	svc, router, _ := testEnv(t, "")
	mustCreate := func(r models.Record) {
		t.Helper()
		if _, err := svc.Create(r); err != nil {
			t.Fatal(err)
		}
	}
	mustCreate(models.Record{Type: models.TypeExpense, Date: "2025-05-01"})
	mustCreate(models.Record{Type: models.TypeExpense, Date: "2025-06-01"})
	mustCreate(models.Record{Type: models.TypeIncome, Date: "2025-05-02"})

	w := doJSON(t, router, http.MethodGet, "/records?type=EXPENSE&month=2025-05", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Records []models.Record `json:"records"`
		Total   int             `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 || len(resp.Records) != 1 {
		t.Errorf("filtered list = %+v", resp)
	}

	w = doJSON(t, router, http.MethodGet, "/records?month=bogus", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad month status = %d, want 400", w.Code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	svc, router, _ := testEnv(t, "")
	if _, err := svc.Create(models.Record{Type: models.TypeIncome, Date: "2025-05-30", Value: decimal.RequireFromString("5000")}); err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, router, http.MethodGet, "/summary?month=2025-05", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"income":"5000"`) {
		t.Errorf("summary body = %s", w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/summary", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing month status = %d, want 400", w.Code)
	}
}

func TestFlushEndpoint(t *testing.T) {
	_, router, fl := testEnv(t, "")
	w := doJSON(t, router, http.MethodPost, "/flush", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if fl.calls != 1 {
		t.Errorf("flusher called %d times", fl.calls)
	}
}

func TestExportEndpoint(t *testing.T) {
	svc, router, _ := testEnv(t, "")
	if _, err := svc.Create(models.Record{Type: models.TypeExpense, Date: "2025-05-01", Description: "x"}); err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, router, http.MethodGet, "/export?month=2025-05", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type = %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("empty workbook body")
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, router, _ := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/records", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/records", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/records", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token status = %d, want 200", w.Code)
	}
}
