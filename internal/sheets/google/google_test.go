package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return newWithService(svc, "sheet-id", "Report")
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{CredentialsJSON: "{}"})
	if err == nil || err.Error() != "missing spreadsheet ID" {
		t.Fatalf("New() error = %v, want missing spreadsheet ID", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "id"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("New() error = %v, want missing credentials", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "id", CredentialsFile: t.TempDir() + "/missing.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("New() error = %v, want read error", err)
	}
}

func TestClient_Publish(t *testing.T) {
	var calls []string
	var written gsheet.ValueRange

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":clear"):
			if !strings.Contains(r.URL.Path, "/v4/spreadsheets/sheet-id/values/") {
				t.Errorf("unexpected clear path %q", r.URL.Path)
			}
			_, _ = w.Write([]byte(`{"clearedRange":"Report!A1:F40"}`))
		case r.Method == http.MethodPut:
			if got := r.URL.Query().Get("valueInputOption"); got != "USER_ENTERED" {
				t.Errorf("valueInputOption = %q, want USER_ENTERED", got)
			}
			if err := json.NewDecoder(r.Body).Decode(&written); err != nil {
				t.Errorf("decode body: %v", err)
			}
			_, _ = w.Write([]byte(`{"updatedRange":"Report!A1:F3","updatedRows":3}`))
		default:
			http.Error(w, "unexpected request", http.StatusBadRequest)
		}
	})

	rows := [][]any{
		{"PERSONAL FINANCE TRACKER"},
		nil,
		{"01/10/2024", "Income", "Salary", "Salary payment", 3000.0, 3000.0},
	}
	ref, err := c.Publish(context.Background(), rows)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if ref != "Report!A1:F3" {
		t.Errorf("Publish() ref = %q", ref)
	}
	if len(calls) != 2 || calls[0] != http.MethodPost || calls[1] != http.MethodPut {
		t.Errorf("calls = %v, want clear then update", calls)
	}
	if len(written.Values) != 3 || len(written.Values[2]) != 6 {
		t.Fatalf("written values = %v", written.Values)
	}
	if written.Values[2][2] != "Salary" {
		t.Errorf("category cell = %v", written.Values[2][2])
	}
}

func TestClient_PublishClearFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	})

	_, err := c.Publish(context.Background(), [][]any{{"x"}})
	if err == nil || !strings.Contains(err.Error(), "failed to clear") {
		t.Fatalf("Publish() error = %v, want clear failure", err)
	}
}

func TestClient_PublishWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "id", sheetName: "Report"}
	if _, err := c.Publish(context.Background(), nil); err == nil {
		t.Fatal("expected error without service")
	}
}
