package onshape

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jlf119/app-cad-compliance/internal/domain"
)

func newTestClient(upstream *httptest.Server) *Client {
	return NewClient(upstream.URL, 5*time.Second, zap.NewNop())
}

var testCred = Credential{Authorization: "Basic abc123", UserAgent: "cad-frontend/1.0"}

func TestForwardsCredentialHeaders(t *testing.T) {
	var gotAuth, gotUA string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer upstream.Close()

	client := newTestClient(upstream)
	resp, err := client.ListElements(context.Background(), testCred, "D1", "W1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Basic abc123" {
		t.Errorf("expected Authorization forwarded, got %q", gotAuth)
	}
	if gotUA != "cad-frontend/1.0" {
		t.Errorf("expected User-Agent forwarded, got %q", gotUA)
	}
	if resp.ContentType != "application/json" {
		t.Errorf("expected content type preserved, got %q", resp.ContentType)
	}
}

func TestProxyPaths(t *testing.T) {
	var gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[]`))
	}))
	defer upstream.Close()

	client := newTestClient(upstream)
	ctx := context.Background()

	client.ListElements(ctx, testCred, "D1", "W1")
	if gotPath != "/documents/d/D1/w/W1/elements" {
		t.Errorf("unexpected elements path %q", gotPath)
	}

	client.ListElementParts(ctx, testCred, "D1", "W1", "E1")
	if gotPath != "/parts/d/D1/w/W1/e/E1" {
		t.Errorf("unexpected element parts path %q", gotPath)
	}

	client.ListParts(ctx, testCred, "D1", "W1")
	if gotPath != "/parts/d/D1/w/W1" {
		t.Errorf("unexpected parts path %q", gotPath)
	}
}

func TestCreateTranslation_PartStudio(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"T1","requestState":"ACTIVE"}`))
	}))
	defer upstream.Close()

	client := newTestClient(upstream)
	src := domain.ModelSource{DocumentID: "D1", WorkspaceID: "W1", ElementID: "E1", PartID: "P1"}

	accepted, err := client.CreateTranslation(context.Background(), testCred, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accepted.ID != "T1" {
		t.Errorf("expected id T1, got %q", accepted.ID)
	}
	if gotPath != "/partstudios/d/D1/w/W1/e/E1/translations" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotBody["partIds"] != "P1" {
		t.Errorf("expected partIds P1, got %v", gotBody["partIds"])
	}
	if _, ok := gotBody["elementId"]; ok {
		t.Error("part export must not send elementId")
	}
	if gotBody["formatName"] != "GLTF" {
		t.Errorf("expected GLTF format, got %v", gotBody["formatName"])
	}
	if gotBody["resolution"] != "medium" {
		t.Errorf("expected medium resolution, got %v", gotBody["resolution"])
	}
	if gotBody["storeInDocument"] != false {
		t.Error("export must not be stored in the source document")
	}
	if gotBody["triggerAutoDownload"] != false {
		t.Error("export must not auto-download")
	}
	if gotBody["linkDocumentWorkspaceId"] != "W1" {
		t.Errorf("expected link workspace W1, got %v", gotBody["linkDocumentWorkspaceId"])
	}
}

func TestCreateTranslation_Assembly(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &gotBody)
		w.Write([]byte(`{"id":"T2"}`))
	}))
	defer upstream.Close()

	client := newTestClient(upstream)
	src := domain.ModelSource{DocumentID: "D1", WorkspaceID: "W1", ElementID: "E1"}

	if _, err := client.CreateTranslation(context.Background(), testCred, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/assemblies/d/D1/w/W1/e/E1/translations" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotBody["elementId"] != "E1" {
		t.Errorf("assembly export must send elementId, got %v", gotBody["elementId"])
	}
	if _, ok := gotBody["partIds"]; ok {
		t.Error("assembly export must not send partIds")
	}
}

func TestGetTranslation(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translations/T1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"id":"T1","requestState":"DONE","documentId":"D1","resultExternalDataIds":["X1"]}`))
	}))
	defer upstream.Close()

	client := newTestClient(upstream)
	status, err := client.GetTranslation(context.Background(), testCred, "T1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.RequestState != RequestStateDone {
		t.Errorf("expected DONE, got %q", status.RequestState)
	}
	if status.DocumentID != "D1" || len(status.ResultExternalDataIDs) != 1 || status.ResultExternalDataIDs[0] != "X1" {
		t.Errorf("result locator not decoded: %+v", status)
	}
}

func TestDownloadDoesNotForceAcceptJSON(t *testing.T) {
	var gotAccept string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "model/gltf-binary")
		w.Write([]byte{0x67, 0x6c, 0x54, 0x46})
	}))
	defer upstream.Close()

	client := newTestClient(upstream)
	loc := domain.ResultLocation{DocumentID: "D1", ExternalDataID: "X1"}
	resp, err := client.DownloadExternalData(context.Background(), testCred, loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAccept == "application/json" {
		t.Error("binary download must not force Accept: application/json")
	}
	if resp.ContentType != "model/gltf-binary" {
		t.Errorf("expected binary content type, got %q", resp.ContentType)
	}
}

func TestUpstreamErrorPreservesBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"no access"}`))
	}))
	defer upstream.Close()

	client := newTestClient(upstream)
	_, err := client.ListElements(context.Background(), testCred, "D1", "W1")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", apiErr.StatusCode)
	}
	if string(apiErr.Body) != `{"message":"no access"}` {
		t.Errorf("expected body preserved, got %q", apiErr.Body)
	}
}

func TestTransportErrorClassification(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // refuse connections

	client := newTestClient(upstream)
	_, err := client.ListElements(context.Background(), testCred, "D1", "W1")

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}
