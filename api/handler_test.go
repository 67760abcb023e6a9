package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/autostream-ai/leadflow/agent/agents/controller"
	contractx "github.com/autostream-ai/leadflow/agent/contract"
)

type fakeDialogue struct {
	result controller.Result
	err    error
	calls  int
	lastID string
}

func (f *fakeDialogue) HandleMessage(ctx context.Context, sessionID string, text string) (controller.Result, error) {
	f.calls++
	f.lastID = sessionID
	if f.err != nil {
		return controller.Result{}, f.err
	}
	return f.result, nil
}

type fakeDirectory struct {
	leads     []contractx.LeadRecord
	listErr   error
	statusSet map[string]string
}

func (f *fakeDirectory) List(ctx context.Context) ([]contractx.LeadRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.leads, nil
}

func (f *fakeDirectory) GetByEmail(ctx context.Context, email string) (contractx.LeadRecord, error) {
	for _, rec := range f.leads {
		if rec.Email == email {
			return rec, nil
		}
	}
	return contractx.LeadRecord{}, fmt.Errorf("%w: %s", contractx.ErrLeadNotFound, email)
}

func (f *fakeDirectory) UpdateStatus(ctx context.Context, email string, status string) error {
	for _, rec := range f.leads {
		if rec.Email == email {
			if f.statusSet == nil {
				f.statusSet = make(map[string]string)
			}
			f.statusSet[email] = status
			return nil
		}
	}
	return fmt.Errorf("%w: %s", contractx.ErrLeadNotFound, email)
}

func newTestRouter(dialogue Dialogue, directory contractx.LeadDirectory) chi.Router {
	r := chi.NewRouter()
	NewHandler(dialogue, directory).RegisterRoutes(r)
	return r
}

func postChat(t *testing.T, router http.Handler, body string) (*httptest.ResponseRecorder, chatResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp chatResponse
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return rec, resp
}

func TestChatSuccess(t *testing.T) {
	t.Parallel()

	dialogue := &fakeDialogue{
		result: controller.Result{Reply: "welcome!", Intent: contractx.IntentGreeting},
	}
	router := newTestRouter(dialogue, &fakeDirectory{})

	rec, resp := postChat(t, router, `{"message":"hello","session_id":"s1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Reply != "welcome!" || resp.SessionID != "s1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Intent == nil || *resp.Intent != "greeting" {
		t.Fatalf("unexpected intent: %v", resp.Intent)
	}
	if dialogue.lastID != "s1" {
		t.Fatalf("session id not forwarded: %q", dialogue.lastID)
	}
}

func TestChatGeneratesSessionID(t *testing.T) {
	t.Parallel()

	dialogue := &fakeDialogue{result: controller.Result{Reply: "ok"}}
	router := newTestRouter(dialogue, &fakeDirectory{})

	_, resp := postChat(t, router, `{"message":"hello"}`)
	if resp.SessionID == "" {
		t.Fatal("expected generated session id")
	}
	if dialogue.lastID != resp.SessionID {
		t.Fatalf("generated id not forwarded: %q vs %q", dialogue.lastID, resp.SessionID)
	}

	_, second := postChat(t, router, `{"message":"hello"}`)
	if second.SessionID == resp.SessionID {
		t.Fatal("each request without a session id should get a fresh one")
	}
}

func TestChatEmptyMessageShortCircuits(t *testing.T) {
	t.Parallel()

	dialogue := &fakeDialogue{result: controller.Result{Reply: "should not be used"}}
	router := newTestRouter(dialogue, &fakeDirectory{})

	rec, resp := postChat(t, router, `{"message":"   ","session_id":"s1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Reply != "Please provide a message." {
		t.Fatalf("unexpected reply: %q", resp.Reply)
	}
	if resp.Intent != nil {
		t.Fatalf("expected null intent, got %v", *resp.Intent)
	}
	if dialogue.calls != 0 {
		t.Fatal("empty message must not reach the controller")
	}
}

func TestChatEmptyIntentSerializesNull(t *testing.T) {
	t.Parallel()

	dialogue := &fakeDialogue{result: controller.Result{Reply: "ok", Intent: ""}}
	router := newTestRouter(dialogue, &fakeDirectory{})

	rec, _ := postChat(t, router, `{"message":"hello","session_id":"s1"}`)
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"intent":null`)) {
		t.Fatalf("expected intent:null in body: %s", rec.Body.String())
	}
}

func TestChatDialogueErrorApologizes(t *testing.T) {
	t.Parallel()

	dialogue := &fakeDialogue{err: errors.New("graph blew up")}
	router := newTestRouter(dialogue, &fakeDirectory{})

	rec, resp := postChat(t, router, `{"message":"hello","session_id":"s1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(resp.Reply, "something went wrong") {
		t.Fatalf("expected apology, got %q", resp.Reply)
	}
	if resp.Intent != nil {
		t.Fatal("expected null intent on failure")
	}
	if resp.SessionID != "s1" {
		t.Fatalf("session id must be preserved: %q", resp.SessionID)
	}
}

func TestChatInvalidBody(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeDialogue{}, &fakeDirectory{})

	rec, _ := postChat(t, router, `{"message": `)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListLeads(t *testing.T) {
	t.Parallel()

	directory := &fakeDirectory{
		leads: []contractx.LeadRecord{
			{ID: 2, Name: "Bea", Email: "bea@example.com", Platform: "TikTok", Plan: "Pro", CreatedAt: time.Now(), Status: "new_lead"},
			{ID: 1, Name: "Ana", Email: "ana@example.com", Platform: "YouTube", Plan: "Basic", CreatedAt: time.Now(), Status: "new_lead"},
		},
	}
	router := newTestRouter(&fakeDialogue{}, directory)

	req := httptest.NewRequest(http.MethodGet, "/admin/leads", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Total int                    `json:"total"`
		Leads []contractx.LeadRecord `json:"leads"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 || len(resp.Leads) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Leads[0].Email != "bea@example.com" {
		t.Fatalf("lead order not preserved: %+v", resp.Leads)
	}
}

func TestGetLead(t *testing.T) {
	t.Parallel()

	directory := &fakeDirectory{
		leads: []contractx.LeadRecord{
			{ID: 1, Name: "Ana", Email: "ana@example.com", Platform: "YouTube", Plan: "Basic", Status: "new_lead"},
		},
	}
	router := newTestRouter(&fakeDialogue{}, directory)

	req := httptest.NewRequest(http.MethodGet, "/admin/leads/ana@example.com", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Success bool                 `json:"success"`
		Lead    contractx.LeadRecord `json:"lead"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Lead.Name != "Ana" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGetLeadNotFound(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeDialogue{}, &fakeDirectory{})

	req := httptest.NewRequest(http.MethodGet, "/admin/leads/missing@example.com", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success || resp.Error == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUpdateLeadStatus(t *testing.T) {
	t.Parallel()

	directory := &fakeDirectory{
		leads: []contractx.LeadRecord{{ID: 1, Email: "ana@example.com", Status: "new_lead"}},
	}
	router := newTestRouter(&fakeDialogue{}, directory)

	req := httptest.NewRequest(http.MethodPatch, "/admin/leads/ana@example.com/status", strings.NewReader(`{"status":"contacted"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if directory.statusSet["ana@example.com"] != "contacted" {
		t.Fatalf("status not updated: %+v", directory.statusSet)
	}
}

func TestUpdateLeadStatusValidation(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeDialogue{}, &fakeDirectory{})

	req := httptest.NewRequest(http.MethodPatch, "/admin/leads/ana@example.com/status", strings.NewReader(`{"status":"  "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAdminEndpointsWithoutDirectory(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeDialogue{}, nil)

	for _, path := range []string{"/admin/leads", "/admin/leads/a@b.com"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("GET %s status = %d, want 503", path, rec.Code)
		}
	}
}

func TestSessionLockReuse(t *testing.T) {
	t.Parallel()

	h := NewHandler(&fakeDialogue{}, nil)

	a := h.sessionLock("s1")
	b := h.sessionLock("s1")
	c := h.sessionLock("s2")

	if a != b {
		t.Fatal("same session must map to the same lock")
	}
	if a == c {
		t.Fatal("different sessions must not share a lock")
	}
}
