package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mbenkhaled/telerag/internal/store"
	"github.com/mbenkhaled/telerag/session/session_models"
)

func sessionRequest(t *testing.T, h *SessionsHandler, method, id, suffix string) *httptest.ResponseRecorder {
	t.Helper()
	e := newEcho()
	req := httptest.NewRequest(method, "/api/sessions/"+id+suffix, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)

	var err error
	if method == http.MethodDelete {
		err = h.clear(c)
	} else {
		err = h.get(c)
	}
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestSessionsHandlerTranscript(t *testing.T) {
	sessions := newTestSessions(t)
	sess, err := sessions.EnsureSession("", time.Hour)
	if err != nil {
		t.Fatalf("ensure session: %v", err)
	}

	long := strings.Repeat("x", 350)
	if err := sess.Append(session_models.Turn{Role: session_models.RoleUser, Content: "Question ?"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	err = sess.Append(session_models.Turn{
		Role:    session_models.RoleAssistant,
		Content: "réponse",
		Sources: []store.SearchResult{
			{RecordID: 7, DialogueID: "dlg-007", Content: long, Similarity: 0.88},
		},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	h := &SessionsHandler{Sessions: sessions}
	rec := sessionRequest(t, h, http.MethodGet, sess.ID(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp transcriptResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.SessionID != sess.ID() {
		t.Errorf("session id = %s, want %s", resp.SessionID, sess.ID())
	}
	if len(resp.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(resp.Turns))
	}
	if resp.Turns[0].Role != "user" || resp.Turns[1].Role != "assistant" {
		t.Errorf("unexpected roles: %s, %s", resp.Turns[0].Role, resp.Turns[1].Role)
	}
	if len(resp.Turns[1].Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(resp.Turns[1].Sources))
	}
	preview := resp.Turns[1].Sources[0].Preview
	if want := strings.Repeat("x", 300) + "..."; preview != want {
		t.Errorf("preview not truncated to 300 runes: len = %d", len(preview))
	}
}

func TestSessionsHandlerNotFound(t *testing.T) {
	h := &SessionsHandler{Sessions: newTestSessions(t)}
	rec := sessionRequest(t, h, http.MethodGet, "missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	rec = sessionRequest(t, h, http.MethodDelete, "missing", "/history")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSessionsHandlerClear(t *testing.T) {
	sessions := newTestSessions(t)
	sess, err := sessions.EnsureSession("", time.Hour)
	if err != nil {
		t.Fatalf("ensure session: %v", err)
	}
	if err := sess.Append(session_models.Turn{Role: session_models.RoleUser, Content: "Question ?"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	h := &SessionsHandler{Sessions: sessions}
	rec := sessionRequest(t, h, http.MethodDelete, sess.ID(), "/history")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	turns, err := sess.Turns()
	if err != nil {
		t.Fatalf("turns: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("transcript not cleared: %d turns remain", len(turns))
	}

	// The session itself survives a clear.
	rec = sessionRequest(t, h, http.MethodGet, sess.ID(), "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d after clear, want 200", rec.Code)
	}
}
