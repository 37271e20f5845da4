package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/distributed-ticket-reservation/internal/database"
	"github.com/iliyamo/distributed-ticket-reservation/internal/protocol"
	"github.com/iliyamo/distributed-ticket-reservation/internal/repository"
)

// newTestHandler builds a ReservationHandler over an in-memory database
// holding one film with one session of the given capacity.
func newTestHandler(t *testing.T, capacity uint32) (*ReservationHandler, *sql.DB, uint64) {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()
	if err := database.EnsureSchema(ctx, db, "sqlite"); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO films (title, category, duration_minutes) VALUES (?, ?, ?)`,
		"Test Film", "Drama", 120)
	if err != nil {
		t.Fatalf("insert film: %v", err)
	}
	filmID, _ := res.LastInsertId()
	res, err = db.ExecContext(ctx,
		`INSERT INTO sessions (film_id, starts_at, total_capacity, available_count) VALUES (?, ?, ?, ?)`,
		filmID, "2024-03-01 19:00", capacity, capacity)
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	sessionID, _ := res.LastInsertId()

	h := NewReservationHandler(
		repository.NewFilmRepo(db),
		repository.NewSessionRepo(db),
		repository.NewPurchaseRepo(db, repository.NewCustomerRepo(db)),
		nil,
	)
	return h, db, uint64(sessionID)
}

func postPurchase(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/purchases", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) protocol.Result {
	t.Helper()
	var res protocol.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return res
}

func TestPurchaseValidation(t *testing.T) {
	h, db, sessionID := newTestHandler(t, 5)
	e := echo.New()
	e.POST("/v1/purchases", h.Purchase)

	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"malformed json", `{`, "invalid request body"},
		{"missing name", fmt.Sprintf(`{"email":"a@b.com","session_id":%d,"quantity":1}`, sessionID), "customer name is required"},
		{"blank name", fmt.Sprintf(`{"name":"   ","email":"a@b.com","session_id":%d,"quantity":1}`, sessionID), "customer name is required"},
		{"missing email", fmt.Sprintf(`{"name":"Ana","session_id":%d,"quantity":1}`, sessionID), "customer email is required"},
		{"zero session", `{"name":"Ana","email":"a@b.com","session_id":0,"quantity":1}`, "invalid session id"},
		{"zero quantity", fmt.Sprintf(`{"name":"Ana","email":"a@b.com","session_id":%d,"quantity":0}`, sessionID), "invalid ticket quantity"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := postPurchase(e, c.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if res := decodeResult(t, rec); res.Message != c.message {
				t.Fatalf("message = %q, want %q", res.Message, c.message)
			}
		})
	}

	// Rejected requests must leave storage untouched.
	var available uint32
	if err := db.QueryRow(`SELECT available_count FROM sessions WHERE id = ?`, sessionID).Scan(&available); err != nil {
		t.Fatalf("read session: %v", err)
	}
	if available != 5 {
		t.Fatalf("available = %d, want 5", available)
	}
}

func TestPurchaseStatusMapping(t *testing.T) {
	h, _, sessionID := newTestHandler(t, 2)
	e := echo.New()
	e.POST("/v1/purchases", h.Purchase)

	rec := postPurchase(e, `{"name":"Ana","email":"a@b.com","session_id":9999,"quantity":1}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown session: status = %d, want 404", rec.Code)
	}
	if res := decodeResult(t, rec); res.Message != "session not found" {
		t.Fatalf("message = %q", res.Message)
	}

	rec = postPurchase(e, fmt.Sprintf(`{"name":"Ana","email":"a@b.com","session_id":%d,"quantity":3}`, sessionID))
	if rec.Code != http.StatusConflict {
		t.Fatalf("oversized purchase: status = %d, want 409", rec.Code)
	}
	if res := decodeResult(t, rec); res.Message != "insufficient tickets available" {
		t.Fatalf("message = %q", res.Message)
	}

	rec = postPurchase(e, fmt.Sprintf(`{"name":"Ana","email":"a@b.com","session_id":%d,"quantity":2}`, sessionID))
	if rec.Code != http.StatusOK {
		t.Fatalf("valid purchase: status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	res := decodeResult(t, rec)
	if !res.OK() || res.Message != "purchase completed" {
		t.Fatalf("result = %+v", res)
	}
	var data protocol.PurchaseData
	if err := json.Unmarshal(res.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Remaining != 0 {
		t.Fatalf("remaining = %d, want 0", data.Remaining)
	}
}

func TestListSessionsRejectsBadFilmID(t *testing.T) {
	h, _, _ := newTestHandler(t, 5)
	e := echo.New()
	e.GET("/v1/films/:id/sessions", h.ListSessions)

	for _, id := range []string{"abc", "0", "-1"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/films/"+id+"/sessions", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("id %q: status = %d, want 400", id, rec.Code)
		}
	}
}

func TestConcurrentPurchasesNeverOversell(t *testing.T) {
	const capacity = 10
	const buyers = 20

	h, db, sessionID := newTestHandler(t, capacity)
	e := echo.New()
	e.POST("/v1/purchases", h.Purchase)

	var wg sync.WaitGroup
	codes := make([]int, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"name":"Buyer %d","email":"buyer%d@example.com","session_id":%d,"quantity":1}`, i, i, sessionID)
			codes[i] = postPurchase(e, body).Code
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, code := range codes {
		switch code {
		case http.StatusOK:
			successes++
		case http.StatusConflict:
		default:
			t.Fatalf("unexpected status %d", code)
		}
	}
	if successes != capacity {
		t.Fatalf("successes = %d, want exactly %d", successes, capacity)
	}

	var available uint32
	if err := db.QueryRow(`SELECT available_count FROM sessions WHERE id = ?`, sessionID).Scan(&available); err != nil {
		t.Fatalf("read session: %v", err)
	}
	if available != 0 {
		t.Fatalf("available = %d, want 0 (never negative, never oversold)", available)
	}

	var sold int
	if err := db.QueryRow(`SELECT COALESCE(SUM(quantity), 0) FROM purchases WHERE session_id = ?`, sessionID).Scan(&sold); err != nil {
		t.Fatalf("sum purchases: %v", err)
	}
	if sold != capacity {
		t.Fatalf("sold = %d, want %d", sold, capacity)
	}
}
