package http_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/metropass/internal/adapters/http"
	"github.com/samirrijal/metropass/internal/core/domain"
	"github.com/samirrijal/metropass/internal/core/ports"
	"github.com/samirrijal/metropass/internal/core/usecases"
)

// ---- Fakes ----

type fakeTimer struct{ stopped bool }

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeScheduler struct {
	mu    sync.Mutex
	funcs []func()
	tms   []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(_ time.Duration, f func()) ports.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{}
	s.funcs = append(s.funcs, f)
	s.tms = append(s.tms, t)
	return t
}

// fire runs every settlement that was not cancelled.
func (s *fakeScheduler) fire() {
	s.mu.Lock()
	funcs := append([]func(){}, s.funcs...)
	tms := append([]*fakeTimer{}, s.tms...)
	s.funcs, s.tms = nil, nil
	s.mu.Unlock()
	for i, f := range funcs {
		if !tms[i].stopped {
			f()
		}
	}
}

type fixedIDs struct{}

func (fixedIDs) NewTransactionID() string { return "METRO-TEST0001" }

// ---- Helpers ----

type testEnv struct {
	app       *fiber.App
	sched     *fakeScheduler
	mu        sync.Mutex
	completed []domain.ConfirmationRecord
}

func setupApp(t *testing.T, maxFlows int) *testEnv {
	t.Helper()
	env := &testEnv{sched: &fakeScheduler{}}
	flows := usecases.NewFlowRegistry(func(id string) *usecases.PurchaseFlow {
		sim := usecases.NewSettlementSimulator(env.sched, 2*time.Second)
		return usecases.NewPurchaseFlow(sim, fixedIDs{}, func(r domain.ConfirmationRecord) {
			env.mu.Lock()
			env.completed = append(env.completed, r)
			env.mu.Unlock()
		})
	}, maxFlows)

	deps := &handler.Dependencies{
		Catalog:       usecases.NewCatalogService(nil),
		Flows:         flows,
		DefaultLocale: domain.LocaleVietnamese,
	}
	env.app = fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(env.app, deps)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

type flowResp struct {
	ID              string `json:"id"`
	Locale          string `json:"locale"`
	Status          string `json:"status"`
	CurrentStep     string `json:"current_step"`
	Progress        int    `json:"progress"`
	CanAdvance      bool   `json:"can_advance"`
	TicketType      *struct {
		Name string `json:"name"`
	} `json:"ticket_type"`
	Route *struct {
		Origin struct {
			Name string `json:"name"`
		} `json:"origin"`
	} `json:"route"`
	DiscountApplied bool `json:"discount_applied"`
	DiscountLine    *struct {
		Text string `json:"text"`
	} `json:"discount_line"`
	Total         int64  `json:"total"`
	TransactionID string `json:"transaction_id"`
}

func decodeFlow(t *testing.T, data []byte) flowResp {
	t.Helper()
	var f flowResp
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("decode flow: %v (%s)", err, data)
	}
	return f
}

func decodeError(t *testing.T, data []byte) handler.APIError {
	t.Helper()
	var e handler.APIError
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("decode error: %v (%s)", err, data)
	}
	return e
}

func (e *testEnv) createFlow(t *testing.T) string {
	t.Helper()
	status, body := e.do(t, "POST", "/v1/purchases", "")
	if status != 201 {
		t.Fatalf("expected 201, got %d: %s", status, body)
	}
	return decodeFlow(t, body).ID
}

// ---- Tests ----

func TestHealth(t *testing.T) {
	env := setupApp(t, 0)
	status, body := env.do(t, "GET", "/v1/health", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if !strings.Contains(string(body), `"healthy"`) {
		t.Errorf("unexpected body %s", body)
	}
}

func TestReady_NothingConfigured(t *testing.T) {
	env := setupApp(t, 0)
	status, body := env.do(t, "GET", "/v1/ready", "")
	if status != 200 {
		t.Fatalf("expected 200 with optional components absent, got %d: %s", status, body)
	}
}

func TestListTicketTypes_Locale(t *testing.T) {
	env := setupApp(t, 0)

	tests := []struct {
		name    string
		path    string
		headers []string
		want    string
	}{
		{"default vietnamese", "/v1/ticket-types", nil, "Vé một lượt"},
		{"query english", "/v1/ticket-types?lang=en", nil, "Single Trip"},
		{"accept-language english", "/v1/ticket-types", []string{"Accept-Language", "en-US,en;q=0.9"}, "Single Trip"},
		{"query wins over header", "/v1/ticket-types?lang=vi", []string{"Accept-Language", "en"}, "Vé một lượt"},
		{"unsupported language falls back", "/v1/ticket-types", []string{"Accept-Language", "fr-FR"}, "Vé một lượt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, "GET", tt.path, "", tt.headers...)
			if status != 200 {
				t.Fatalf("expected 200, got %d", status)
			}
			var resp struct {
				Data []usecases.TicketTypeView `json:"data"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				t.Fatal(err)
			}
			if len(resp.Data) != 4 || resp.Data[0].Name != tt.want {
				t.Errorf("expected first name %q, got %+v", tt.want, resp.Data)
			}
		})
	}
}

func TestFare(t *testing.T) {
	env := setupApp(t, 0)

	status, body := env.do(t, "GET", "/v1/ticket-types/3-day/fare", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var fare usecases.TicketTypeView
	_ = json.Unmarshal(body, &fare)
	if fare.Price != 90000 || fare.PriceText != "90.000 VND" {
		t.Errorf("unexpected fare %+v", fare)
	}

	status, body = env.do(t, "GET", "/v1/ticket-types/weekly/fare", "")
	if status != 422 || decodeError(t, body).Code != "unprocessable" {
		t.Errorf("expected 422 unprocessable, got %d: %s", status, body)
	}
}

func TestListStations_Pagination(t *testing.T) {
	env := setupApp(t, 0)
	req := httptest.NewRequest("GET", "/v1/stations?offset=10&limit=5", nil)
	resp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var page struct {
		Data       []usecases.StationView `json:"data"`
		Pagination handler.Pagination     `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatal(err)
	}
	if page.Pagination.Total != 14 || len(page.Data) != 4 {
		t.Errorf("expected 4 of 14 stations, got %d of %d", len(page.Data), page.Pagination.Total)
	}
	if page.Data[0].ID != "high-tech-park" {
		t.Errorf("expected high-tech-park first, got %s", page.Data[0].ID)
	}
	if link := resp.Header.Get("Link"); !strings.Contains(link, `rel="prev"`) || strings.Contains(link, `rel="next"`) {
		t.Errorf("unexpected Link header %q", link)
	}
}

func TestDestinations(t *testing.T) {
	env := setupApp(t, 0)
	status, body := env.do(t, "GET", "/v1/stations/ben-thanh/destinations", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if strings.Contains(string(body), `"ben-thanh"`) {
		t.Error("origin listed as destination")
	}

	status, _ = env.do(t, "GET", "/v1/stations/nowhere/destinations", "")
	if status != 422 {
		t.Errorf("expected 422, got %d", status)
	}
}

func TestPurchase_SingleTripFlow(t *testing.T) {
	env := setupApp(t, 0)
	id := env.createFlow(t)
	base := "/v1/purchases/" + id

	steps := []struct {
		method, path, body string
		wantStatus         int
	}{
		{"PUT", base + "/ticket-type", `{"ticket_type_id":"single-trip"}`, 200},
		{"POST", base + "/next", "", 200},
		{"PUT", base + "/stations", `{"origin":"ben-thanh","destination":"suoi-tien"}`, 200},
		{"POST", base + "/next", "", 200},
		{"PUT", base + "/payment-method", `{"payment_method_id":"visa"}`, 200},
		{"POST", base + "/submit", "", 202},
	}
	for _, s := range steps {
		status, body := env.do(t, s.method, s.path, s.body)
		if status != s.wantStatus {
			t.Fatalf("%s %s: expected %d, got %d: %s", s.method, s.path, s.wantStatus, status, body)
		}
	}

	_, body := env.do(t, "GET", base+"?lang=en", "")
	f := decodeFlow(t, body)
	if f.Status != "processing" || f.CanAdvance {
		t.Fatalf("expected processing with advance disabled, got %+v", f)
	}

	// Locked while processing
	status, body := env.do(t, "POST", base+"/back", "")
	if status != 409 || decodeError(t, body).Code != "conflict" {
		t.Errorf("expected 409 conflict, got %d: %s", status, body)
	}

	env.sched.fire()

	_, body = env.do(t, "GET", base+"?lang=en", "")
	f = decodeFlow(t, body)
	if f.Status != "complete" || f.CurrentStep != "confirmation" || f.Progress != 100 {
		t.Errorf("expected complete on confirmation, got %+v", f)
	}
	if f.TransactionID != "METRO-TEST0001" {
		t.Errorf("unexpected transaction id %q", f.TransactionID)
	}
	if f.Route == nil || f.Route.Origin.Name != "Ben Thanh" {
		t.Errorf("unexpected route %+v", f.Route)
	}
	if len(env.completed) != 1 || env.completed[0].Route == nil {
		t.Errorf("expected one completion with a route, got %+v", env.completed)
	}

	status, body = env.do(t, "POST", base+"/restart", "")
	if status != 200 || decodeFlow(t, body).Status != "collecting" {
		t.Errorf("expected restart to collecting, got %d: %s", status, body)
	}
}

func TestPurchase_MonthlyNextSubmits(t *testing.T) {
	env := setupApp(t, 0)
	id := env.createFlow(t)
	base := "/v1/purchases/" + id

	env.do(t, "PUT", base+"/ticket-type", `{"ticket_type_id":"monthly"}`)
	_, body := env.do(t, "POST", base+"/next", "")
	if got := decodeFlow(t, body).CurrentStep; got != "payment" {
		t.Fatalf("expected payment after one next, got %s", got)
	}

	_, body = env.do(t, "PUT", base+"/discount", `{"national_id":"079123456789"}`)
	f := decodeFlow(t, body)
	if !f.DiscountApplied || f.DiscountLine == nil || f.DiscountLine.Text != "-50%" {
		t.Fatalf("expected discount line, got %+v", f)
	}
	if f.Total != 300000 {
		t.Errorf("expected full price total, got %d", f.Total)
	}

	env.do(t, "PUT", base+"/payment-method", `{"payment_method_id":"momo"}`)
	status, body := env.do(t, "POST", base+"/next", "")
	if status != 200 || decodeFlow(t, body).Status != "processing" {
		t.Fatalf("expected next to submit, got %d: %s", status, body)
	}
	env.sched.fire()

	if len(env.completed) != 1 || env.completed[0].Route != nil || !env.completed[0].DiscountApplied {
		t.Errorf("unexpected completion %+v", env.completed)
	}
}

func TestPurchase_IneligibleDiscount(t *testing.T) {
	env := setupApp(t, 0)
	base := "/v1/purchases/" + env.createFlow(t)

	status, body := env.do(t, "PUT", base+"/discount", `{"national_id":"12345"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if decodeFlow(t, body).DiscountApplied {
		t.Error("expected discount not applied")
	}
}

func TestPurchase_Errors(t *testing.T) {
	env := setupApp(t, 0)
	base := "/v1/purchases/" + env.createFlow(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"missing flow", "GET", "/v1/purchases/nope", "", 404, "not_found"},
		{"unknown ticket type", "PUT", base + "/ticket-type", `{"ticket_type_id":"weekly"}`, 422, "unprocessable"},
		{"missing field", "PUT", base + "/ticket-type", `{}`, 422, "validation_error"},
		{"bad json", "PUT", base + "/ticket-type", `{`, 400, "bad_request"},
		{"next incomplete", "POST", base + "/next", "", 409, "conflict"},
		{"stations not applicable", "PUT", base + "/stations", `{"origin":"ben-thanh"}`, 409, "conflict"},
		{"restart before complete", "POST", base + "/restart", "", 409, "conflict"},
		{"unknown payment method", "PUT", base + "/payment-method", `{"payment_method_id":"cash"}`, 422, "unprocessable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, tt.method, tt.path, tt.body)
			if status != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, status, body)
			}
			if code := decodeError(t, body).Code; code != tt.wantCode {
				t.Errorf("expected code %q, got %q", tt.wantCode, code)
			}
		})
	}
}

func TestPurchase_SameStationRejected(t *testing.T) {
	env := setupApp(t, 0)
	base := "/v1/purchases/" + env.createFlow(t)
	env.do(t, "PUT", base+"/ticket-type", `{"ticket_type_id":"single-trip"}`)

	status, body := env.do(t, "PUT", base+"/stations", `{"origin":"ba-son","destination":"ba-son"}`)
	if status != 422 {
		t.Fatalf("expected 422, got %d: %s", status, body)
	}
	if e := decodeError(t, body); e.Details["Destination"] == "" {
		t.Errorf("expected a destination field error, got %+v", e)
	}
}

func TestPurchase_DeleteCancelsSettlement(t *testing.T) {
	env := setupApp(t, 0)
	id := env.createFlow(t)
	base := "/v1/purchases/" + id

	env.do(t, "PUT", base+"/ticket-type", `{"ticket_type_id":"daily"}`)
	env.do(t, "PUT", base+"/payment-method", `{"payment_method_id":"napas"}`)
	if status, body := env.do(t, "POST", base+"/submit", ""); status != 202 {
		t.Fatalf("expected 202, got %d: %s", status, body)
	}

	if status, _ := env.do(t, "DELETE", base, ""); status != 204 {
		t.Fatalf("expected 204, got %d", status)
	}
	env.sched.fire()

	if len(env.completed) != 0 {
		t.Errorf("expected no completion after delete, got %d", len(env.completed))
	}
	if status, _ := env.do(t, "GET", base, ""); status != 404 {
		t.Errorf("expected 404 after delete, got %d", status)
	}
}

func TestPurchase_TooManyFlows(t *testing.T) {
	env := setupApp(t, 1)
	env.createFlow(t)
	status, body := env.do(t, "POST", "/v1/purchases", "")
	if status != 503 {
		t.Errorf("expected 503, got %d: %s", status, body)
	}
}

func TestPurchase_NoStore(t *testing.T) {
	env := setupApp(t, 0)
	id := env.createFlow(t)
	req := httptest.NewRequest("GET", "/v1/purchases/"+id, nil)
	resp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected no-store, got %q", cc)
	}
	if resp.Header.Get("ETag") != "" {
		t.Error("expected no ETag on purchase state")
	}
}

func TestCatalog_ETag(t *testing.T) {
	env := setupApp(t, 0)
	req := httptest.NewRequest("GET", "/v1/payment-methods", nil)
	resp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag")
	}

	req = httptest.NewRequest("GET", "/v1/payment-methods", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err = env.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

func TestGraphQL(t *testing.T) {
	env := setupApp(t, 0)
	id := env.createFlow(t)
	env.do(t, "PUT", "/v1/purchases/"+id+"/ticket-type", `{"ticket_type_id":"daily"}`)

	query := `{"query":"{ ticketTypes(lang: \"en\") { id name price } purchase(id: \"` + id + `\") { status current_step total_text ticket_type { id } } }"}`
	status, body := env.do(t, "POST", "/graphql", query)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var result struct {
		Data struct {
			TicketTypes []struct {
				ID    string `json:"id"`
				Name  string `json:"name"`
				Price int64  `json:"price"`
			} `json:"ticketTypes"`
			Purchase struct {
				Status      string `json:"status"`
				CurrentStep string `json:"current_step"`
				TotalText   string `json:"total_text"`
				TicketType  struct {
					ID string `json:"id"`
				} `json:"ticket_type"`
			} `json:"purchase"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
	if len(result.Data.TicketTypes) != 4 || result.Data.TicketTypes[1].Name != "Daily Pass" {
		t.Errorf("unexpected ticket types %+v", result.Data.TicketTypes)
	}
	p := result.Data.Purchase
	if p.Status != "collecting" || p.CurrentStep != "select-ticket-type" || p.TicketType.ID != "daily" || p.TotalText != "40.000 VND" {
		t.Errorf("unexpected purchase %+v", p)
	}
}
