package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"craftmart/internal/domain"
	"craftmart/internal/events"
	"craftmart/internal/repository"
	"craftmart/internal/service"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	r := repository.NewMemory()
	rec := &events.Recorder{}
	return NewServer(Services{
		Auth:         service.NewAuthService(r.Users, "test-secret", time.Hour),
		Products:     service.NewProductService(r.Products, r.Categories, r.Users),
		Orders:       service.NewOrderService(r.Products, r.Users, r.Orders, r.Tx, rec, nil),
		CustomOrders: service.NewCustomOrderService(r.Users, r.CustomOrders, r.Tx, rec, nil),
	}, Options{})
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func register(t *testing.T, s *Server, phone string, role domain.Role) string {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/v1/public/api/auth/register", "", map[string]any{
		"name": "u" + phone, "phone": phone, "password": "secret1", "role": role, "city": "Pune",
		"userAdditional": map[string]any{"customorder": true},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register code %v: %s", w.Code, w.Body)
	}
	var ack domain.Ack
	if err := json.Unmarshal(w.Body.Bytes(), &ack); err != nil || !ack.Status {
		t.Fatalf("register ack: %s", w.Body)
	}
	return ack.Message
}

func TestAuthFlow(t *testing.T) {
	s := setupServer(t)
	register(t, s, "100", domain.RoleBuyer)

	w := doJSON(t, s, http.MethodPost, "/v1/public/api/auth/login", "", map[string]any{"phone": "100", "password": "nope"})
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"status":false`)) {
		t.Fatalf("bad login: %v %s", w.Code, w.Body)
	}
	w = doJSON(t, s, http.MethodPost, "/v1/public/api/auth/register", "", map[string]any{"name": "x", "phone": "100", "password": "secret1"})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/v1/api/user/info", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("info without token code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/v1/api/user/info", "garbage", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("info with bad token code %v", w.Code)
	}
}

func TestProductFlow(t *testing.T) {
	s := setupServer(t)
	seller := register(t, s, "1", domain.RoleSeller)

	// plain value part instead of a blob
	var body bytes.Buffer
	body.WriteString("--XX\r\nContent-Disposition: form-data; name=\"product\"\r\n\r\n")
	body.WriteString(`{"name":"Basket","price":12.5,"sellunit":"piece"}`)
	body.WriteString("\r\n--XX--\r\n")
	req := httptest.NewRequest(http.MethodPost, "/v1/api/product/saveorupdate", &body)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=XX")
	req.Header.Set("Authorization", "Bearer "+seller)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("save code %v: %s", w.Code, w.Body)
	}

	w = doJSON(t, s, http.MethodGet, "/v1/public/api/product/filter-latest?page=0&size=5", "", nil)
	var page domain.ProductPage
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil || page.TotalElements != 1 {
		t.Fatalf("latest: %v %s", err, w.Body)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"price":12.5`)) {
		t.Fatalf("price not a json number: %s", w.Body)
	}

	w = doJSON(t, s, http.MethodPost, "/v1/public/api/product/filter", "", map[string]any{"name": "bask", "minPrice": 10})
	var list []domain.Product
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("filter: %v %s", err, w.Body)
	}

	w = doJSON(t, s, http.MethodGet, "/v1/api/product/delete/id/1", seller, nil)
	if w.Code != http.StatusOK || w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("delete code %v cache %q", w.Code, w.Header().Get("Cache-Control"))
	}
	w = doJSON(t, s, http.MethodGet, "/v1/api/product/delete/id/1", seller, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete code %v", w.Code)
	}
}

func TestStatusEndpoint_BadInput(t *testing.T) {
	s := setupServer(t)
	tok := register(t, s, "1", domain.RoleSeller)

	w := doJSON(t, s, http.MethodGet, "/v1/api/order/status/id/1/shipped", tok, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown status code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/v1/api/order/status/id/abc/confirmed", tok, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/v1/api/order/status/id/77/CONFIRMED", tok, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing order code %v", w.Code)
	}
}

func TestLatestProducts_HugePage(t *testing.T) {
	s := setupServer(t)
	w := doJSON(t, s, http.MethodGet, "/v1/public/api/product/filter-latest?page=92233720368547759&size=100", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("huge page code %v: %s", w.Code, w.Body)
	}
	w = doJSON(t, s, http.MethodGet, "/v1/public/api/product/filter-latest?page=1000&size=100", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("page past end code %v", w.Code)
	}
}
