package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"manageros/internal/auth"
	"manageros/internal/logostore"
	"manageros/internal/models"
	"manageros/internal/services"
)

func setupRouter(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Company{}, &models.Client{}, &models.Product{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	logos, err := logostore.New(t.TempDir())
	if err != nil {
		t.Fatalf("logo store: %v", err)
	}
	return New(db, logos), db
}

func TestHealthAndPing(t *testing.T) {
	h, _ := setupRouter(t)

	for _, path := range []string{"/health", "/ping"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s expected 200 got %d", path, w.Code)
		}
	}
}

func TestPrintHTMLMissingOrder(t *testing.T) {
	h, _ := setupRouter(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/imprimir/999", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Fatalf("print route must answer HTML, got %s", ct)
	}
	if !strings.Contains(w.Body.String(), "Ordem não encontrada") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestPrintPDFMissingOrderIsJSON(t *testing.T) {
	h, _ := setupRouter(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pdf/999", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("pdf route errors must be JSON, got %s", ct)
	}
}

func TestPrintRoutesRenderExistingOrder(t *testing.T) {
	h, db := setupRouter(t)

	company := models.Company{Nome: "Oficina Central"}
	client := models.Client{Nome: "João"}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("company: %v", err)
	}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	svc := services.NewOrderService(db, nil)
	id, err := svc.Create(services.OrderInput{
		Numero:    "OS-ROUTER-1",
		EmpresaID: company.ID,
		ClienteID: client.ID,
		Itens:     []services.ItemInput{{Descricao: "Serviço", Quantidade: 1, ValorUnitario: 50}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/imprimir/%d", id), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("imprimir expected 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "OS-ROUTER-1") {
		t.Fatal("printed page missing order number")
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/pdf/%d", id), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("pdf expected 200 got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected pdf content-type got %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "ordem-servico-OS-ROUTER-1.pdf") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF-") {
		t.Fatal("body is not a PDF")
	}
}

func TestAdminRoutesRequireAdminSession(t *testing.T) {
	h, db := setupRouter(t)

	admin := models.User{Nome: "Admin", Email: "a@test", Senha: "x", Role: models.RoleAdmin}
	plain := models.User{Nome: "User", Email: "u@test", Senha: "x", Role: models.RoleUser}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("admin: %v", err)
	}
	if err := db.Create(&plain).Error; err != nil {
		t.Fatalf("user: %v", err)
	}

	// No session.
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/usuarios", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}

	// Plain user session.
	r := httptest.NewRequest(http.MethodGet, "/api/usuarios", nil)
	r.Header.Set("Authorization", "Bearer "+auth.TokenFor(plain.ID))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", w.Code)
	}

	// Admin session.
	r = httptest.NewRequest(http.MethodGet, "/api/usuarios", nil)
	r.Header.Set("Authorization", "Bearer "+auth.TokenFor(admin.ID))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestCrudRoutesAreWired(t *testing.T) {
	h, _ := setupRouter(t)

	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/api/clientes", `{"nome":"Maria"}`, http.StatusOK},
		{http.MethodGet, "/api/clientes", "", http.StatusOK},
		{http.MethodPost, "/api/produtos", `{"nome":"Peça","preco":10}`, http.StatusOK},
		{http.MethodGet, "/api/produtos", "", http.StatusOK},
		{http.MethodPost, "/api/empresas", `{"nome":"Oficina"}`, http.StatusOK},
		{http.MethodGet, "/api/ordens", "", http.StatusOK},
		{http.MethodGet, "/api/clientes/999", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		var r *http.Request
		if tc.body != "" {
			r = httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		} else {
			r = httptest.NewRequest(tc.method, tc.path, nil)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != tc.want {
			t.Fatalf("%s %s expected %d got %d body=%s", tc.method, tc.path, tc.want, w.Code, w.Body.String())
		}
	}
}
