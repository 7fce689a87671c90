package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"manageros/internal/logostore"
	"manageros/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Company{}, &models.Client{}, &models.Product{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func setupLogoStore(t *testing.T) (*logostore.Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := logostore.New(dir)
	if err != nil {
		t.Fatalf("logo store: %v", err)
	}
	return s, dir
}

func logoFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func sampleLogoURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake png bytes"))
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}

func withID(r *http.Request, id uint) *http.Request {
	r.SetPathValue("id", strconv.FormatUint(uint64(id), 10))
	return r
}

func TestCompanyCreateStoresLogoFile(t *testing.T) {
	db := setupTestDB(t)
	logos, dir := setupLogoStore(t)
	h := NewCompanyHandler(db, logos)

	body := `{"nome":"Oficina Central","cnpj":"12.345.678/0001-90","logo":"` + sampleLogoURI() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/empresas", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if files := logoFiles(t, dir); len(files) != 1 {
		t.Fatalf("expected exactly one logo file, got %v", files)
	}

	var company models.Company
	if err := db.First(&company).Error; err != nil {
		t.Fatalf("load company: %v", err)
	}
	if company.Logo == "" {
		t.Fatal("logo filename not persisted")
	}
}

func TestCompanyCreateRequiresName(t *testing.T) {
	db := setupTestDB(t)
	logos, _ := setupLogoStore(t)
	h := NewCompanyHandler(db, logos)

	req := httptest.NewRequest(http.MethodPost, "/api/empresas", strings.NewReader(`{"cnpj":"x"}`))
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}

func TestCompanyGetReturnsLogoData(t *testing.T) {
	db := setupTestDB(t)
	logos, _ := setupLogoStore(t)
	h := NewCompanyHandler(db, logos)

	name, err := logos.Put([]byte("fake png bytes"))
	if err != nil {
		t.Fatalf("put logo: %v", err)
	}
	company := models.Company{Nome: "Oficina", Logo: name}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := withID(httptest.NewRequest(http.MethodGet, "/api/empresas/1", nil), company.ID)
	w := httptest.NewRecorder()
	h.Get(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	got := decodeBody(t, w)
	data, _ := got["logoData"].(string)
	if !strings.HasPrefix(data, "data:image/png;base64,") {
		t.Fatalf("logoData missing or malformed: %q", data)
	}
}

func TestCompanyUpdateReplacesLogoFile(t *testing.T) {
	db := setupTestDB(t)
	logos, dir := setupLogoStore(t)
	h := NewCompanyHandler(db, logos)

	oldName, err := logos.Put([]byte("old bytes"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	company := models.Company{Nome: "Oficina", Logo: oldName}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := `{"nome":"Oficina Nova","logo":"` + sampleLogoURI() + `"}`
	req := withID(httptest.NewRequest(http.MethodPut, "/api/empresas/1", strings.NewReader(body)), company.ID)
	w := httptest.NewRecorder()
	h.Update(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	files := logoFiles(t, dir)
	if len(files) != 1 {
		t.Fatalf("expected exactly one logo file after replacement, got %v", files)
	}
	if files[0] == oldName {
		t.Fatal("old logo file survived the replacement")
	}

	var updated models.Company
	if err := db.First(&updated, company.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if updated.Nome != "Oficina Nova" || updated.Logo == oldName {
		t.Fatalf("row not updated: %+v", updated)
	}
}

func TestCompanyUpdateWithoutNewLogoKeepsFile(t *testing.T) {
	db := setupTestDB(t)
	logos, dir := setupLogoStore(t)
	h := NewCompanyHandler(db, logos)

	name, err := logos.Put([]byte("old bytes"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	company := models.Company{Nome: "Oficina", Logo: name}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	// A non data URI logo value means "leave it alone".
	body := `{"nome":"Oficina","logo":"` + name + `"}`
	req := withID(httptest.NewRequest(http.MethodPut, "/api/empresas/1", strings.NewReader(body)), company.ID)
	w := httptest.NewRecorder()
	h.Update(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if files := logoFiles(t, dir); len(files) != 1 || files[0] != name {
		t.Fatalf("logo file changed unexpectedly: %v", files)
	}
}

func TestCompanyDeleteRemovesLogoFile(t *testing.T) {
	db := setupTestDB(t)
	logos, dir := setupLogoStore(t)
	h := NewCompanyHandler(db, logos)

	name, err := logos.Put([]byte("bytes"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	company := models.Company{Nome: "Oficina", Logo: name}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := withID(httptest.NewRequest(http.MethodDelete, "/api/empresas/1", nil), company.ID)
	w := httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if files := logoFiles(t, dir); len(files) != 0 {
		t.Fatalf("logo file survived company deletion: %v", files)
	}
}

func TestCompanyGetMissing(t *testing.T) {
	db := setupTestDB(t)
	logos, _ := setupLogoStore(t)
	h := NewCompanyHandler(db, logos)

	req := withID(httptest.NewRequest(http.MethodGet, "/api/empresas/999", nil), 999)
	w := httptest.NewRecorder()
	h.Get(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}
