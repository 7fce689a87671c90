package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"manageros/internal/auth"
	"manageros/internal/handlers"
	"manageros/internal/httpx"
	"manageros/internal/logostore"
	"manageros/internal/models"
	"manageros/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, logos *logostore.Store) http.Handler {
	mux := http.NewServeMux()

	// The role resolver lets the admin middleware re-check the session user
	// against the database on every gated request.
	auth.SetRoleResolver(func(_ context.Context, uid uint) (string, bool) {
		var user models.User
		if err := db.Select("role").First(&user, uid).Error; err != nil {
			return "", false
		}
		return user.Role, true
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "degraded", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "pong"})
	})

	ah := handlers.NewAuthHandler(db)
	mux.HandleFunc("POST /api/auth/login", ah.Login)
	mux.HandleFunc("POST /api/auth/logout", ah.Logout)
	mux.Handle("POST /api/auth/register", auth.RequireAdmin(http.HandlerFunc(ah.Register)))
	mux.Handle("GET /api/auth/me", auth.RequireAuth(http.HandlerFunc(ah.Me)))

	uh := handlers.NewUserHandler(db)
	mux.Handle("GET /api/usuarios", auth.RequireAdmin(http.HandlerFunc(uh.List)))
	mux.Handle("DELETE /api/usuarios/{id}", auth.RequireAdmin(http.HandlerFunc(uh.Delete)))

	ch := handlers.NewCompanyHandler(db, logos)
	mux.HandleFunc("POST /api/empresas", ch.Create)
	mux.HandleFunc("GET /api/empresas", ch.List)
	mux.HandleFunc("GET /api/empresas/{id}", ch.Get)
	mux.HandleFunc("PUT /api/empresas/{id}", ch.Update)
	mux.HandleFunc("DELETE /api/empresas/{id}", ch.Delete)

	clh := handlers.NewClientHandler(db)
	mux.HandleFunc("POST /api/clientes", clh.Create)
	mux.HandleFunc("GET /api/clientes", clh.List)
	mux.HandleFunc("GET /api/clientes/{id}", clh.Get)
	mux.HandleFunc("PUT /api/clientes/{id}", clh.Update)
	mux.HandleFunc("DELETE /api/clientes/{id}", clh.Delete)

	ph := handlers.NewProductHandler(db)
	mux.HandleFunc("POST /api/produtos", ph.Create)
	mux.HandleFunc("GET /api/produtos", ph.List)
	mux.HandleFunc("GET /api/produtos/{id}", ph.Get)
	mux.HandleFunc("PUT /api/produtos/{id}", ph.Update)
	mux.HandleFunc("DELETE /api/produtos/{id}", ph.Delete)

	svc := services.NewOrderService(db, logos)
	oh := handlers.NewOrderHandler(svc)
	mux.HandleFunc("POST /api/ordens", oh.Create)
	mux.HandleFunc("GET /api/ordens", oh.List)
	mux.HandleFunc("GET /api/ordens/{id}", oh.Get)
	mux.HandleFunc("PUT /api/ordens/{id}", oh.Update)
	mux.HandleFunc("DELETE /api/ordens/{id}", oh.Delete)

	prh := handlers.NewPrintHandler(svc)
	mux.HandleFunc("GET /imprimir/{id}", prh.HTML)
	mux.HandleFunc("GET /pdf/{id}", prh.PDF)

	return withRecover(withLogging(auth.Middleware(mux)))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic: %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
