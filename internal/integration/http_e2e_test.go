//go:build integration || !unit

package integration

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"staybooker/internal/adapters/authsvc"
	server "staybooker/internal/adapters/http_server"
	redisad "staybooker/internal/adapters/redis"
	"staybooker/internal/app"
	"staybooker/internal/auth"
	mysqlrepo "staybooker/internal/storage/mysql"
)

const authSecret = "e2e-secret"

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = filepath.Join("..", "..", "migrations")
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(b)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// fakeAuthService stands in for the external auth collaborator: it issues
// HS256 tokens the adapter verifies with the shared secret.
func fakeAuthService(t *testing.T) *httptest.Server {
	t.Helper()
	issue := func(w http.ResponseWriter) {
		claims := jwt.MapClaims{
			"sub":   "u1",
			"email": "guest@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
			"iat":   time.Now().Unix(),
		}
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(authSecret))
		if err != nil {
			w.WriteHeader(500)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": tok})
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sessions", func(w http.ResponseWriter, r *http.Request) { issue(w) })
	mux.HandleFunc("GET /v1/sessions/current", func(w http.ResponseWriter, r *http.Request) { issue(w) })
	mux.HandleFunc("POST /v1/sessions/refresh", func(w http.ResponseWriter, r *http.Request) { issue(w) })
	mux.HandleFunc("DELETE /v1/sessions/current", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(204) })
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_BookingConfirmation(t *testing.T) {
	// Isolated MySQL container
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=staybooker",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/staybooker?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC", hostPort)

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	// Seed catalogue and booking
	for _, q := range []struct {
		sql  string
		args []any
	}{
		{`INSERT INTO hotels (id, name, description, location, image_url, price_per_night, rating, amenities) VALUES (?,?,?,?,?,?,?,?)`,
			[]any{"h1", "Grand Riviera", "Riverside suites with views", "Paris", "", 320, 4.8, `["wifi","pool","spa","gym"]`}},
		{`INSERT INTO hotels (id, name, description, location, image_url, price_per_night, rating, amenities) VALUES (?,?,?,?,?,?,?,?)`,
			[]any{"h2", "Spartan Inn", "Minimal comfort", "sparta", "", 90, 4.1, `[]`}},
		{`INSERT INTO rooms (id, hotel_id, room_number, type, price, is_available) VALUES (?,?,?,?,?,?)`,
			[]any{"r1", "h1", "204", "Double Deluxe", 320, 1}},
		{`INSERT INTO bookings (id, user_id, hotel_id, room_id, check_in, check_out, total_price, status) VALUES (?,?,?,?,?,?,?,?)`,
			[]any{"b1", "u1", "h1", "r1", "2025-03-10", "2025-03-12", 240, "confirmed"}},
		{`INSERT INTO admin_users (user_id) VALUES (?)`, []any{"u1"}},
	} {
		if _, err := db.Exec(q.sql, q.args...); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	// Full wiring: repo, cache, auth service adapter, gate, services, router
	repo := mysqlrepo.New(db)
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)

	authTS := fakeAuthService(t)
	authClient, err := authsvc.New(authTS.URL, authSecret, 100)
	if err != nil {
		t.Fatalf("auth client: %v", err)
	}
	gate := auth.NewGate(authClient, repo)
	t.Cleanup(gate.Close)

	srv := server.New()
	srv.MountHandlers(server.NewHandlers(
		app.NewSearchService(repo),
		app.NewHotelService(repo, cache, 10*time.Minute),
		app.NewBookingLookup(repo, repo, repo),
		gate,
	))
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)

	// Unauthenticated confirmation redirects to login without touching data
	noRedirect := &http.Client{CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	res, err := noRedirect.Get(ts.URL + "/v1/bookings/confirm?id=b1")
	if err != nil {
		t.Fatalf("GET confirm: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusSeeOther || res.Header.Get("Location") != "/login" {
		t.Fatalf("expected login redirect, got %d -> %q", res.StatusCode, res.Header.Get("Location"))
	}

	// Sign in through the gate
	res, err = http.Post(ts.URL+"/v1/auth/login", "application/json",
		bytes.NewBufferString(`{"email":"guest@example.com","password":"pw"}`))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login status: %d", res.StatusCode)
	}

	// Search: substring filter plus rating-descending order
	res, err = http.Get(ts.URL + "/v1/hotels/search?location=par")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var searchBody struct {
		Items []app.HotelCard `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchBody); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	res.Body.Close()
	if len(searchBody.Items) != 2 {
		t.Fatalf("expected Paris and sparta, got %+v", searchBody.Items)
	}
	if searchBody.Items[0].Rating < searchBody.Items[1].Rating {
		t.Fatalf("not rating-descending: %+v", searchBody.Items)
	}
	if len(searchBody.Items[0].TopAmenities) != 3 {
		t.Fatalf("amenities not truncated to 3: %v", searchBody.Items[0].TopAmenities)
	}

	// Confirmation resolves booking -> hotel -> room
	res, err = http.Get(ts.URL + "/v1/bookings/confirm?id=b1")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	var confirmBody struct {
		State        string            `json:"state"`
		Confirmation *app.Confirmation `json:"confirmation"`
	}
	if err := json.NewDecoder(res.Body).Decode(&confirmBody); err != nil {
		t.Fatalf("decode confirm: %v", err)
	}
	res.Body.Close()
	if confirmBody.State != "found" || confirmBody.Confirmation == nil {
		t.Fatalf("confirmation: %+v", confirmBody)
	}
	c := confirmBody.Confirmation
	if c.CheckIn != "March 10, 2025" || c.CheckOut != "March 12, 2025" {
		t.Fatalf("dates: %q / %q", c.CheckIn, c.CheckOut)
	}
	if c.TotalPrice != "$240" {
		t.Fatalf("total: %q", c.TotalPrice)
	}
	if c.HotelName != "Grand Riviera" || c.RoomNumber != "204" {
		t.Fatalf("view: %+v", c)
	}

	// Admin surface works for the ACL-listed user
	res, err = http.Get(ts.URL + "/v1/admin/hotels")
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("admin list status: %d", res.StatusCode)
	}
}
