package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/naveenspark/vendora/pkg/client"
	"github.com/naveenspark/vendora/pkg/domain"
	"github.com/naveenspark/vendora/pkg/session"
)

type call struct {
	method string
	path   string
	query  string
	auth   string
	body   string
}

type backend struct {
	mu    sync.Mutex
	calls []call
}

func (b *backend) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, call{r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("Authorization"), string(body)})
}

func (b *backend) all() []call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]call(nil), b.calls...)
}

func (b *backend) last(t *testing.T) call {
	t.Helper()
	calls := b.all()
	if len(calls) == 0 {
		t.Fatal("no request reached the backend")
	}
	return calls[len(calls)-1]
}

// setup points the CLI at a test backend and a fresh home directory.
func setup(t *testing.T, h http.HandlerFunc) (*backend, string) {
	t.Helper()
	b := &backend{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("VENDORA_API_URL", srv.URL)
	t.Setenv("VENDORA_TOKEN", "")
	return b, home
}

func signIn(t *testing.T, home string) {
	t.Helper()
	store := session.New(session.NewFileStorage(filepath.Join(home, ".vendora", "session.json")))
	user := &domain.UserProfile{ID: "u1", FullName: "Ada Admin", Email: "ada@vendora.io", Role: domain.RoleAdmin}
	if err := store.Login("tok", user); err != nil {
		t.Fatal(err)
	}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root, d := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := execute(context.Background(), root, d)
	return out.String(), err
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func TestLoginPasswordStdin(t *testing.T) {
	b, home := setup(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{
			"token": "fresh",
			"user":  map[string]any{"_id": "u2", "fullName": "Bo Manager", "email": "bo@vendora.io", "role": "manager"},
		})
	})

	out, err := run(t, "s3cret\n", "login", "--email", " bo@vendora.io ", "--password-stdin")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Signed in as Bo Manager (manager)") {
		t.Errorf("unexpected output %q", out)
	}

	c := b.last(t)
	if c.method != "POST" || c.path != "/auth/login" {
		t.Errorf("request = %s %s, want POST /auth/login", c.method, c.path)
	}
	if c.auth != "" {
		t.Errorf("login sent Authorization %q", c.auth)
	}
	var creds map[string]string
	if err := json.Unmarshal([]byte(c.body), &creds); err != nil {
		t.Fatal(err)
	}
	if creds["email"] != "bo@vendora.io" || creds["password"] != "s3cret" {
		t.Errorf("credentials = %v", creds)
	}

	store := session.New(session.NewFileStorage(filepath.Join(home, ".vendora", "session.json")))
	if got := store.Token(); got != "fresh" {
		t.Errorf("stored token = %q, want fresh", got)
	}
}

func TestLoginFailureKeepsSession(t *testing.T) {
	_, home := setup(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusUnauthorized, map[string]any{"message": "Invalid credentials"})
	})
	signIn(t, home)

	_, err := run(t, "wrong\n", "login", "--email", "ada@vendora.io", "--password-stdin")
	if err == nil || err.Error() != "Invalid credentials" {
		t.Fatalf("err = %v, want Invalid credentials", err)
	}
	if !client.IsStatus(err, http.StatusUnauthorized) {
		t.Error("the API error should stay wrapped")
	}

	store := session.New(session.NewFileStorage(filepath.Join(home, ".vendora", "session.json")))
	if got := store.Token(); got != "tok" {
		t.Errorf("token = %q, a failed login must not touch the session", got)
	}
}

func TestLoginValidation(t *testing.T) {
	b, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := run(t, "\n", "login", "--email", "not-an-email", "--password-stdin")
	if err == nil || !strings.Contains(err.Error(), "email must be a valid email address") {
		t.Errorf("err = %v", err)
	}
	_, err = run(t, "", "login", "--email", "ada@vendora.io")
	if err == nil || !strings.Contains(err.Error(), "used together") {
		t.Errorf("err = %v", err)
	}
	if n := len(b.all()); n != 0 {
		t.Errorf("%d requests sent", n)
	}
}

func TestSignedOut(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := run(t, "", "orders", "list")
	if !errors.Is(err, errSignedOut) {
		t.Errorf("err = %v, want errSignedOut", err)
	}
	out, err := run(t, "", "logout")
	if err != nil || !strings.Contains(out, "Already signed out.") {
		t.Errorf("logout = %q, %v", out, err)
	}
}

func TestWhoamiAndLogout(t *testing.T) {
	b, home := setup(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"user": map[string]any{"id": "u1", "fullName": "Ada Lovelace", "email": "ada@vendora.io", "role": "admin"}})
	})
	signIn(t, home)

	out, err := run(t, "", "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	for _, want := range []string{"Ada Lovelace", "ada@vendora.io", "admin"} {
		if !strings.Contains(out, want) {
			t.Errorf("whoami output missing %q:\n%s", want, out)
		}
	}
	if c := b.last(t); c.path != "/auth/me" || c.auth != "Bearer tok" {
		t.Errorf("request = %s auth %q", c.path, c.auth)
	}

	out, err = run(t, "", "logout")
	if err != nil || !strings.Contains(out, "Signed out.") {
		t.Errorf("logout = %q, %v", out, err)
	}
	store := session.New(session.NewFileStorage(filepath.Join(home, ".vendora", "session.json")))
	if store.IsAuthenticated() {
		t.Error("session should be cleared")
	}
}

func TestTokenOverride(t *testing.T) {
	b, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"id": "u9", "fullName": "CI Bot", "email": "ci@vendora.io", "role": "admin"})
	})
	t.Setenv("VENDORA_TOKEN", "ci-token")

	out, err := run(t, "", "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out, "from VENDORA_TOKEN") {
		t.Errorf("missing override note:\n%s", out)
	}
	if c := b.last(t); c.auth != "Bearer ci-token" {
		t.Errorf("auth = %q", c.auth)
	}
}

func TestOrdersList(t *testing.T) {
	b, home := setup(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{
			"orders": []map[string]any{
				{"id": "o1", "orderNumber": "1001", "status": "pending", "businessName": "Taco Town", "customerName": "Grace", "total": 1234.5},
			},
			"total": 23,
		})
	})
	signIn(t, home)

	out, err := run(t, "", "orders", "list", "--status", "Pending", "--from", "2026-10-01", "--page", "2")
	if err != nil {
		t.Fatalf("orders list: %v", err)
	}
	for _, want := range []string{"#1001", "pending", "Taco Town", "$1,234.50", "page 2/3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	c := b.last(t)
	if c.path != "/orders" {
		t.Errorf("path = %s", c.path)
	}
	for _, want := range []string{"status=pending", "startDate=2026-10-01", "page=2", "limit=10"} {
		if !strings.Contains(c.query, want) {
			t.Errorf("query %q missing %q", c.query, want)
		}
	}
}

func TestOrdersFilterErrors(t *testing.T) {
	_, home := setup(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	signIn(t, home)

	if _, err := run(t, "", "orders", "list", "--status", "lost"); err == nil {
		t.Error("unknown status should fail")
	}
	if _, err := run(t, "", "orders", "list", "--from", "10/01/2026"); err == nil {
		t.Error("bad date should fail")
	}
	if _, err := run(t, "", "orders", "list", "--from", "2026-10-05", "--to", "2026-10-01"); err == nil {
		t.Error("--to before --from should fail")
	}
	if _, err := run(t, "", "orders", "status", "o1", "lost"); err == nil {
		t.Error("unknown target status should fail")
	}
}

func TestOrdersStatus(t *testing.T) {
	b, home := setup(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"order": map[string]any{"id": "o1", "orderNumber": "1001", "status": "confirmed"}})
	})
	signIn(t, home)

	out, err := run(t, "", "orders", "status", "o1", "CONFIRMED")
	if err != nil {
		t.Fatalf("orders status: %v", err)
	}
	if !strings.Contains(out, "Order #1001 is now confirmed") {
		t.Errorf("unexpected output %q", out)
	}
	c := b.last(t)
	if c.method != "PATCH" || c.path != "/orders/o1/status" || !strings.Contains(c.body, `"confirmed"`) {
		t.Errorf("request = %+v", c)
	}
}

func TestOrdersExport(t *testing.T) {
	csv := "id,status\no1,pending\n"
	b, home := setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="../orders-2026-10.csv"`)
		io.WriteString(w, csv) //nolint:errcheck
	})
	signIn(t, home)

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) }) //nolint:errcheck
	out, err := run(t, "", "orders", "export", "--status", "pending")
	if err != nil {
		t.Fatalf("orders export: %v", err)
	}
	if !strings.Contains(out, "orders-2026-10.csv") {
		t.Errorf("unexpected output %q", out)
	}
	data, err := os.ReadFile("orders-2026-10.csv")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != csv {
		t.Errorf("saved %q", data)
	}
	c := b.last(t)
	if c.path != "/orders/export" || strings.Contains(c.query, "page=") || !strings.Contains(c.query, "status=pending") {
		t.Errorf("request = %s?%s", c.path, c.query)
	}

	dest := filepath.Join(t.TempDir(), "october.csv")
	if _, err := run(t, "", "orders", "export", "-o", dest); err != nil {
		t.Fatalf("orders export -o: %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("export not written to -o path: %v", err)
	}
}

func TestBusinessesCreate(t *testing.T) {
	b, home := setup(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusCreated, map[string]any{"business": map[string]any{"_id": "b9", "name": "Acme Foods"}})
	})
	signIn(t, home)

	_, err := run(t, "", "businesses", "create", "--name", " ", "--email", "nope")
	if err == nil {
		t.Fatal("invalid input should fail")
	}
	for _, want := range []string{"name is required", "email must be a valid email address"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("err %q missing %q", err, want)
		}
	}
	if n := len(b.all()); n != 0 {
		t.Fatalf("%d requests sent for invalid input", n)
	}

	out, err := run(t, "", "biz", "create", "--name", "Acme Foods", "--category", "grocery")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(out, "Created Acme Foods (b9)") {
		t.Errorf("unexpected output %q", out)
	}
	if c := b.last(t); c.method != "POST" || c.path != "/businesses" || !strings.Contains(c.body, `"category":"grocery"`) {
		t.Errorf("request = %+v", c)
	}
}

func TestBusinessesDeleteConfirm(t *testing.T) {
	b, home := setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	signIn(t, home)

	out, err := run(t, "n\n", "businesses", "delete", "b2")
	if err != nil || !strings.Contains(out, "Aborted") {
		t.Fatalf("delete n = %q, %v", out, err)
	}
	if n := len(b.all()); n != 0 {
		t.Fatalf("%d requests sent after declining", n)
	}

	out, err = run(t, "y\n", "businesses", "delete", "b2")
	if err != nil || !strings.Contains(out, "Deleted business b2") {
		t.Fatalf("delete y = %q, %v", out, err)
	}
	if c := b.last(t); c.method != "DELETE" || c.path != "/businesses/b2" {
		t.Errorf("request = %s %s", c.method, c.path)
	}

	if _, err := run(t, "", "businesses", "delete", "-f", "b3"); err != nil {
		t.Fatalf("delete -f: %v", err)
	}
	if c := b.last(t); c.path != "/businesses/b3" {
		t.Errorf("path = %s", c.path)
	}
}

func TestProductsCreateWithImage(t *testing.T) {
	var mu sync.Mutex
	var gotName, gotFile string
	_, home := setup(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("not a multipart body: %v", err)
		}
		mu.Lock()
		gotName = r.FormValue("name")
		if f, h, err := r.FormFile("image"); err == nil {
			data, _ := io.ReadAll(f)
			gotFile = h.Filename + ":" + string(data)
		}
		mu.Unlock()
		reply(w, http.StatusCreated, map[string]any{"product": map[string]any{"id": "p1", "name": "Horchata", "price": 3}})
	})
	signIn(t, home)

	img := filepath.Join(t.TempDir(), "horchata.jpg")
	if err := os.WriteFile(img, []byte("jpeg"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "products", "create", "--business", "b1", "--name", "Horchata", "--price", "3", "--image", img)
	if err != nil {
		t.Fatalf("products create: %v", err)
	}
	if !strings.Contains(out, "Created Horchata (p1) at $3.00") {
		t.Errorf("unexpected output %q", out)
	}
	mu.Lock()
	defer mu.Unlock()
	if gotName != "Horchata" || gotFile != "horchata.jpg:jpeg" {
		t.Errorf("multipart = name %q, file %q", gotName, gotFile)
	}
}

func TestCatalogLists(t *testing.T) {
	b, home := setup(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products":
			reply(w, http.StatusOK, map[string]any{"products": []map[string]any{{"id": "p1", "name": "Taco", "price": 4.25, "stock": 40, "isAvailable": true}}, "total": 1})
		case "/meals":
			reply(w, http.StatusOK, []map[string]any{{"id": "m1", "name": "Combo", "price": 9, "preparationTime": 15}})
		case "/subgroups":
			reply(w, http.StatusOK, map[string]any{"subgroups": []map[string]any{{"id": "s1", "name": "Drinks", "businessId": "b1", "position": 2}}})
		case "/users":
			reply(w, http.StatusOK, map[string]any{"users": []map[string]any{{"id": "u1", "fullName": "Ada", "email": "ada@vendora.io", "role": "admin", "isActive": true}}, "total": 1})
		default:
			reply(w, http.StatusNotFound, map[string]any{"message": "not found"})
		}
	})
	signIn(t, home)

	tests := []struct {
		args  []string
		want  []string
		query string
	}{
		{[]string{"products", "list", "--business", "b1"}, []string{"Taco", "$4.25", "40", "yes"}, "businessId=b1"},
		{[]string{"meals", "list"}, []string{"Combo", "$9.00", "15 min"}, "limit=10"},
		{[]string{"subgroups", "list", "--business", "b1"}, []string{"Drinks", "b1"}, "businessId=b1"},
		{[]string{"users", "list", "--role", "admin"}, []string{"ada@vendora.io", "never"}, "role=admin"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, "_"), func(t *testing.T) {
			out, err := run(t, "", tt.args...)
			if err != nil {
				t.Fatalf("%v: %v", tt.args, err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			if c := b.last(t); !strings.Contains(c.query, tt.query) {
				t.Errorf("query %q missing %q", c.query, tt.query)
			}
		})
	}
}

func TestDashboard(t *testing.T) {
	_, home := setup(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/analytics/dashboard":
			reply(w, http.StatusOK, map[string]any{
				"totalOrders": 412, "totalRevenue": 18234.5, "totalUsers": 96, "activeUsers": 71,
				"ordersByStatus": map[string]int{"pending": 7},
				"topBusinesses":  []map[string]any{{"name": "Taco Town", "revenue": 5000, "orders": 80}},
			})
		case "/orders":
			reply(w, http.StatusOK, map[string]any{"orders": []map[string]any{{"id": "o9", "orderNumber": "1009", "status": "ready", "total": 12}}})
		}
	})
	signIn(t, home)

	out, err := run(t, "", "dashboard")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	for _, want := range []string{"412", "$18,234.50", "96 (71 active)", "Taco Town", "#1009"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDashboardFailure(t *testing.T) {
	_, home := setup(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/analytics/dashboard" {
			reply(w, http.StatusForbidden, map[string]any{"message": "Admins only"})
			return
		}
		reply(w, http.StatusOK, map[string]any{"orders": []any{}})
	})
	signIn(t, home)

	_, err := run(t, "", "dashboard")
	if err == nil || err.Error() != "Admins only" {
		t.Errorf("err = %v, want Admins only", err)
	}
}

func TestJSONOutput(t *testing.T) {
	_, home := setup(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"business": map[string]any{"id": "b1", "name": "Taco Town", "isActive": true}})
	})
	signIn(t, home)

	out, err := run(t, "", "--json", "businesses", "get", "b1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var got domain.Business
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got.ID != "b1" || got.Name != "Taco Town" {
		t.Errorf("got %+v", got)
	}
}

func TestVersion(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	out, err := run(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "vendora dev" {
		t.Errorf("version = %q", out)
	}
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{4.25, "$4.25"},
		{999.999, "$1,000.00"},
		{1234567.8, "$1,234,567.80"},
		{-12.5, "-$12.50"},
	}
	for _, tt := range tests {
		if got := money(tt.in); got != tt.want {
			t.Errorf("money(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"Taco Town", 20, "Taco Town"},
		{"Taco Town", 5, "Taco…"},
		{"Café Olé", 4, "Caf…"},
		{"abc", 1, "…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestProductsUpdate(t *testing.T) {
	b, home := setup(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			reply(w, http.StatusOK, map[string]any{"product": map[string]any{
				"id": "p1", "name": "Taco", "price": 4.25, "stock": 40, "businessId": "b1", "category": "mains", "isAvailable": true,
			}})
			return
		}
		body, _ := io.ReadAll(r.Body)
		var in map[string]any
		json.Unmarshal(body, &in) //nolint:errcheck
		in["id"] = "p1"
		reply(w, http.StatusOK, map[string]any{"product": in})
	})
	signIn(t, home)

	out, err := run(t, "", "products", "update", "p1", "--price", "4.5", "--stock", "0")
	if err != nil {
		t.Fatalf("products update: %v", err)
	}
	if !strings.Contains(out, "Updated Taco (p1): $4.50, 0 in stock") {
		t.Errorf("unexpected output %q", out)
	}

	calls := b.all()
	if len(calls) != 2 || calls[0].method != "GET" || calls[0].path != "/products/p1" {
		t.Fatalf("calls = %+v", calls)
	}
	put := calls[1]
	if put.method != "PUT" || put.path != "/products/p1" {
		t.Errorf("request = %s %s", put.method, put.path)
	}
	var sent map[string]any
	if err := json.Unmarshal([]byte(put.body), &sent); err != nil {
		t.Fatal(err)
	}
	if sent["price"] != 4.5 || sent["stock"] != 0.0 || sent["name"] != "Taco" || sent["category"] != "mains" || sent["isAvailable"] != true {
		t.Errorf("unchanged fields must be kept, sent %v", sent)
	}
}

func TestProductsUpdateNeedsAField(t *testing.T) {
	b, home := setup(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	signIn(t, home)

	_, err := run(t, "", "--json", "products", "update", "p1")
	if err == nil || !strings.Contains(err.Error(), "nothing to change") {
		t.Errorf("err = %v", err)
	}
	if n := len(b.all()); n != 0 {
		t.Errorf("%d requests sent", n)
	}
}

func TestMealsAndSubgroupsWrites(t *testing.T) {
	b, home := setup(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/meals" || r.URL.Path == "/meals/m1":
			reply(w, http.StatusOK, map[string]any{"meal": map[string]any{"id": "m1", "name": "Combo", "price": 9.5, "preparationTime": 15}})
		case r.URL.Path == "/subgroups":
			reply(w, http.StatusCreated, map[string]any{"subgroup": map[string]any{"_id": "s1", "name": "Drinks"}})
		}
	})
	signIn(t, home)

	out, err := run(t, "", "meals", "create", "--business", "b1", "--name", "Combo", "--price", "9.5", "--prep", "15")
	if err != nil || !strings.Contains(out, "Created Combo (m1) at $9.50") {
		t.Fatalf("meals create = %q, %v", out, err)
	}
	if c := b.last(t); c.method != "POST" || c.path != "/meals" || !strings.Contains(c.body, `"preparationTime":15`) {
		t.Errorf("request = %+v", c)
	}

	out, err = run(t, "", "meals", "get", "m1")
	if err != nil || !strings.Contains(out, "15 min") {
		t.Errorf("meals get = %q, %v", out, err)
	}

	if _, err := run(t, "", "meals", "create", "--name", "X"); err == nil {
		t.Error("meal without business should fail validation")
	}

	out, err = run(t, "y\n", "meals", "delete", "m1")
	if err != nil || !strings.Contains(out, "Deleted meal m1") {
		t.Errorf("meals delete = %q, %v", out, err)
	}
	if c := b.last(t); c.method != "DELETE" || c.path != "/meals/m1" {
		t.Errorf("request = %s %s", c.method, c.path)
	}

	out, err = run(t, "", "subgroups", "create", "--business", "b1", "--name", "Drinks", "--position", "2")
	if err != nil || !strings.Contains(out, "Created Drinks (s1)") {
		t.Errorf("subgroups create = %q, %v", out, err)
	}

	before := len(b.all())
	out, err = run(t, "n\n", "subgroups", "delete", "s1")
	if err != nil || !strings.Contains(out, "Aborted") || len(b.all()) != before {
		t.Errorf("declined delete = %q, %v", out, err)
	}
	if _, err := run(t, "", "subgroups", "delete", "-f", "s1"); err != nil {
		t.Fatalf("subgroups delete -f: %v", err)
	}
	if c := b.last(t); c.method != "DELETE" || c.path != "/subgroups/s1" {
		t.Errorf("request = %s %s", c.method, c.path)
	}
}

func TestFailingCommandClosesLog(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})

	root, d := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"orders", "list"})
	err := execute(context.Background(), root, d)
	if !errors.Is(err, errSignedOut) {
		t.Fatalf("err = %v, want errSignedOut", err)
	}
	if d.log == nil {
		t.Fatal("deps were never initialised")
	}
	if d.closeLog != nil {
		t.Error("log file left open after a failing command")
	}
}
