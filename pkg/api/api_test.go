package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/vendora/pkg/client"
	"github.com/naveenspark/vendora/pkg/domain"
)

func newTestAPI(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(client.New(srv.URL))
}

func TestListOrdersPage(t *testing.T) {
	gotQuery := make(chan string, 1)
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		gotQuery <- r.URL.RawQuery
		io.WriteString(w, `{"orders":[{"id":"o1","status":"pending"},{"id":"o2","status":"pending"},{"id":"o3","status":"pending"}],"total":23}`) //nolint:errcheck
	})

	res, err := c.ListOrders(context.Background(), "tok", OrderParams{
		Status:     domain.OrderPending,
		Pagination: Pagination{Page: 2, Limit: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, "limit=10&page=2&status=pending", <-gotQuery)
	assert.Len(t, res.Items, 3)
	assert.Equal(t, 23, res.Total)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 10, res.Limit)
	assert.Equal(t, "o1", res.Items[0].ID)
}

func TestListOrdersDateRange(t *testing.T) {
	gotQuery := make(chan string, 1)
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery <- r.URL.RawQuery
		io.WriteString(w, `{"orders":[]}`) //nolint:errcheck
	})

	_, err := c.ListOrders(context.Background(), "tok", OrderParams{
		StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "endDate=2024-03-31&startDate=2024-03-01", <-gotQuery)
}

func TestListTolerantDecoding(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		limit     int
		wantIDs   []string
		wantTotal int
	}{
		{"missing field", `{"total":5}`, 0, []string{}, 5},
		{"non-array field", `{"orders":"nope","total":2}`, 0, []string{}, 2},
		{"malformed element", `{"orders":[{"id":"a"},42,null,{"id":"b"}],"total":10}`, 0, []string{"a", "b"}, 10},
		{"missing total", `{"orders":[{"id":"a"},{"id":"b"}]}`, 0, []string{"a", "b"}, 2},
		{"total below items", `{"orders":[{"id":"a"},{"id":"b"}],"total":1}`, 0, []string{"a", "b"}, 2},
		{"string total", `{"orders":[{"id":"a"}],"total":"7"}`, 0, []string{"a"}, 7},
		{"bare array", `[{"id":"a"}]`, 0, []string{"a"}, 1},
		{"more than limit", `{"orders":[{"id":"a"},{"id":"b"},{"id":"c"}],"total":3}`, 2, []string{"a", "b"}, 3},
		{"mongo ids", `{"orders":[{"_id":"m1"}]}`, 0, []string{"m1"}, 1},
		{"empty body", ``, 0, []string{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body) //nolint:errcheck
			})
			res, err := c.ListOrders(context.Background(), "tok", OrderParams{Pagination: Pagination{Limit: tt.limit}})
			require.NoError(t, err)
			ids := make([]string, 0, len(res.Items))
			for _, o := range res.Items {
				ids = append(ids, o.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantTotal, res.Total)
			assert.GreaterOrEqual(t, res.Total, len(res.Items))
		})
	}
}

func TestListDefaultsPageFromResponse(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		io.WriteString(w, `{"businesses":[{"id":"b1","name":"Cafe"}],"total":40,"page":3,"limit":20}`) //nolint:errcheck
	})
	res, err := c.ListBusinesses(context.Background(), "tok", BusinessParams{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Page)
	assert.Equal(t, 20, res.Limit)
	assert.Equal(t, 40, res.Total)
	assert.Equal(t, "Cafe", res.Items[0].Name)
}

func TestGetAcceptsEnvelopeAndBareObject(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"envelope", `{"order":{"id":"o9","status":"ready","total":12.5}}`},
		{"bare", `{"id":"o9","status":"ready","total":12.5}`},
		{"mongo id", `{"order":{"_id":"o9","status":"ready","total":12.5}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/orders/o9", r.URL.Path)
				io.WriteString(w, tt.body) //nolint:errcheck
			})
			o, err := c.GetOrder(context.Background(), "tok", "o9")
			require.NoError(t, err)
			assert.Equal(t, "o9", o.ID)
			assert.Equal(t, domain.OrderReady, o.Status)
			assert.InDelta(t, 12.5, o.Total, 0.001)
		})
	}
}

func TestGetRequiresID(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})
	_, err := c.GetBusiness(context.Background(), "tok", "")
	require.Error(t, err)
	assert.True(t, client.IsKind(err, client.KindRequest))
	assert.Error(t, c.DeleteProduct(context.Background(), "tok", ""))
}

func TestErrorsKeepAPIError(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"Order not found"}`) //nolint:errcheck
	})
	_, err := c.GetOrder(context.Background(), "tok", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.GetOrder")

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Order not found", client.Message(err))
}

func TestUpdateOrderStatus(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/orders/o1/status", r.URL.Path)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "confirmed", body["status"])
		io.WriteString(w, `{"order":{"id":"o1","status":"confirmed"}}`) //nolint:errcheck
	})
	o, err := c.UpdateOrderStatus(context.Background(), "tok", "o1", domain.OrderConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderConfirmed, o.Status)
}

func TestUpdateOrderStatusRejectsUnknown(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})
	_, err := c.UpdateOrderStatus(context.Background(), "tok", "o1", "shipped")
	require.Error(t, err)
	assert.True(t, client.IsKind(err, client.KindRequest))
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"flat", `{"token":"jwt","user":{"id":"u1","fullName":"Ada","email":"ada@example.com","role":"admin"}}`},
		{"nested data", `{"data":{"accessToken":"jwt","user":{"_id":"u1","fullName":"Ada","email":"ada@example.com","role":"admin"}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/auth/login", r.URL.Path)
				assert.Empty(t, r.Header.Get("Authorization"))
				var creds Credentials
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
				assert.Equal(t, "ada@example.com", creds.Email)
				io.WriteString(w, tt.body) //nolint:errcheck
			})
			res, err := c.Login(context.Background(), Credentials{Email: "ada@example.com", Password: "pw"})
			require.NoError(t, err)
			assert.Equal(t, "jwt", res.Token)
			assert.Equal(t, "u1", res.User.ID)
			assert.True(t, res.User.IsAdmin())
		})
	}
}

func TestLoginWithoutToken(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"user":{"id":"u1"}}`) //nolint:errcheck
	})
	_, err := c.Login(context.Background(), Credentials{Email: "a@b.co", Password: "pw"})
	require.Error(t, err)
	assert.True(t, client.IsKind(err, client.KindDecode))
}

func TestLoginBadCredentials(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"Invalid email or password"}`) //nolint:errcheck
	})
	_, err := c.Login(context.Background(), Credentials{Email: "a@b.co", Password: "bad"})
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, "Invalid email or password", client.Message(err))
}

func TestCreateProductWithImage(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "Latte", r.FormValue("name"))
		assert.Equal(t, "3.5", r.FormValue("price"))
		assert.Equal(t, "b1", r.FormValue("businessId"))
		f, hdr, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "latte.png", hdr.Filename)
		assert.Equal(t, "PNGDATA", string(data))
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"product":{"id":"p1","name":"Latte","price":3.5,"businessId":"b1"}}`) //nolint:errcheck
	})
	p, err := c.CreateProduct(context.Background(), "tok",
		ProductInput{Name: "Latte", Price: 3.5, BusinessID: "b1", Available: true},
		&client.File{Name: "latte.png", ContentType: "image/png", Content: strings.NewReader("PNGDATA")})
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
}

func TestCreateProductJSON(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		io.WriteString(w, `{"id":"p2","name":"Tea"}`) //nolint:errcheck
	})
	p, err := c.CreateProduct(context.Background(), "tok", ProductInput{Name: "Tea", BusinessID: "b1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "p2", p.ID)
}

func TestExportOrders(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/export", r.URL.Path)
		assert.Equal(t, "status=delivered", r.URL.RawQuery)
		w.Header().Set("Content-Type", "text/csv")
		io.WriteString(w, "id,status\no1,delivered\n") //nolint:errcheck
	})
	blob, err := c.ExportOrders(context.Background(), "tok", OrderParams{
		Status:     domain.OrderDelivered,
		Pagination: Pagination{Page: 4, Limit: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", blob.ContentType)
	assert.Contains(t, string(blob.Data), "o1,delivered")
	assert.True(t, strings.HasSuffix(blob.Filename, ".csv"))
}

func TestDashboard(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analytics/dashboard", r.URL.Path)
		io.WriteString(w, `{"stats":{"totalOrders":120,"totalRevenue":4520.75,"totalBusinesses":8,"totalUsers":300,"activeUsers":41}}`) //nolint:errcheck
	})
	s, err := c.Dashboard(context.Background(), "tok", AnalyticsParams{})
	require.NoError(t, err)
	assert.Equal(t, 120, s.TotalOrders)
	assert.Equal(t, 8, s.TotalBusinesses)
	assert.NotNil(t, s.OrdersByStatus)
}

func TestDeleteBusiness(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/businesses/b%2F1", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, c.DeleteBusiness(context.Background(), "tok", "b/1"))
}

func TestCreateAndUpdateBusiness(t *testing.T) {
	type seen struct{ method, path, body string }
	got := make(chan seen, 2)
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got <- seen{r.Method, r.URL.Path, string(b)}
		io.WriteString(w, `{"business":{"_id":"b9","name":"Acme Foods","isActive":true}}`) //nolint:errcheck
	})

	b, err := c.CreateBusiness(context.Background(), "tok", BusinessInput{Name: "Acme Foods", Email: "hi@acme.io"})
	require.NoError(t, err)
	assert.Equal(t, "b9", b.ID)
	s := <-got
	assert.Equal(t, http.MethodPost, s.method)
	assert.Equal(t, "/businesses", s.path)
	assert.JSONEq(t, `{"name":"Acme Foods","email":"hi@acme.io"}`, s.body)

	_, err = c.UpdateBusiness(context.Background(), "tok", "b9", BusinessInput{Name: "Acme"})
	require.NoError(t, err)
	s = <-got
	assert.Equal(t, "/businesses/b9", s.path)
	assert.Equal(t, http.MethodPut, s.method)
}

func TestListUsersByRole(t *testing.T) {
	gotQuery := make(chan string, 1)
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users", r.URL.Path)
		gotQuery <- r.URL.RawQuery
		io.WriteString(w, `{"users":[{"_id":"u1","fullName":"Ada","role":"admin","isActive":true,"lastLoginAt":"2026-10-01T09:00:00Z"}],"total":1}`) //nolint:errcheck
	})

	res, err := c.ListUsers(context.Background(), "tok", UserParams{Role: domain.RoleAdmin, Pagination: Pagination{Page: 1, Limit: 10}})
	require.NoError(t, err)
	assert.Equal(t, "limit=10&page=1&role=admin", <-gotQuery)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "u1", res.Items[0].ID)
	assert.True(t, res.Items[0].Active)
	require.NotNil(t, res.Items[0].LastLoginAt)
	assert.Equal(t, 2026, res.Items[0].LastLoginAt.Year())
}

func TestGetUser(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/u1", r.URL.Path)
		io.WriteString(w, `{"id":"u1","fullName":"Ada","email":"ada@vendora.io","role":"admin"}`) //nolint:errcheck
	})
	u, err := c.GetUser(context.Background(), "tok", "u1")
	require.NoError(t, err)
	assert.Equal(t, "ada@vendora.io", u.Email)
}

func TestListMealsAndSubgroups(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/meals":
			assert.Equal(t, "businessId=b1", r.URL.RawQuery)
			io.WriteString(w, `[{"id":"m1","name":"Combo","price":9.5,"preparationTime":15},null]`) //nolint:errcheck
		case "/subgroups":
			io.WriteString(w, `{"subgroups":[{"id":"s1","name":"Drinks","businessId":"b1","position":2}]}`) //nolint:errcheck
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	meals, err := c.ListMeals(context.Background(), "tok", MealParams{BusinessID: "b1"})
	require.NoError(t, err)
	require.Len(t, meals.Items, 1)
	assert.Equal(t, 15, meals.Items[0].PrepMinutes)
	assert.Equal(t, 1, meals.Total)

	groups, err := c.ListSubgroups(context.Background(), "tok", SubgroupParams{})
	require.NoError(t, err)
	require.Len(t, groups.Items, 1)
	assert.Equal(t, 2, groups.Items[0].Position)
}

type seenRequest struct {
	method string
	path   string
	body   string
}

// recordingAPI answers every request with reply and reports what it received.
func recordingAPI(t *testing.T, reply string) (*Client, <-chan seenRequest) {
	t.Helper()
	seen := make(chan seenRequest, 8)
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		seen <- seenRequest{r.Method, r.URL.EscapedPath(), string(b)}
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		io.WriteString(w, reply) //nolint:errcheck
	})
	return c, seen
}

func TestGetProduct(t *testing.T) {
	for name, reply := range map[string]string{
		"envelope": `{"product":{"_id":"p1","name":"Taco","price":4.25,"stock":40,"isAvailable":true}}`,
		"bare":     `{"id":"p1","name":"Taco","price":4.25,"stock":40,"isAvailable":true}`,
	} {
		t.Run(name, func(t *testing.T) {
			c, seen := recordingAPI(t, reply)
			p, err := c.GetProduct(context.Background(), "tok", "p1")
			require.NoError(t, err)
			s := <-seen
			assert.Equal(t, http.MethodGet, s.method)
			assert.Equal(t, "/products/p1", s.path)
			assert.Equal(t, "p1", p.ID)
			assert.Equal(t, 4.25, p.Price)
			assert.True(t, p.Available)
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	c, seen := recordingAPI(t, `{"product":{"id":"p1","name":"Taco","price":5,"stock":12}}`)
	p, err := c.UpdateProduct(context.Background(), "tok", "p1", ProductInput{Name: "Taco", Price: 5, Stock: 12, BusinessID: "b1"})
	require.NoError(t, err)
	assert.Equal(t, 5.0, p.Price)

	s := <-seen
	assert.Equal(t, http.MethodPut, s.method)
	assert.Equal(t, "/products/p1", s.path)
	assert.JSONEq(t, `{"name":"Taco","price":5,"stock":12,"businessId":"b1","isAvailable":false}`, s.body)

	_, err = c.UpdateProduct(context.Background(), "tok", "", ProductInput{})
	assert.Error(t, err)
}

func TestGetMeal(t *testing.T) {
	for name, reply := range map[string]string{
		"envelope": `{"meal":{"_id":"m1","name":"Combo","preparationTime":15}}`,
		"bare":     `{"id":"m1","name":"Combo","preparationTime":15}`,
	} {
		t.Run(name, func(t *testing.T) {
			c, seen := recordingAPI(t, reply)
			m, err := c.GetMeal(context.Background(), "tok", "m1")
			require.NoError(t, err)
			assert.Equal(t, "/meals/m1", (<-seen).path)
			assert.Equal(t, "m1", m.ID)
			assert.Equal(t, 15, m.PrepMinutes)
		})
	}
}

func TestMealWrites(t *testing.T) {
	c, seen := recordingAPI(t, `{"meal":{"id":"m1","name":"Combo","price":9.5}}`)
	ctx := context.Background()
	in := MealInput{Name: "Combo", Price: 9.5, BusinessID: "b1", PrepMinutes: 15, Available: true}

	m, err := c.CreateMeal(ctx, "tok", in)
	require.NoError(t, err)
	assert.Equal(t, "m1", m.ID)
	s := <-seen
	assert.Equal(t, http.MethodPost, s.method)
	assert.Equal(t, "/meals", s.path)
	assert.JSONEq(t, `{"name":"Combo","price":9.5,"businessId":"b1","preparationTime":15,"isAvailable":true}`, s.body)

	_, err = c.UpdateMeal(ctx, "tok", "m1", in)
	require.NoError(t, err)
	s = <-seen
	assert.Equal(t, http.MethodPut, s.method)
	assert.Equal(t, "/meals/m1", s.path)

	require.NoError(t, c.DeleteMeal(ctx, "tok", "m 1"))
	s = <-seen
	assert.Equal(t, http.MethodDelete, s.method)
	assert.Equal(t, "/meals/m%201", s.path)

	assert.Error(t, c.DeleteMeal(ctx, "tok", ""))
	_, err = c.UpdateMeal(ctx, "tok", "", in)
	assert.Error(t, err)
}

func TestSubgroupCRUD(t *testing.T) {
	c, seen := recordingAPI(t, `{"subgroup":{"_id":"s1","name":"Drinks","businessId":"b1","position":2}}`)
	ctx := context.Background()

	g, err := c.GetSubgroup(ctx, "tok", "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", g.ID)
	assert.Equal(t, 2, g.Position)
	s := <-seen
	assert.Equal(t, http.MethodGet, s.method)
	assert.Equal(t, "/subgroups/s1", s.path)

	in := SubgroupInput{Name: "Drinks", BusinessID: "b1", Position: 2}
	_, err = c.CreateSubgroup(ctx, "tok", in)
	require.NoError(t, err)
	s = <-seen
	assert.Equal(t, http.MethodPost, s.method)
	assert.Equal(t, "/subgroups", s.path)
	assert.JSONEq(t, `{"name":"Drinks","businessId":"b1","position":2}`, s.body)

	_, err = c.UpdateSubgroup(ctx, "tok", "s1", in)
	require.NoError(t, err)
	s = <-seen
	assert.Equal(t, http.MethodPut, s.method)
	assert.Equal(t, "/subgroups/s1", s.path)

	require.NoError(t, c.DeleteSubgroup(ctx, "tok", "s1"))
	s = <-seen
	assert.Equal(t, http.MethodDelete, s.method)
	assert.Equal(t, "/subgroups/s1", s.path)

	_, err = c.GetSubgroup(ctx, "tok", "")
	assert.Error(t, err)
}
