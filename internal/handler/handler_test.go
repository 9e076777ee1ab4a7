package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jitterlabs/order-api/internal/auth"
	"github.com/jitterlabs/order-api/internal/domain/order"
	"github.com/jitterlabs/order-api/internal/domain/product"
	"github.com/jitterlabs/order-api/internal/domain/user"
)

// --- In-memory fakes shared by the handler tests ---

type memProductRepo struct {
	products []product.Product
}

func (m *memProductRepo) List(_ context.Context) ([]product.Product, error) {
	return m.products, nil
}

func (m *memProductRepo) ExistingIDs(_ context.Context, ids []string) (map[string]struct{}, error) {
	known := make(map[string]struct{}, len(m.products))
	for _, p := range m.products {
		known[p.ID] = struct{}{}
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

type memOrderRepo struct {
	byID map[string]*order.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{byID: make(map[string]*order.Order)}
}

func (m *memOrderRepo) FindByCode(_ context.Context, code string) (*order.Order, error) {
	for _, o := range m.byID {
		if o.Code == code {
			cp := *o
			return &cp, nil
		}
	}
	return nil, order.ErrNotFound
}

func (m *memOrderRepo) FindByCodeAndUser(_ context.Context, code, userID string) (*order.Order, error) {
	for _, o := range m.byID {
		if o.Code == code && o.UserID == userID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, order.ErrNotFound
}

func (m *memOrderRepo) ListByUser(_ context.Context, userID string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.byID {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreationDate.After(out[j].CreationDate)
	})
	return out, nil
}

func (m *memOrderRepo) Create(_ context.Context, o *order.Order) error {
	for _, existing := range m.byID {
		if existing.Code == o.Code {
			return &order.CodeExistsError{Code: o.Code}
		}
	}
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *memOrderRepo) Replace(_ context.Context, o *order.Order) error {
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *memOrderRepo) Delete(_ context.Context, orderID string) error {
	delete(m.byID, orderID)
	return nil
}

type memUserRepo struct {
	byEmail map[string]*user.User
	byID    map[string]*user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: make(map[string]*user.User), byID: make(map[string]*user.User)}
}

func (m *memUserRepo) Create(_ context.Context, u *user.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return user.ErrEmailExists
	}
	cp := *u
	m.byEmail[u.Email] = &cp
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	if u, ok := m.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, user.ErrNotFound
}

func (m *memUserRepo) FindByID(_ context.Context, id string) (*user.User, error) {
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, user.ErrNotFound
}

// --- Test server setup ---

type testServer struct {
	srv      *httptest.Server
	products *memProductRepo
	orders   *memOrderRepo
}

func newTestServer(t *testing.T, products ...product.Product) *testServer {
	t.Helper()

	prodRepo := &memProductRepo{products: products}
	orderRepo := newMemOrderRepo()
	authSvc := auth.NewService(newMemUserRepo(), []byte("test-secret"), time.Hour)
	h := New(authSvc, prodRepo, order.NewService(prodRepo, orderRepo))

	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, products: prodRepo, orders: orderRepo}
}

// registerUser registers an account and returns its bearer token.
func (ts *testServer) registerUser(t *testing.T, email string) string {
	t.Helper()

	status, body := ts.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"email":    email,
		"password": "s3cret!",
		"name":     "Test User",
	})
	require.Equal(t, http.StatusCreated, status, "register failed: %s", body)

	var sess struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(body, &sess))
	require.NotEmpty(t, sess.AccessToken)
	return sess.AccessToken
}

// do performs a request and returns the status code and raw body.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out.Bytes()
}

func orderBody(code string, items ...map[string]any) map[string]any {
	return map[string]any{
		"orderCode":    code,
		"totalValue":   100,
		"creationDate": "2025-12-01T10:00:00Z",
		"items":        items,
	}
}

func item(productID string, qty int, price float64) map[string]any {
	return map[string]any{"productId": productID, "quantity": qty, "unitPrice": price}
}
