//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"regexp"
	"testing"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func orderBody(code string, items ...orderItemRequest) orderRequest {
	return orderRequest{
		OrderCode:    code,
		TotalValue:   150.50,
		CreationDate: "2025-12-01T10:30:00Z",
		Items:        items,
	}
}

func TestCreateOrder_NoAuth(t *testing.T) {
	p := listedProduct(t, 0)
	resp := doJSON(t, http.MethodPost, "/order", "", orderBody("INT-NOAUTH",
		orderItemRequest{ProductID: p.ID, Quantity: 1, UnitPrice: 10},
	))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_Success(t *testing.T) {
	token := registerUser(t, "create@integration.test")
	p0, p1 := listedProduct(t, 0), listedProduct(t, 1)

	resp := doJSON(t, http.MethodPost, "/order", token, orderBody("INT-CREATE-1",
		orderItemRequest{ProductID: p0.ID, Quantity: 2, UnitPrice: 50.25},
		orderItemRequest{ProductID: p1.ID, Quantity: 1, UnitPrice: 50},
	))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	got := decodeJSON[orderResponse](t, resp)
	if got.OrderCode != "INT-CREATE-1" {
		t.Fatalf("expected code INT-CREATE-1, got %q", got.OrderCode)
	}
	if !uuidPattern.MatchString(got.ID) {
		t.Fatalf("order id is not a UUID: %q", got.ID)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got.Items))
	}
	if got.TotalValue != 150.50 {
		t.Fatalf("expected total 150.50, got %v", got.TotalValue)
	}
}

func TestCreateOrder_ConsolidatesDuplicates(t *testing.T) {
	token := registerUser(t, "consolidate@integration.test")
	p := listedProduct(t, 2)

	resp := doJSON(t, http.MethodPost, "/order", token, orderBody("INT-CONS-1",
		orderItemRequest{ProductID: p.ID, Quantity: 2, UnitPrice: 10},
		orderItemRequest{ProductID: p.ID, Quantity: 3, UnitPrice: 10},
	))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	got := decodeJSON[orderResponse](t, resp)
	if len(got.Items) != 1 {
		t.Fatalf("expected 1 consolidated item, got %d", len(got.Items))
	}
	if got.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", got.Items[0].Quantity)
	}
}

func TestCreateOrder_DuplicateCode_AcrossUsers(t *testing.T) {
	first := registerUser(t, "codeowner@integration.test")
	second := registerUser(t, "codetaker@integration.test")
	p := listedProduct(t, 3)
	item := orderItemRequest{ProductID: p.ID, Quantity: 1, UnitPrice: 99.90}

	resp := doJSON(t, http.MethodPost, "/order", first, orderBody("INT-SHARED-CODE", item))
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, "/order", second, orderBody("INT-SHARED-CODE", item))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("second create: expected 400, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if want := "order code INT-SHARED-CODE already exists"; body.Message != want {
		t.Fatalf("expected %q, got %q", want, body.Message)
	}
}

func TestCreateOrder_UnknownProducts(t *testing.T) {
	token := registerUser(t, "ghostbuyer@integration.test")

	resp := doJSON(t, http.MethodPost, "/order", token, orderBody("INT-GHOST-1",
		orderItemRequest{ProductID: "ghost-1", Quantity: 1, UnitPrice: 5},
		orderItemRequest{ProductID: "ghost-2", Quantity: 1, UnitPrice: 5},
	))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if want := "product(s) not found: ghost-1, ghost-2"; body.Message != want {
		t.Fatalf("expected %q, got %q", want, body.Message)
	}
}

func TestGetOrder_OwnershipIsolation(t *testing.T) {
	owner := registerUser(t, "owner@integration.test")
	stranger := registerUser(t, "stranger@integration.test")
	p := listedProduct(t, 4)

	resp := doJSON(t, http.MethodPost, "/order", owner, orderBody("INT-PRIVATE-1",
		orderItemRequest{ProductID: p.ID, Quantity: 1, UnitPrice: 30},
	))
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}

	// Owner sees it.
	resp = doGet(t, "/order/INT-PRIVATE-1", owner)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner get: expected 200, got %d", resp.StatusCode)
	}

	// Stranger gets the same 404 as for a nonexistent code.
	resp = doGet(t, "/order/INT-PRIVATE-1", stranger)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("stranger get: expected 404, got %d", resp.StatusCode)
	}
}

func TestListOrders_SortedByCreationDateDesc(t *testing.T) {
	token := registerUser(t, "lister@integration.test")
	p := listedProduct(t, 5)
	item := orderItemRequest{ProductID: p.ID, Quantity: 1, UnitPrice: 12.34}

	dates := []string{"2025-01-15T08:00:00Z", "2025-03-20T08:00:00Z", "2025-02-10T08:00:00Z"}
	for i, d := range dates {
		body := orderBody(fmt.Sprintf("INT-LIST-%d", i), item)
		body.CreationDate = d
		resp := doJSON(t, http.MethodPost, "/order", token, body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create %d: expected 201, got %d", i, resp.StatusCode)
		}
	}

	resp := doGet(t, "/order/list", token)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}

	got := decodeJSON[[]orderResponse](t, resp)
	if len(got) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(got))
	}
	wantOrder := []string{"INT-LIST-1", "INT-LIST-2", "INT-LIST-0"}
	for i, want := range wantOrder {
		if got[i].OrderCode != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, got[i].OrderCode)
		}
	}
}

func TestUpdateOrder_ReplacesItems(t *testing.T) {
	token := registerUser(t, "updater@integration.test")
	p0, p1 := listedProduct(t, 6), listedProduct(t, 7)

	resp := doJSON(t, http.MethodPost, "/order", token, orderBody("INT-UPD-1",
		orderItemRequest{ProductID: p0.ID, Quantity: 1, UnitPrice: 20},
	))
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPatch, "/order/INT-UPD-1", token, map[string]any{
		"items": []orderItemRequest{{ProductID: p1.ID, Quantity: 4, UnitPrice: 7.50}},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}

	got := decodeJSON[orderResponse](t, resp)
	if len(got.Items) != 1 || got.Items[0].ProductID != p1.ID || got.Items[0].Quantity != 4 {
		t.Fatalf("item set not replaced: %+v", got.Items)
	}
	// Untouched fields keep their stored values.
	if got.TotalValue != 150.50 {
		t.Fatalf("total overwritten: got %v", got.TotalValue)
	}
}

func TestDeleteOrder_ThenGone(t *testing.T) {
	token := registerUser(t, "deleter@integration.test")
	p := listedProduct(t, 8)

	resp := doJSON(t, http.MethodPost, "/order", token, orderBody("INT-DEL-1",
		orderItemRequest{ProductID: p.ID, Quantity: 1, UnitPrice: 45},
	))
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, "/order/INT-DEL-1", token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}

	msg := decodeJSON[messageResponse](t, resp)
	if want := "order INT-DEL-1 deleted successfully"; msg.Message != want {
		t.Fatalf("expected %q, got %q", want, msg.Message)
	}

	after := doGet(t, "/order/INT-DEL-1", token)
	defer after.Body.Close()
	if after.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", after.StatusCode)
	}
}
