//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signupAndToken(t *testing.T, router *gin.Engine, email string) (string, string) {
	t.Helper()

	payload, _ := json.Marshal(map[string]string{"name": "User", "email": email, "password": "secret1"})
	req := httptest.NewRequest("POST", "/auth/signup", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	return data["id"].(string), data["token"].(string)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// TestExpense_FullLifecycle walks signup, login, create, list, delete.
func TestExpense_FullLifecycle(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Cleanup(t)

	router := setupRouter(env)

	_, token := signupAndToken(t, router, fmt.Sprintf("a_%d@x.com", time.Now().UnixNano()))

	// Create
	w := doJSON(t, router, "POST", "/api/v1/expenses", token, map[string]interface{}{
		"title":    "Coffee",
		"category": "Food",
		"amount":   4.5,
		"date":     "2024-01-01",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)["data"].(map[string]interface{})
	expenseID := created["id"].(string)
	require.NotEmpty(t, expenseID)

	// Round-trip: immediate fetch returns the same fields
	w = doJSON(t, router, "GET", "/api/v1/expenses/"+expenseID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	fetched := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Coffee", fetched["title"])
	assert.Equal(t, "Food", fetched["category"])
	assert.Equal(t, 4.5, fetched["amount"])

	// List with category filter contains exactly that item
	w = doJSON(t, router, "GET", "/api/v1/expenses?category=Food", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	listResp := decode(t, w)
	assert.Equal(t, float64(1), listResp["count"])
	items := listResp["data"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, expenseID, items[0].(map[string]interface{})["id"])

	// Delete
	w = doJSON(t, router, "DELETE", "/api/v1/expenses/"+expenseID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Expense deleted successfully", decode(t, w)["message"])

	// List is empty again
	w = doJSON(t, router, "GET", "/api/v1/expenses", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["count"])
}

// TestExpense_OwnershipIsolation verifies cross-user access is
// indistinguishable from a missing record.
func TestExpense_OwnershipIsolation(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Cleanup(t)

	router := setupRouter(env)

	now := time.Now().UnixNano()
	_, tokenA := signupAndToken(t, router, fmt.Sprintf("owner_%d@x.com", now))
	_, tokenB := signupAndToken(t, router, fmt.Sprintf("intruder_%d@x.com", now))

	w := doJSON(t, router, "POST", "/api/v1/expenses", tokenA, map[string]interface{}{
		"title":    "Rent",
		"category": "Bills",
		"amount":   1200.0,
		"date":     "2024-02-01",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	expenseID := decode(t, w)["data"].(map[string]interface{})["id"].(string)

	// B cannot see, update, or delete A's record
	w = doJSON(t, router, "GET", "/api/v1/expenses/"+expenseID, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	foreignBody := w.Body.String()

	w = doJSON(t, router, "PUT", "/api/v1/expenses/"+expenseID, tokenB, map[string]interface{}{"amount": 1.0})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, "DELETE", "/api/v1/expenses/"+expenseID, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// A genuinely unknown id yields the identical GET response
	w = doJSON(t, router, "GET", "/api/v1/expenses/00000000-0000-4000-8000-000000000000", tokenB, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, foreignBody, w.Body.String())

	// B's listing never includes A's record
	w = doJSON(t, router, "GET", "/api/v1/expenses", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["count"])

	// And A can still see it
	w = doJSON(t, router, "GET", "/api/v1/expenses/"+expenseID, tokenA, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestExpense_ListFilteringAndOrdering checks category/date filters and the
// date-desc, created-desc ordering.
func TestExpense_ListFilteringAndOrdering(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Cleanup(t)

	router := setupRouter(env)

	_, token := signupAndToken(t, router, fmt.Sprintf("filters_%d@x.com", time.Now().UnixNano()))

	type seed struct {
		title    string
		category string
		date     string
	}
	seeds := []seed{
		{"Older groceries", "Food", "2024-01-01"},
		{"Taxi", "Transport", "2024-01-15"},
		{"Lunch first", "Food", "2024-01-20"},
		{"Lunch second", "Food", "2024-01-20"},
		{"Flight", "Travel", "2024-03-01"},
	}
	for _, s := range seeds {
		w := doJSON(t, router, "POST", "/api/v1/expenses", token, map[string]interface{}{
			"title":    s.title,
			"category": s.category,
			"amount":   10.0,
			"date":     s.date,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	titlesOf := func(resp map[string]interface{}) []string {
		var titles []string
		for _, item := range resp["data"].([]interface{}) {
			titles = append(titles, item.(map[string]interface{})["title"].(string))
		}
		return titles
	}

	// Category filter returns exactly the matching subset
	w := doJSON(t, router, "GET", "/api/v1/expenses?category=Food", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, float64(3), resp["count"])

	// Same-day entries tie-break by creation time desc
	assert.Equal(t, []string{"Lunch second", "Lunch first", "Older groceries"}, titlesOf(resp))

	// Category + date range returns the intersection
	w = doJSON(t, router, "GET", "/api/v1/expenses?category=Food&startDate=2024-01-10&endDate=2024-01-31", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w)
	assert.Equal(t, float64(2), resp["count"])
	assert.Equal(t, []string{"Lunch second", "Lunch first"}, titlesOf(resp))

	// Unfiltered listing is date desc overall
	w = doJSON(t, router, "GET", "/api/v1/expenses", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w)
	assert.Equal(t, float64(5), resp["count"])
	assert.Equal(t, "Flight", titlesOf(resp)[0])
}

// TestExpense_UpdateIsAtomic verifies a late validation failure leaves the
// stored record untouched.
func TestExpense_UpdateIsAtomic(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Cleanup(t)

	router := setupRouter(env)

	_, token := signupAndToken(t, router, fmt.Sprintf("atomic_%d@x.com", time.Now().UnixNano()))

	w := doJSON(t, router, "POST", "/api/v1/expenses", token, map[string]interface{}{
		"title":    "Gym",
		"category": "Healthcare",
		"amount":   30.0,
		"date":     "2024-01-05",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	expenseID := decode(t, w)["data"].(map[string]interface{})["id"].(string)

	// Title is valid, amount is not: nothing may change
	w = doJSON(t, router, "PUT", "/api/v1/expenses/"+expenseID, token, map[string]interface{}{
		"title":  "Changed title",
		"amount": -5.0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, "GET", "/api/v1/expenses/"+expenseID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Gym", data["title"])
	assert.Equal(t, 30.0, data["amount"])

	// A fully valid partial update goes through
	w = doJSON(t, router, "PUT", "/api/v1/expenses/"+expenseID, token, map[string]interface{}{
		"title": "Gym membership",
	})
	require.Equal(t, http.StatusOK, w.Code)
	data = decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Gym membership", data["title"])
	assert.Equal(t, 30.0, data["amount"])
	assert.Equal(t, "Healthcare", data["category"])
}

// TestExpense_RequiresToken verifies every expense operation is gated.
func TestExpense_RequiresToken(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Cleanup(t)

	router := setupRouter(env)

	paths := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/expenses"},
		{"POST", "/api/v1/expenses"},
		{"GET", "/api/v1/expenses/some-id"},
		{"PUT", "/api/v1/expenses/some-id"},
		{"DELETE", "/api/v1/expenses/some-id"},
	}

	for _, p := range paths {
		w := doJSON(t, router, p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", p.method, p.path)
	}
}
