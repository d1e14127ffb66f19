//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAuth_SignupLoginFlow tests the complete authentication flow
func TestAuth_SignupLoginFlow(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Cleanup(t)

	router := setupRouter(env)

	email := fmt.Sprintf("testuser_%d@example.com", time.Now().UnixNano())
	password := "SecurePass123!"

	var userID string

	t.Run("Signup_Success", func(t *testing.T) {
		payload := map[string]string{"name": "Test User", "email": email, "password": password}
		body, _ := json.Marshal(payload)

		req := httptest.NewRequest("POST", "/auth/signup", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "User created successfully", resp["message"])

		data := resp["data"].(map[string]interface{})
		assert.Equal(t, "Test User", data["name"])
		assert.Equal(t, email, data["email"])
		assert.NotEmpty(t, data["token"])
		userID = data["id"].(string)
		assert.NotEmpty(t, userID)
	})

	t.Run("Signup_DuplicateEmail", func(t *testing.T) {
		payload := map[string]string{"name": "Other", "email": email, "password": password}
		body, _ := json.Marshal(payload)

		req := httptest.NewRequest("POST", "/auth/signup", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Signup_DuplicateEmail_DifferentCase", func(t *testing.T) {
		payload := map[string]string{"name": "Other", "email": strings.ToUpper(email), "password": password}
		body, _ := json.Marshal(payload)

		req := httptest.NewRequest("POST", "/auth/signup", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Login_Success", func(t *testing.T) {
		payload := map[string]string{"email": email, "password": password}
		body, _ := json.Marshal(payload)

		req := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Login successful", resp["message"])

		data := resp["data"].(map[string]interface{})
		assert.Equal(t, userID, data["id"])
		assert.NotEmpty(t, data["token"])
	})

	t.Run("Login_WrongPassword_SameAsUnknownEmail", func(t *testing.T) {
		wrongPass, _ := json.Marshal(map[string]string{"email": email, "password": "WrongPassword!"})
		unknownEmail, _ := json.Marshal(map[string]string{"email": "nobody@example.com", "password": password})

		var bodies []string
		for _, body := range [][]byte{wrongPass, unknownEmail} {
			req := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			bodies = append(bodies, w.Body.String())
		}

		assert.Equal(t, bodies[0], bodies[1])
	})

	t.Run("Login_MissingPassword", func(t *testing.T) {
		payload, _ := json.Marshal(map[string]string{"email": email})

		req := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
