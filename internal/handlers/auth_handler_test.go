package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"yarukoto-api/internal/database"
	"yarukoto-api/internal/models"
	"yarukoto-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setupAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	r := gin.New()
	r.POST("/api/login", Login)
	return r
}

func postLogin(t *testing.T, r *gin.Engine, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_FirstLoginRegisters(t *testing.T) {
	r := setupAuthRouter(t)

	w := postLogin(t, r, "alice", "s3cret")
	require.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "alice", resp.Username)

	var user models.User
	require.NoError(t, database.DB.Where("username = ?", "alice").First(&user).Error)
	require.NotEqual(t, "s3cret", user.PasswordHash)
}

func TestLogin_WrongPassword(t *testing.T) {
	r := setupAuthRouter(t)

	w := postLogin(t, r, "bob", "right")
	require.Equal(t, http.StatusOK, w.Code)

	w = postLogin(t, r, "bob", "wrong")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = postLogin(t, r, "bob", "right")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_MissingFields(t *testing.T) {
	r := setupAuthRouter(t)

	w := postLogin(t, r, "carol", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}
