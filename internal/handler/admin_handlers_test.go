package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ezpotd/intbeetrainer/internal/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAdminMux(catalog *mockCatalogService, token string) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterAdminHandlers(mux, catalog, token, zap.NewNop())
	return mux
}

func TestAdmin_NoToken_Unauthorized(t *testing.T) {
	mux := newAdminMux(new(mockCatalogService), "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/admin/problems", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdmin_WrongToken_Unauthorized(t *testing.T) {
	mux := newAdminMux(new(mockCatalogService), "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/admin/problems", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdmin_TokenNotConfigured(t *testing.T) {
	mux := newAdminMux(new(mockCatalogService), "")

	req := httptest.NewRequest(http.MethodGet, "/admin/problems", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAdmin_CreateProblem_Success(t *testing.T) {
	catalog := new(mockCatalogService)
	catalog.On("CreateProblem", mock.Anything, storage.CreateProblemInput{
		Text: "2*x", Answer: "x^2", Difficulty: 2,
	}).Return(storage.ProblemRow{ID: 5, Text: "2*x", Answer: "x^2", Difficulty: 2}, nil).Once()
	mux := newAdminMux(catalog, "s3cret")

	body := strings.NewReader(`{"problemText":"2*x","answer":"x^2","difficulty":2}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/problems", body)
	req.Header.Set("Authorization", "Bearer s3cret")
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var row storage.ProblemRow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &row))
	require.Equal(t, int64(5), row.ID)

	catalog.AssertExpectations(t)
}

func TestAdmin_CreateProblem_BadJSON(t *testing.T) {
	mux := newAdminMux(new(mockCatalogService), "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/admin/problems", strings.NewReader("{nope"))
	req.Header.Set("Authorization", "Bearer s3cret")
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmin_ListProblems_Success(t *testing.T) {
	catalog := new(mockCatalogService)
	catalog.On("ListProblemRows", mock.Anything).Return([]storage.ProblemRow{
		{ID: 1, Text: "2*x", Answer: "x^2", Difficulty: 2},
	}, nil).Once()
	mux := newAdminMux(catalog, "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/admin/problems", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var rows []storage.ProblemRow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)

	catalog.AssertExpectations(t)
}

func TestAdmin_ListProblems_StoreError(t *testing.T) {
	catalog := new(mockCatalogService)
	catalog.On("ListProblemRows", mock.Anything).
		Return(nil, errors.New("db down")).Once()
	mux := newAdminMux(catalog, "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/admin/problems", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}
