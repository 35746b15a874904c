package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ezpotd/intbeetrainer/internal/game"
	"github.com/ezpotd/intbeetrainer/internal/service"
	"github.com/ezpotd/intbeetrainer/internal/storage"
	"github.com/ezpotd/intbeetrainer/internal/ws"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockBattleService struct {
	mock.Mock
}

func (m *mockBattleService) CreateRoom(cfg game.RoomConfig, host *game.Player) (*game.Room, error) {
	args := m.Called(cfg, host)
	r, _ := args.Get(0).(*game.Room)
	return r, args.Error(1)
}

func (m *mockBattleService) GetRoom(code string) (*game.Room, bool) {
	args := m.Called(code)
	r, _ := args.Get(0).(*game.Room)
	return r, args.Bool(1)
}

func (m *mockBattleService) JoinRoom(code string, p *game.Player, password string) (*game.Room, error) {
	args := m.Called(code, p, password)
	r, _ := args.Get(0).(*game.Room)
	return r, args.Error(1)
}

func (m *mockBattleService) StartGame(ctx context.Context, code, requesterID string) (*game.Room, error) {
	args := m.Called(ctx, code, requesterID)
	r, _ := args.Get(0).(*game.Room)
	return r, args.Error(1)
}

func (m *mockBattleService) SubmitAnswer(room *game.Room, playerID, input string) service.SubmitResult {
	args := m.Called(room, playerID, input)
	res, _ := args.Get(0).(service.SubmitResult)
	return res
}

func (m *mockBattleService) LeaveRoom(playerID string) (*game.Room, game.Departure) {
	args := m.Called(playerID)
	r, _ := args.Get(0).(*game.Room)
	dep, _ := args.Get(1).(game.Departure)
	return r, dep
}

func (m *mockBattleService) IntermissionPause() time.Duration {
	args := m.Called()
	d, _ := args.Get(0).(time.Duration)
	return d
}

type mockCatalogService struct {
	mock.Mock
}

func (m *mockCatalogService) CreateProblem(ctx context.Context, in storage.CreateProblemInput) (storage.ProblemRow, error) {
	args := m.Called(ctx, in)
	row, _ := args.Get(0).(storage.ProblemRow)
	return row, args.Error(1)
}

func (m *mockCatalogService) ListProblems(ctx context.Context, difficulty *int) ([]game.PublicProblem, error) {
	args := m.Called(ctx, difficulty)
	problems, _ := args.Get(0).([]game.PublicProblem)
	return problems, args.Error(1)
}

func (m *mockCatalogService) ListProblemRows(ctx context.Context) ([]storage.ProblemRow, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]storage.ProblemRow)
	return rows, args.Error(1)
}

func (m *mockCatalogService) Verify(ctx context.Context, problemID int64, input string) (bool, error) {
	args := m.Called(ctx, problemID, input)
	return args.Bool(0), args.Error(1)
}

func (m *mockCatalogService) ProgressFor(ctx context.Context, email string) (map[int64]storage.ProgressRecord, error) {
	args := m.Called(ctx, email)
	records, _ := args.Get(0).(map[int64]storage.ProgressRecord)
	return records, args.Error(1)
}

func newTestMux(svc *mockBattleService, catalog *mockCatalogService) *http.ServeMux {
	mux := http.NewServeMux()
	hub := ws.NewHub(svc, zap.NewNop())
	RegisterHandlers(mux, svc, catalog, hub, zap.NewNop())
	return mux
}

func testRoom() *game.Room {
	return game.NewRoom("ABC123", game.RoomConfig{
		MinDiff: 1, MaxDiff: 3, TimePerProblem: 60, NumProblems: 1,
	}, &game.Player{ID: "p1"})
}

func TestHandlers_GetRoom_NotFound(t *testing.T) {
	svc := new(mockBattleService)
	svc.On("GetRoom", "NOSUCH").Return((*game.Room)(nil), false).Once()
	mux := newTestMux(svc, new(mockCatalogService))

	req := httptest.NewRequest(http.MethodGet, "/rooms/NOSUCH", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	svc.AssertExpectations(t)
}

func TestHandlers_GetRoom_Success(t *testing.T) {
	svc := new(mockBattleService)
	svc.On("GetRoom", "ABC123").Return(testRoom(), true).Once()
	mux := newTestMux(svc, new(mockCatalogService))

	req := httptest.NewRequest(http.MethodGet, "/rooms/ABC123", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "ABC123", resp["id"])
	require.Equal(t, "WAITING", resp["status"])

	svc.AssertExpectations(t)
}

func TestHandlers_GetRoom_MethodNotAllowed(t *testing.T) {
	mux := newTestMux(new(mockBattleService), new(mockCatalogService))

	req := httptest.NewRequest(http.MethodPost, "/rooms/ABC123", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandlers_ListProblems_All(t *testing.T) {
	catalog := new(mockCatalogService)
	catalog.On("ListProblems", mock.Anything, (*int)(nil)).Return([]game.PublicProblem{
		{ID: 1, Text: "2*x", Difficulty: 2},
	}, nil).Once()
	mux := newTestMux(new(mockBattleService), catalog)

	req := httptest.NewRequest(http.MethodGet, "/problems?difficulty=all", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp []game.PublicProblem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	require.Equal(t, "2*x", resp[0].Text)

	catalog.AssertExpectations(t)
}

func TestHandlers_ListProblems_ByDifficulty(t *testing.T) {
	catalog := new(mockCatalogService)
	catalog.On("ListProblems", mock.Anything, mock.MatchedBy(func(d *int) bool {
		return d != nil && *d == 3
	})).Return([]game.PublicProblem{}, nil).Once()
	mux := newTestMux(new(mockBattleService), catalog)

	req := httptest.NewRequest(http.MethodGet, "/problems?difficulty=3", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	catalog.AssertExpectations(t)
}

func TestHandlers_ListProblems_BadDifficulty(t *testing.T) {
	mux := newTestMux(new(mockBattleService), new(mockCatalogService))

	req := httptest.NewRequest(http.MethodGet, "/problems?difficulty=nope", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlers_Verify_BadJSON(t *testing.T) {
	mux := newTestMux(new(mockBattleService), new(mockCatalogService))

	req := httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader("{nope"))
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlers_Verify_IllegalInput(t *testing.T) {
	catalog := new(mockCatalogService)
	catalog.On("Verify", mock.Anything, int64(3), "integrate(x,x)").
		Return(false, service.ErrIllegalInput).Once()
	mux := newTestMux(new(mockBattleService), catalog)

	body := strings.NewReader(`{"problemId":3,"input":"integrate(x,x)"}`)
	req := httptest.NewRequest(http.MethodPost, "/verify", body)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Illegal Command")
}

func TestHandlers_Verify_UnknownProblem(t *testing.T) {
	catalog := new(mockCatalogService)
	catalog.On("Verify", mock.Anything, int64(99), "x^2").
		Return(false, storage.ErrProblemNotFound).Once()
	mux := newTestMux(new(mockBattleService), catalog)

	body := strings.NewReader(`{"problemId":99,"input":"x^2"}`)
	req := httptest.NewRequest(http.MethodPost, "/verify", body)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlers_Verify_Success(t *testing.T) {
	catalog := new(mockCatalogService)
	catalog.On("Verify", mock.Anything, int64(3), "x^3/3").Return(true, nil).Once()
	mux := newTestMux(new(mockBattleService), catalog)

	body := strings.NewReader(`{"problemId":3,"input":"x^3/3"}`)
	req := httptest.NewRequest(http.MethodPost, "/verify", body)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp["isCorrect"])

	catalog.AssertExpectations(t)
}

func TestHandlers_Progress_MissingEmail(t *testing.T) {
	mux := newTestMux(new(mockBattleService), new(mockCatalogService))

	req := httptest.NewRequest(http.MethodGet, "/progress", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlers_Progress_Success(t *testing.T) {
	catalog := new(mockCatalogService)
	catalog.On("ProgressFor", mock.Anything, "user@example.com").Return(map[int64]storage.ProgressRecord{
		7: {Solved: true, Attempts: 2},
	}, nil).Once()
	mux := newTestMux(new(mockBattleService), catalog)

	req := httptest.NewRequest(http.MethodGet, "/progress?email=user@example.com", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]storage.ProgressRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp["7"].Solved)
	require.Equal(t, 2, resp["7"].Attempts)

	catalog.AssertExpectations(t)
}
