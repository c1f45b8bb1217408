package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/mcp-training/landmines/game/engine"
	"github.com/wricardo/mcp-training/landmines/game/results"
	"github.com/wricardo/mcp-training/landmines/game/service"
)

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

// testState is a 3x2 board: landmine at (1,0), teleporter pair at (2,0)/(0,1)
func testState() *engine.GameState {
	grid := [][]engine.Cell{
		{
			{Pos: engine.Coord{X: 0, Z: 0}, Kind: engine.Plain},
			{Pos: engine.Coord{X: 1, Z: 0}, Kind: engine.Landmine},
			{Pos: engine.Coord{X: 2, Z: 0}, Kind: engine.Teleporter, PairID: 1},
		},
		{
			{Pos: engine.Coord{X: 0, Z: 1}, Kind: engine.Teleporter, PairID: 1, CoolingDown: true},
			{Pos: engine.Coord{X: 1, Z: 1}, Kind: engine.Freeze},
			{Pos: engine.Coord{X: 2, Z: 1}, Kind: engine.Plain},
		},
	}
	return &engine.GameState{
		Width:  3,
		Height: 2,
		Grid:   grid,
		Players: []engine.Player{
			{ID: 0, Name: "Ana", Position: engine.Coord{X: 0, Z: 0}, Health: 100, MaxHealth: 100, Alive: true},
			{ID: 1, Name: "Bia", Position: engine.Coord{X: 2, Z: 1}, Health: 50, MaxHealth: 100, Alive: true, FrozenTurns: 1},
			{ID: 2, Name: "Caio", Position: engine.Coord{X: 2, Z: 0}, Health: 0, MaxHealth: 100, Alive: false},
		},
		Turn:           engine.TurnState{Active: 0, RemainingMoves: 2, Phase: engine.PhaseAwaitingMove, Turn: 3},
		LegalMoves:     []engine.Coord{{X: 1, Z: 0}, {X: 2, Z: 0}, {X: 0, Z: 1}, {X: 1, Z: 1}},
		LandmineDamage: 50,
		Message:        "Ana's turn",
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "ab12"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall(context.Background(), "GET", "/api/sessions/ab12", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["id"] != "ab12" {
		t.Errorf("Expected id ab12, got %v", response["id"])
	}
}

func TestClient_apiCall_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "API error body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]interface{}{"error": "session not found", "code": 404})
			},
			want: "session not found",
		},
		{
			name: "Plain text error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Internal Server Error"))
			},
			want: "API error: 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestClient_apiCall_Unreachable(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")
	if err := client.apiCall(context.Background(), "GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_createSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["config_id"] != "four_players" || body["seed"].(float64) != 7 {
			t.Errorf("Unexpected body: %v", body)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(service.SessionInfo{
			ID:         "ab12",
			ConfigName: "four_players",
			Seed:       7,
			GameState:  testState(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateSession(context.Background(), callRequest("create_session", map[string]interface{}{
		"config_id": "four_players",
		"seed":      float64(7),
	}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "ab12") || !strings.Contains(text, "Seed: 7") {
		t.Errorf("Expected session ID and seed in result, got: %s", text)
	}
}

func TestClient_handleMove(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/ab12/move" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body map[string]int
		json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(service.MoveResult{
			Success: true,
			Outcome: engine.MoveOutcome{
				Result:         engine.MoveAccepted,
				From:           engine.Coord{X: 0, Z: 0},
				To:             engine.Coord{X: body["x"], Z: body["z"]},
				Distance:       1,
				RemainingMoves: 1,
			},
			Events: []engine.Event{{Seq: 9, Type: engine.EventPlayerDamaged, Message: "Ana stepped on a landmine"}},
			Danger: "DANGER: One more landmine would eliminate this player",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	t.Run("missing coordinates", func(t *testing.T) {
		result, err := client.handleMove(context.Background(), callRequest("move", map[string]interface{}{"session_id": "ab12", "x": float64(1)}))
		if err != nil {
			t.Fatal(err)
		}
		if !result.IsError {
			t.Error("Expected tool error for missing z")
		}
	})

	t.Run("accepted", func(t *testing.T) {
		result, err := client.handleMove(context.Background(), callRequest("move", map[string]interface{}{
			"session_id": "ab12",
			"x":          float64(1),
			"z":          float64(0),
			"intent":     "testing the landmine",
		}))
		if err != nil {
			t.Fatal(err)
		}
		text := resultText(t, result)
		for _, want := range []string{"✓ Move accepted", "(0,0) → (1,0)", "stepped on a landmine", "Danger: DANGER"} {
			if !strings.Contains(text, want) {
				t.Errorf("Expected %q in result, got: %s", want, text)
			}
		}
	})
}

func TestClient_handleResetHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions/ab12/reset-health" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Health restored",
			"state":   testState(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleResetHealth(context.Background(), callRequest("reset_health", map[string]interface{}{"session_id": "ab12"}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got %s", resultText(t, result))
	}
	if text := resultText(t, result); !strings.Contains(text, "Health restored") {
		t.Errorf("Expected confirmation in result, got: %s", text)
	}
}

func TestClient_handleEventHistoryQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("limit") != "5" || q.Get("order") != "asc" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(service.HistoryResponse{
			Events:      []engine.Event{{Seq: 6, Type: engine.EventTurnAdvanced, Message: "Bia's turn"}},
			TotalEvents: 12,
			Retained:    12,
			Page:        2,
			TotalPages:  3,
			HasNext:     true,
		})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).handleEventHistory(context.Background(), callRequest("event_history", map[string]interface{}{
		"session_id": "ab12",
		"page":       float64(2),
		"limit":      float64(5),
		"order":      "asc",
	}))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "Page 2/3") || !strings.Contains(text, "Bia's turn") || !strings.Contains(text, "page 3") {
		t.Errorf("Unexpected history output: %s", text)
	}
}

func TestClient_handleDescribeCell(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(testState())
	}))
	defer server.Close()
	client := NewClient(server.URL)

	tests := []struct {
		name    string
		x, z    float64
		isError bool
		want    []string
	}{
		{"landmine", 1, 0, false, []string{"Character: M", "50 damage", "Reachable this turn: yes"}},
		{"teleporter", 2, 0, false, []string{"pair 1", "Partner: (0, 1)", "Status: ready"}},
		{"cooling teleporter", 0, 1, false, []string{"Character: t", "cooling down"}},
		{"occupied plain", 2, 1, false, []string{"Occupied by: Bia", "Reachable this turn: no"}},
		{"out of bounds", 3, 0, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := client.handleDescribeCell(context.Background(), callRequest("describe_cell", map[string]interface{}{
				"session_id": "ab12", "x": tt.x, "z": tt.z,
			}))
			if err != nil {
				t.Fatal(err)
			}
			if result.IsError != tt.isError {
				t.Fatalf("Expected IsError=%v, got %v", tt.isError, result.IsError)
			}
			text := resultText(t, result)
			for _, want := range tt.want {
				if !strings.Contains(text, want) {
					t.Errorf("Expected %q in result, got: %s", want, text)
				}
			}
		})
	}
}

func TestFormatGameState(t *testing.T) {
	result := formatGameState(testState())

	expected := []string{
		"Turn 3 | Active: Ana | Moves left: 2",
		"> 1 Ana at (0,0) - health 100/100",
		"2 Bia at (2,1) - health 50/100, frozen 1",
		"3 Caio at (2,0) - ELIMINATED",
		"1MT\n",
		"tF2\n",
		"Message: Ana's turn",
	}
	for _, field := range expected {
		if !strings.Contains(result, field) {
			t.Errorf("Expected %q in formatted output, got:\n%s", field, result)
		}
	}
}

func TestFormatGameState_GameOver(t *testing.T) {
	state := testState()
	state.GameOver = true
	winner := engine.PlayerID(1)
	state.Winner = &winner

	if result := formatGameState(state); !strings.Contains(result, "GAME OVER - Bia wins!") {
		t.Errorf("Expected winner line, got: %s", result)
	}

	state.Winner = nil
	if result := formatGameState(state); !strings.Contains(result, "GAME OVER - draw") {
		t.Errorf("Expected draw line, got: %s", result)
	}

	if formatGameState(nil) != "No game state available" {
		t.Error("Expected placeholder for nil state")
	}
}

func TestFormatMoveResult_Rejected(t *testing.T) {
	result := formatMoveResult(&service.MoveResult{
		Success: false,
		Outcome: engine.MoveOutcome{Result: engine.MoveIllegal},
		Message: "distance 3 exceeds remaining moves 2",
	})

	if !strings.Contains(result, "✗ Move rejected (illegal): distance 3 exceeds remaining moves 2") {
		t.Errorf("Unexpected output: %s", result)
	}
}

func TestFormatLegalMoves(t *testing.T) {
	result := formatLegalMoves(&service.LegalMovesResult{
		PlayerName:     "Ana",
		RemainingMoves: 1,
		Phase:          engine.PhaseAwaitingMove,
		Moves:          []engine.Coord{{X: 1, Z: 0}, {X: 0, Z: 1}},
	})
	if !strings.Contains(result, "Legal targets (2): (1,0) (0,1)") {
		t.Errorf("Unexpected output: %s", result)
	}

	if result := formatLegalMoves(&service.LegalMovesResult{}); !strings.Contains(result, "No legal moves") {
		t.Errorf("Unexpected output: %s", result)
	}
}

func TestFormatResults(t *testing.T) {
	result := formatResults(&service.ResultsResponse{
		Results: []results.MatchResult{
			{WinnerName: "Ana", ConfigName: "classic", Turns: 12, Seed: 4},
			{ConfigName: "classic", Turns: 9},
		},
		Total:       2,
		Leaderboard: []results.LeaderboardEntry{{Name: "Ana", Wins: 1}},
	})

	for _, want := range []string{"(2 total)", "Ana won on classic after 12 turns", "draw won", "1. Ana - 1 wins"} {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q in output, got: %s", want, result)
		}
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callRequest("game_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	expectedContent := []string{
		"Landmines Board Game - Complete Instructions",
		"GAME OBJECTIVE:",
		"TURNS:",
		"Manhattan distance",
		"TILES:",
		"TELEPORTERS:",
		"VICTORY CONDITIONS:",
	}
	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}

func TestArguments_NilSafe(t *testing.T) {
	args := arguments(mcp.CallToolRequest{})
	if args == nil {
		t.Fatal("Expected empty map")
	}
	if _, ok := intArg(args, "x"); ok {
		t.Error("Expected missing int argument")
	}
}
