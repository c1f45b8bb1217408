package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/landmines/game/engine"
	"github.com/wricardo/mcp-training/landmines/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Landmines Board Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Landmines Board Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Be the last player standing. Players take turns moving across a grid that hides
landmines, freeze tiles, paintball tiles and paired teleporters.

AVAILABLE TOOLS:
- create_session: Create a new game session (optional config_id and seed)
- list_sessions / get_session: Inspect sessions
- game_state: Board, players and turn
- legal_moves: Cells the active player can reach with the moves left this turn
- move: Move the active player to (x, z) - requires intent explanation
- restart_game: Start over on a freshly generated board
- reset_health: Heal every player still standing back to full health
- event_history: What happened so far
- list_configs: Available configurations
- match_results: Finished matches and the leaderboard
- game_instructions: Full rules
- describe_cell: Details about one cell

NOTE: The 'intent' parameter on the move tool serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection and seed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use, see list_configs (optional, defaults to classic)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Board generation seed; the same seed and config give the same board (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, players and turn",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "legal_moves",
		Description: "List the cells the active player can move to with the moves remaining this turn",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleLegalMoves)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the active player to cell (x, z). The Manhattan distance is taken from the moves remaining this turn.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Target column (0-based)",
				},
				"z": map[string]interface{}{
					"type":        "integer",
					"description": "Target row (0-based)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "x", "z"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_game",
		Description: "Restart the game on a freshly generated board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_health",
		Description: "Restore every living player to full health. Eliminated players stay out.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleResetHealth)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "event_history",
		Description: "Get the game event log for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest first (asc) or newest first (desc, default)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleEventHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "match_results",
		Description: "List finished matches and the win leaderboard",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Results to return",
				},
				"offset": map[string]interface{}{
					"type":        "integer",
					"description": "Results to skip",
				},
			},
		},
	}, c.handleMatchResults)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed information about one cell: its tile, teleporter partner, occupants and whether the active player can reach it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column) of the cell to describe (0-based)",
				},
				"z": map[string]interface{}{
					"type":        "integer",
					"description": "Z coordinate (row) of the cell to describe (0-based)",
				},
			},
			Required: []string{"session_id", "x", "z"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if configID, _ := args["config_id"].(string); configID != "" {
		body["config_id"] = configID
	}
	if seed, ok := intArg(args, "seed"); ok && seed > 0 {
		body["seed"] = seed
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\nSeed: %d\n\n%s",
		session.ID, session.ConfigName, session.Seed, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "in progress"
		if s.GameState != nil && s.GameState.GameOver {
			status = "finished"
		}
		result += fmt.Sprintf("- %s (Config: %s, %s, Created: %s)\n",
			s.ID, s.ConfigName, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleLegalMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var moves service.LegalMovesResult
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/legal-moves"), nil, &moves); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLegalMoves(&moves)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	x, okX := intArg(args, "x")
	z, okZ := intArg(args, "z")
	if !okX || !okZ {
		return mcp.NewToolResultError("x and z are required integers"), nil
	}

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	intent, _ := args["intent"].(string)
	_ = intent

	body := map[string]int{"x": x, "z": z}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/restart"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleResetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset-health"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleEventHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order, _ := args["order"].(string); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/events")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, config := range configs {
		result += fmt.Sprintf("• %s (config_id: %s)\n  %s\n  Grid: %dx%d, Players: %d, Moves per turn: %d\n\n",
			config.Name, config.ConfigID, config.Description,
			config.Width, config.Height, config.PlayerCount, config.MovesPerTurn)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMatchResults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	params := url.Values{}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if offset, ok := intArg(args, "offset"); ok {
		params.Set("offset", fmt.Sprint(offset))
	}
	path := "/api/results"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var page service.ResultsResponse
	if err := c.apiCall(ctx, "GET", path, nil, &page); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatResults(&page)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `💣 Landmines Board Game - Complete Instructions

GAME OBJECTIVE:
Be the last player alive. Three or four players start in the corners of the
board and take turns moving. A player is eliminated when their health reaches 0.

TURNS:
• Only the active player may move
• Each turn grants a number of moves (moves_per_turn, 3 in the classic config)
• Moving to (x, z) costs the Manhattan distance |dx| + |dz|
• You may move several times in a turn until your moves run out
• The turn passes to the next living player when moves run out or a tile ends it
• While a move is still resolving, further moves are rejected

COORDINATES:
• x is the column (0 to width-1), z is the row (0 to height-1)
• (0, 0) is the top-left of the rendered grid

TILES:
• . - Plain ground, nothing happens
• M - Landmine: deals damage (15 in classic), then becomes plain ground
• F - Freeze: your turn ends and you skip your next turn(s), then becomes plain ground
• P - Paintball: recolors you (and may deal damage), then becomes plain ground
• T - Teleporter: sends you to its partner teleporter. Both ends then cool down.
  t marks a teleporter that is cooling down and will not fire
• 1-4 - Players (by turn order)

TELEPORTERS:
• Teleporters come in pairs and are never consumed
• After a teleport you are briefly locked out while arriving
• By default you cannot teleport onto a cell occupied by another player
• Arriving on the partner does not trigger it again

STRATEGY:
• Call legal_moves before moving to see exactly which cells are reachable
• Use describe_cell to check a target before stepping on it
• Watch the danger assessment in move results when your health is low
• Frozen opponents lose turns; use that time to get away from landmines
• Teleporters are the fastest way across a long board

VICTORY CONDITIONS:
- The last player with health above 0 wins
- If every remaining player is eliminated at once the game ends in a draw
- Finished matches are recorded; see match_results for the leaderboard

Good luck, and watch your step! 💥`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	x, okX := intArg(args, "x")
	z, okZ := intArg(args, "z")
	if !okX || !okZ {
		return mcp.NewToolResultError("x and z are required integers"), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if x < 0 || x >= state.Width || z < 0 || z >= state.Height || z >= len(state.Grid) {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d, %d) are out of bounds. Grid is %dx%d (x 0-%d, z 0-%d)",
			x, z, state.Width, state.Height, state.Width-1, state.Height-1)), nil
	}

	return mcp.NewToolResultText(describeCell(&state, engine.Coord{X: x, Z: z})), nil
}

func describeCell(state *engine.GameState, at engine.Coord) string {
	cell := state.Grid[at.Z][at.X]

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Cell (%d, %d)\n", at.X, at.Z))
	result.WriteString(fmt.Sprintf("Character: %s\n", cellChar(cell)))

	switch cell.Kind {
	case engine.Landmine:
		result.WriteString(fmt.Sprintf("Type: Landmine\nEffect: %d damage, then the cell becomes plain ground\n", state.LandmineDamage))
	case engine.Freeze:
		result.WriteString("Type: Freeze\nEffect: ends the turn and skips the player's next turn(s), then becomes plain ground\n")
	case engine.Paintball:
		result.WriteString("Type: Paintball\nEffect: recolors the player, then becomes plain ground\n")
	case engine.Teleporter:
		result.WriteString(fmt.Sprintf("Type: Teleporter (pair %d)\n", cell.PairID))
		if partner, ok := teleporterPartner(state, cell); ok {
			result.WriteString(fmt.Sprintf("Partner: (%d, %d)\n", partner.X, partner.Z))
		}
		if cell.CoolingDown {
			result.WriteString("Status: cooling down, will not fire\n")
		} else {
			result.WriteString("Status: ready\n")
		}
	default:
		result.WriteString("Type: Plain\n")
		if cell.Triggered {
			result.WriteString("Note: a tile here has already been triggered\n")
		}
	}

	for _, p := range state.Players {
		if p.Position == at && p.Alive {
			result.WriteString(fmt.Sprintf("Occupied by: %s (health %d)\n", p.Name, p.Health))
		}
	}

	if active := activePlayer(state); active != nil {
		d := engine.ManhattanDistance(active.Position, at)
		result.WriteString(fmt.Sprintf("Distance from %s: %d\n", active.Name, d))
		reachable := false
		for _, c := range state.LegalMoves {
			if c == at {
				reachable = true
				break
			}
		}
		if reachable {
			result.WriteString("Reachable this turn: yes\n")
		} else {
			result.WriteString("Reachable this turn: no\n")
		}
	}

	return result.String()
}

func teleporterPartner(state *engine.GameState, cell engine.Cell) (engine.Coord, bool) {
	for _, row := range state.Grid {
		for _, other := range row {
			if other.Kind == engine.Teleporter && other.PairID == cell.PairID && other.Pos != cell.Pos {
				return other.Pos, true
			}
		}
	}
	return engine.Coord{}, false
}

func activePlayer(state *engine.GameState) *engine.Player {
	id := int(state.Turn.Active)
	if id < 0 || id >= len(state.Players) {
		return nil
	}
	return &state.Players[id]
}

// Formatting helpers

func cellChar(cell engine.Cell) string {
	switch cell.Kind {
	case engine.Landmine:
		return "M"
	case engine.Freeze:
		return "F"
	case engine.Paintball:
		return "P"
	case engine.Teleporter:
		if cell.CoolingDown {
			return "t"
		}
		return "T"
	default:
		return "."
	}
}

func playerName(state *engine.GameState, id engine.PlayerID) string {
	if state != nil && id >= 0 && int(id) < len(state.Players) {
		return state.Players[id].Name
	}
	return fmt.Sprintf("Player %d", id+1)
}

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nSeed: %d\nRestarts: %d\nCreated: %s\n\n%s",
		session.ID, session.ConfigName, session.Seed, session.Restarts,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	result.WriteString(fmt.Sprintf("Turn %d | Active: %s | Moves left: %d | Phase: %s\n\n",
		state.Turn.Turn, playerName(state, state.Turn.Active), state.Turn.RemainingMoves, state.Turn.Phase))

	// Players
	for _, p := range state.Players {
		status := fmt.Sprintf("health %d/%d", p.Health, p.MaxHealth)
		if !p.Alive {
			status = "ELIMINATED"
		}
		if p.FrozenTurns > 0 {
			status += fmt.Sprintf(", frozen %d", p.FrozenTurns)
		}
		if p.LockedOut {
			status += ", teleporting"
		}
		if p.Color != "" {
			status += ", color " + p.Color
		}
		marker := " "
		if p.ID == state.Turn.Active && !state.GameOver {
			marker = ">"
		}
		result.WriteString(fmt.Sprintf("%s %d %s at (%d,%d) - %s\n",
			marker, p.ID+1, p.Name, p.Position.X, p.Position.Z, status))
	}
	result.WriteString("\n")

	occupants := make(map[engine.Coord]engine.PlayerID)
	for _, p := range state.Players {
		if p.Alive {
			occupants[p.Position] = p.ID
		}
	}

	// Grid
	for z, row := range state.Grid {
		for x, cell := range row {
			if id, ok := occupants[engine.Coord{X: x, Z: z}]; ok {
				result.WriteString(fmt.Sprint(int(id) + 1))
			} else {
				result.WriteString(cellChar(cell))
			}
		}
		result.WriteString("\n")
	}

	// Status
	if state.GameOver {
		if state.Winner != nil {
			result.WriteString(fmt.Sprintf("\n🏆 GAME OVER - %s wins!", playerName(state, *state.Winner)))
		} else {
			result.WriteString("\n💀 GAME OVER - draw")
		}
	}

	if state.Message != "" {
		result.WriteString(fmt.Sprintf("\nMessage: %s", state.Message))
	}

	return result.String()
}

func formatLegalMoves(moves *service.LegalMovesResult) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s at (%d,%d), %d moves left, phase %s\n",
		moves.PlayerName, moves.Position.X, moves.Position.Z, moves.RemainingMoves, moves.Phase))

	if len(moves.Moves) == 0 {
		result.WriteString("No legal moves right now")
		return result.String()
	}

	result.WriteString(fmt.Sprintf("Legal targets (%d):", len(moves.Moves)))
	for _, c := range moves.Moves {
		result.WriteString(fmt.Sprintf(" (%d,%d)", c.X, c.Z))
	}
	return result.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var out strings.Builder
	o := result.Outcome

	if result.Success {
		out.WriteString(fmt.Sprintf("✓ Move accepted: (%d,%d) → (%d,%d), distance %d, %d moves left\n",
			o.From.X, o.From.Z, o.To.X, o.To.Z, o.Distance, o.RemainingMoves))
	} else {
		out.WriteString(fmt.Sprintf("✗ Move rejected (%s): %s\n", o.Result, result.Message))
	}

	if len(result.Events) > 0 {
		out.WriteString("\nEvents:\n")
		for _, ev := range result.Events {
			out.WriteString(formatEventLine(ev))
		}
	}

	if result.Danger != "" {
		out.WriteString(fmt.Sprintf("\nDanger: %s\n", result.Danger))
	}

	if result.GameState != nil {
		out.WriteString("\n" + formatGameState(result.GameState))
	}

	return out.String()
}

func formatEventLine(ev engine.Event) string {
	if ev.Message != "" {
		return fmt.Sprintf("  #%d %s: %s\n", ev.Seq, ev.Type, ev.Message)
	}
	return fmt.Sprintf("  #%d %s (player %d)\n", ev.Seq, ev.Type, ev.Player+1)
}

func formatHistory(history *service.HistoryResponse) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Event History (Page %d/%d, %d total, %d retained):\n\n",
		history.Page, history.TotalPages, history.TotalEvents, history.Retained))

	if len(history.Events) == 0 {
		result.WriteString("No events yet\n")
	}
	for _, ev := range history.Events {
		result.WriteString(formatEventLine(ev))
	}

	if history.HasNext {
		result.WriteString(fmt.Sprintf("\nMore events on page %d", history.Page+1))
	}
	return result.String()
}

func formatResults(page *service.ResultsResponse) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Finished Matches (%d total):\n\n", page.Total))

	if len(page.Results) == 0 {
		result.WriteString("No finished matches yet\n")
	}
	for _, r := range page.Results {
		winner := r.WinnerName
		if winner == "" {
			winner = "draw"
		}
		result.WriteString(fmt.Sprintf("- %s: %s won on %s after %d turns (seed %d)\n",
			r.FinishedAt.Format("2006-01-02 15:04"), winner, r.ConfigName, r.Turns, r.Seed))
	}

	if len(page.Leaderboard) > 0 {
		result.WriteString("\nLeaderboard:\n")
		for i, e := range page.Leaderboard {
			result.WriteString(fmt.Sprintf("%d. %s - %d wins\n", i+1, e.Name, e.Wins))
		}
	}
	return result.String()
}
