// Package mcp exposes the landmines game to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool calls the REST API and renders the
// response as text. It never touches game state directly.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board, players and turn, rendered as a character grid
//   - legal_moves: cells the active player can reach this turn
//   - move: move the active player to (x, z)
//   - restart_game: regenerate the board with a new seed
//   - reset_health: heal every living player
//   - event_history: paginated event log
//   - list_configs, match_results
//   - game_instructions, describe_cell
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: mounted at /mcp by the main server
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
