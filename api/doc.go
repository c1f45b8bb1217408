// Package api provides the HTTP REST API for the landmines board game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "classic", "seed": 42})
//   - GET /api/sessions - List sessions (sort=created|accessed, order=asc|desc, limit)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Stop and remove a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current snapshot
//   - POST /api/sessions/{id}/move - Move the active player ({"x": 2, "z": 3})
//   - GET /api/sessions/{id}/legal-moves - Cells the active player may reach
//   - POST /api/sessions/{id}/restart - Rebuild the board with a new seed
//   - POST /api/sessions/{id}/reset-health - Heal every living player
//   - GET /api/sessions/{id}/events - Event log (page, limit, order)
//
// Configuration:
//   - GET /api/configs - List configurations
//   - GET /api/configs/{name} - Get one configuration
//   - POST /api/configs - Save a configuration; omitted fields take the classic defaults
//
// Results:
//   - GET /api/results - Finished matches and the win leaderboard (limit, offset)
//
// WebSocket:
//   - GET /ws?session={id}&format=json|msgpack - Live events for a session
//
// A rejected move (illegal target, locked out, frozen) is a normal 200 response
// with success=false and a message. Errors are returned as JSON:
//
//	{
//	  "error": "error message",
//	  "code": 404
//	}
//
// Unknown sessions and configs map to 404, bad coordinates and invalid
// configs to 400, and moves made while a move is resolving or after the game
// ended to 409.
package api
