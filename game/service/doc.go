// Package service provides the business logic layer for the Landmines game server.
//
// The service package implements:
//   - Multi-session game management
//   - Move processing by cell activation
//   - Event history paging and live event publishing
//   - Recording of finished matches
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
// EventPublisher receives every game event, typically the websocket hub.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game. Each Session runs one goroutine that owns its match.GameSession:
// requests are queued through Session.Do and the same loop advances the game
// clock every TickInterval, so animated moves, teleporter cooldowns and
// lockouts progress without a request.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr,
//		service.WithPublisher(hub),
//		service.WithResults(store))
//
//	info, err := gameService.CreateSession(ctx, "classic", 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, 2, 1)
package service
