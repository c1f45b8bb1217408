// Package websocket provides WebSocket transport for the Landmines game server.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Live forwarding of game events and state
//   - Per-client JSON or msgpack encoding
//   - Connection lifecycle management
//
// Architecture:
//
// A central Hub owns all connections. Each client has a read goroutine and a
// write goroutine; every broadcast goes through the hub's queue and is
// encoded once per wire format in use by the session's clients. Publishing
// never blocks: when the queue is full the message is dropped and logged.
//
// Message Protocol:
//
// Outgoing messages have the shape
//
//	{"session_id": "ab12", "event": "player_moved", "game_state": {...}, "data": {...}}
//
// where data is the engine.Event that caused the update. Clients choose the
// encoding when connecting: /ws?session=ab12 gets JSON text frames,
// /ws?session=ab12&format=msgpack gets msgpack binary frames keyed by the
// same field names.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Close()
//
//	svc := service.NewGameService(sessions, configs, service.WithPublisher(hub))
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"), websocket.ParseFormat(r.URL.Query().Get("format")))
//	})
package websocket
