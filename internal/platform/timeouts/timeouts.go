// Package timeouts defines the durations shared by the server and its
// streaming handlers.
package timeouts

import "time"

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Request caps a single non-streaming API request.
const Request = 10 * time.Second

// Shutdown limits how long the server waits for in-flight requests during
// graceful shutdown.
const Shutdown = 5 * time.Second

// StreamWrite caps one write to an SSE or websocket client.
const StreamWrite = 10 * time.Second

// WebSocketPong is how long a websocket may stay silent before it is
// considered dead. WebSocketPing must stay below it.
const WebSocketPong = 60 * time.Second

// WebSocketPing is the keepalive ping period.
const WebSocketPing = 25 * time.Second

// Janitor caps one expired-room sweep.
const Janitor = 5 * time.Second
