// Package realtime pushes events to connected WebSocket clients.
//
// A Hub owns the set of live connections and implements events.EventHandler so
// the dispatcher can fan events out to it. RedisRelay extends the fan-out across
// server instances through Redis pub/sub.
package realtime
