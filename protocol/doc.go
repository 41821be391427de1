// Package protocol defines the wire contract between the narrator and
// player processes: four JSON commands routed on a top-level "command"
// field, plus the stream framing used by the TCP transport.
//
// Framing is newline-delimited: one JSON object per line, no newlines
// inside a message. The first version of the tool wrote one message per
// socket write and parsed whole 4096-byte reads as one payload, which
// breaks under TCP fragmentation or coalescing; explicit delimiting is a
// deliberate protocol fix, not preserved behavior. The WebSocket
// transport carries the same JSON objects one per text frame and needs
// no extra delimiter.
package protocol
