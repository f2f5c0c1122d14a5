// Package source provides chunk sources for the stream proxies.
//
//   - SSE: pull-based stream.Source reading server-sent events of a chat
//     completion, as sent over HTTP or saved to a (gzip) capture file
//   - Channel: await-based stream.AsyncSource fed by a producer goroutine
//   - Pump: moves a pull source into a Channel
package source
