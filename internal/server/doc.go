// Package server implements the development HTTP server
//
// The server stands in for the remote GraphQL and fraud-net services so a
// headless button session can run end to end, exposes the attempt journal,
// and streams telemetry events to WebSocket observers
package server
