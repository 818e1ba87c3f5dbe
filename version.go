package vectro

// Version is the library version reported by the CLI and the HTTP server.
const Version = "0.4.0"
