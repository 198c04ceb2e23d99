// Package logger wraps zap for the loader and its CLI:
//   - a global sugared logger writing console lines to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and adjustment.
//
// Components receive a context and pull their logger from it, so a host that
// embeds the loader can route its messages into its own zap core.
package logger
