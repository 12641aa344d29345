// Package logger provides slog attribute helpers shared across the security
// components. Helpers follow the empty-Attr pattern: passing a nil error or an
// empty value yields an attribute that slog silently drops, so call sites never
// need explicit nil checks:
//
//	log.Error("ban persistence failed", logger.Error(err), logger.ClientIP(ip))
package logger
