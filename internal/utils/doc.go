// Package utils provides shared low-level helpers used by the providers:
// a synchronous JSON POST round-trip ([DoPostSync]), response body cleanup
// ([CloseWithLog]) and string helpers for log output.
package utils
