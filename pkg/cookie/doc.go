// Package cookie provides a cookie manager with shared defaults and
// optional HMAC-signed values for tamper detection.
package cookie
