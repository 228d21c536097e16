// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package envelope

import "strings"

// backendToClient maps the backend's status enum to the client vocabulary.
var backendToClient = map[string]string{
	"PENDING":            "pending",
	"UNDER_REVIEW":       "reviewing",
	"APPROVED":           "published",
	"REJECTED":           "rejected",
	"NEEDS_MODIFICATION": "revision",
}

var clientToBackend = func() map[string]string {
	m := make(map[string]string, len(backendToClient))
	for k, v := range backendToClient {
		m[v] = k
	}
	return m
}()

// ClientStatus translates a backend status to the client vocabulary.
// Unknown values are returned unchanged.
func ClientStatus(s string) string {
	if v, ok := backendToClient[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return v
	}
	return s
}

// BackendStatus translates a client status to the backend enum. Unknown
// values are upper-cased.
func BackendStatus(s string) string {
	if v, ok := clientToBackend[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v
	}
	return strings.ToUpper(s)
}
