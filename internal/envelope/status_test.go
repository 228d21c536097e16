// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusVocabularyRoundTrip(t *testing.T) {
	for backend, client := range map[string]string{
		"PENDING":            "pending",
		"UNDER_REVIEW":       "reviewing",
		"APPROVED":           "published",
		"REJECTED":           "rejected",
		"NEEDS_MODIFICATION": "revision",
	} {
		assert.Equal(t, client, ClientStatus(backend))
		assert.Equal(t, backend, BackendStatus(ClientStatus(backend)))
		assert.Equal(t, client, ClientStatus(BackendStatus(client)))
	}
}

func TestStatusVocabularyUnknownValues(t *testing.T) {
	assert.Equal(t, "draft", ClientStatus("draft"))
	assert.Equal(t, "ARCHIVED", ClientStatus("ARCHIVED"))
	assert.Equal(t, "DRAFT", BackendStatus("draft"))
	assert.Equal(t, "ARCHIVED", BackendStatus("Archived"))
	assert.Equal(t, "published", ClientStatus("approved"))
}
