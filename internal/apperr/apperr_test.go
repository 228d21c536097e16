// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{400, KindValidation},
		{401, KindPermission},
		{403, KindPermission},
		{404, KindBusiness},
		{405, KindBusiness},
		{500, KindBusiness},
		{408, KindNetwork},
		{502, KindNetwork},
		{503, KindNetwork},
		{504, KindNetwork},
		{418, KindUnknown},
		{501, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, KindForStatus(tt.status))
		})
	}
}

func TestFromStatus(t *testing.T) {
	e := FromStatus(404, "")
	assert.Equal(t, KindBusiness, e.Kind)
	assert.Equal(t, "404", e.Code)
	assert.Equal(t, "requested resource not found", e.Message)

	e = FromStatus(400, "title is required")
	assert.Equal(t, "title is required", e.Message)

	e = FromStatus(599, "")
	assert.Equal(t, KindUnknown, e.Kind)
	assert.Contains(t, e.Message, "599")

	status, ok := e.Status()
	require.True(t, ok)
	assert.Equal(t, 599, status)
}

func TestFromTransport(t *testing.T) {
	e := FromTransport(fmt.Errorf("dial: %w", context.DeadlineExceeded))
	assert.Equal(t, KindNetwork, e.Kind)
	assert.Equal(t, CodeTimeout, e.Code)
	assert.ErrorIs(t, e, context.DeadlineExceeded)

	e = FromTransport(errors.New("connection refused"))
	assert.Equal(t, CodeNetworkError, e.Code)
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("listing results: %w", Business("1001", "quota exceeded"))
	assert.Equal(t, KindBusiness, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindBusiness))
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.False(t, IsKind(nil, KindUnknown))

	e, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "1001", e.Code)
	assert.Equal(t, "BUSINESS 1001: quota exceeded", e.Error())
}

func TestJournalEvictsOldestFirst(t *testing.T) {
	j := NewJournal(3, zerolog.Nop())
	for i := range 5 {
		j.Record(New(KindRuntime, fmt.Sprint(i), "failure"), "test")
	}

	entries := j.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "2", entries[0].Code)
	assert.Equal(t, "3", entries[1].Code)
	assert.Equal(t, "4", entries[2].Code)
}

func TestJournalDefaultCapacity(t *testing.T) {
	j := NewJournal(0, zerolog.Nop())
	for range DefaultJournalSize + 20 {
		j.Record(errors.New("plain"), "loop")
	}
	assert.Equal(t, DefaultJournalSize, j.Len())

	entries := j.Entries()
	assert.Equal(t, KindUnknown, entries[0].Kind)
	assert.Equal(t, "plain", entries[0].Message)

	j.Clear()
	assert.Zero(t, j.Len())
	assert.Empty(t, j.Entries())
}

func TestJournalIgnoresNil(t *testing.T) {
	j := NewJournal(2, zerolog.Nop())
	j.Record(nil, "noop")
	assert.Zero(t, j.Len())
}
