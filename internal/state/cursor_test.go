package state

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	encoded := Cursor{CreatedAt: created, ID: "abc"}.Encode()

	decoded, ok := DecodeCursor(encoded)
	require.True(t, ok)
	assert.True(t, decoded.CreatedAt.Equal(created))
	assert.Equal(t, "abc", decoded.ID)
}

func TestDecodeCursorMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"not base64":    "%%%not-base64%%%",
		"no separator":  base64.StdEncoding.EncodeToString([]byte("2024-01-01T00:00:00Z")),
		"bad timestamp": base64.StdEncoding.EncodeToString([]byte("yesterday|abc")),
		"empty id":      base64.StdEncoding.EncodeToString([]byte("2024-01-01T00:00:00Z|")),
		"truncated":     Cursor{CreatedAt: time.Now(), ID: "abc"}.Encode()[:5],
	}
	for name, encoded := range cases {
		t.Run(name, func(t *testing.T) {
			_, ok := DecodeCursor(encoded)
			assert.False(t, ok)
		})
	}
}

func TestCursorForLastItem(t *testing.T) {
	last := mk("p9", 42)
	decoded, ok := DecodeCursor(CursorFor(last))
	require.True(t, ok)
	assert.Equal(t, "p9", decoded.ID)
	assert.True(t, decoded.CreatedAt.Equal(last.at))
}
