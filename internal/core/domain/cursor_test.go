package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCursor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Cursor
		wantErr bool
	}{
		{"plain", "500", 500, false},
		{"zero", "0", 0, false},
		{"large tweet id", "1850000000000000001", 1850000000000000001, false},
		{"surrounding whitespace", " 42\n", 42, false},
		{"empty", "", 0, true},
		{"negative", "-1", 0, true},
		{"not a number", "abc", 0, true},
		{"overflow", "99999999999999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCursor(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidCursor))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCursor_String(t *testing.T) {
	assert.Equal(t, "100", Cursor(100).String())

	parsed, err := ParseCursor(Cursor(1234567890123).String())
	require.NoError(t, err)
	assert.Equal(t, Cursor(1234567890123), parsed)
}

func TestFetchWindow_String(t *testing.T) {
	assert.Equal(t, "since(500, 200)", FetchWindow{Mode: WindowSince, Cursor: 500, Limit: 200}.String())
	assert.Equal(t, "recent(200)", FetchWindow{Mode: WindowRecent, Cursor: 500, Limit: 200}.String())
}

func TestWindowMode_String(t *testing.T) {
	assert.Equal(t, "since", WindowSince.String())
	assert.Equal(t, "recent", WindowRecent.String())
	assert.Equal(t, "unknown", WindowMode(9).String())
}
