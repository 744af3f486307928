package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskHeader(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		value    string
		expected string
	}{
		{"admin key", "X-Admin-Key", "admin-pass", "[REDACTED]"},
		{"lowercase admin key", "x-admin-key", "admin-pass", "[REDACTED]"},
		{"cookie", "Cookie", "studio_admin_session=abc", "[REDACTED]"},
		{"set-cookie", "Set-Cookie", "studio_admin_session=abc", "[REDACTED]"},
		{"password header", "X-Password", "mypass", "[REDACTED]"},
		{"secret header", "X-Secret", "topsecret", "[REDACTED]"},

		{"authorization bearer", "Authorization", "Bearer sk_test_1234", "****1234"},
		{"storage access key", "AccessKey", "zone-key-5678", "****5678"},
		{"short token", "AccessKey", "abc", "****"},
		{"mixed case auth", "AUTHORIZATION", "secret-abcd", "****abcd"},

		{"content-type", "Content-Type", "application/json", "application/json"},
		{"user-agent", "User-Agent", "test-client/1.0", "test-client/1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, MaskHeader(tt.header, tt.value))
		})
	}
}

func TestMaskQuery(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", MaskQuery(""))
	assert.Equal(t, "status=paid", MaskQuery("status=paid"))
	assert.Equal(t, "status=paid&key=[REDACTED]", MaskQuery("status=paid&key=admin-pass"))
}

func TestMaskJSONBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "login",
			body: `{"username":"susan","password":"ChristisKing8"}`,
			want: `{"username":"susan","password":"[REDACTED]"}`,
		},
		{
			name: "recover",
			body: `{"recoveryKey":"rk","newPassword":"secret1"}`,
			want: `{"recoveryKey":"[REDACTED]","newPassword":"[REDACTED]"}`,
		},
		{
			name: "nested settings",
			body: `{"admin":{"username":"owner","passwordHash":"$2a$x","recoveryKeyHash":"$2a$y","password":null},"profile":{"name":"Studio"}}`,
			want: `{"admin":{"username":"owner","passwordHash":"[REDACTED]","recoveryKeyHash":"[REDACTED]","password":null},"profile":{"name":"Studio"}}`,
		},
		{
			name: "array of objects",
			body: `[{"token":"abc","name":"a"}]`,
			want: `[{"token":"[REDACTED]","name":"a"}]`,
		},
		{
			name: "nothing sensitive",
			body: `{"reference":"BHS-20260301-AB12"}`,
			want: `{"reference":"BHS-20260301-AB12"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.JSONEq(t, tt.want, string(MaskJSONBody([]byte(tt.body))))
		})
	}
}

func TestMaskJSONBodyPassesThroughNonJSON(t *testing.T) {
	t.Parallel()

	assert.Empty(t, MaskJSONBody(nil))
	assert.Equal(t, "not json", string(MaskJSONBody([]byte("not json"))))
}

func TestFormatBinaryData(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "[BINARY: 0 bytes]", FormatBinaryData(nil))
	assert.Equal(t, "[BINARY: 3 bytes]", FormatBinaryData([]byte{0xff, 0xfe, 0x00}))
}

func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, level, err := New(&buf, "warn", "json")
	require.NoError(t, err)

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	level.Set(slog.LevelInfo)
	logger.Info("shown", "k", "v")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "v", entry["k"])
}

func TestNewRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	_, _, err := New(&bytes.Buffer{}, "loud", "json")
	require.Error(t, err)

	_, _, err = New(&bytes.Buffer{}, "info", "xml")
	require.Error(t, err)

	logger, _, err := New(&bytes.Buffer{}, "", "text")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
