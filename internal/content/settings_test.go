package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAdmin(t *testing.T) {
	t.Parallel()

	admin := ReadAdmin(Document(`{"admin":{"username":"susan","passwordHash":"$2a$hash","recoveryKeyHash":"$2a$rk"}}`))
	assert.Equal(t, "susan", admin.Username)
	assert.Equal(t, "$2a$hash", admin.PasswordHash)
	assert.Equal(t, "$2a$rk", admin.RecoveryKeyHash)
	assert.Nil(t, admin.Password)

	assert.Equal(t, AdminSettings{}, ReadAdmin(Default(Settings)))
	assert.Equal(t, AdminSettings{}, ReadAdmin(Document(`not json`)))
}

func TestWithAdminPassword(t *testing.T) {
	t.Parallel()

	t.Run("replaces hash and clears plaintext", func(t *testing.T) {
		t.Parallel()
		doc := Document(`{"admin":{"username":"susan","passwordHash":"old","password":"plain","recoveryKeyHash":"rk","extra":1},"profile":{"name":"S"}}`)

		out, err := WithAdminPassword(doc, "new-hash")
		require.NoError(t, err)

		var got map[string]map[string]any
		require.NoError(t, json.Unmarshal(out, &got))
		assert.Equal(t, "new-hash", got["admin"]["passwordHash"])
		assert.Nil(t, got["admin"]["password"])
		assert.Equal(t, "susan", got["admin"]["username"])
		assert.Equal(t, "rk", got["admin"]["recoveryKeyHash"])
		assert.EqualValues(t, 1, got["admin"]["extra"])
		assert.Equal(t, "S", got["profile"]["name"])
	})

	t.Run("creates admin object when missing", func(t *testing.T) {
		t.Parallel()
		out, err := WithAdminPassword(Document(`{"general":{}}`), "h")
		require.NoError(t, err)
		assert.Equal(t, "h", ReadAdmin(out).PasswordHash)
	})

	t.Run("rejects malformed settings", func(t *testing.T) {
		t.Parallel()
		_, err := WithAdminPassword(Document(`[1]`), "h")
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})
}

func TestRedactAdmin(t *testing.T) {
	t.Parallel()

	doc := Document(`{"admin":{"username":"susan","passwordHash":"$2a$h","recoveryKeyHash":"$2a$r","password":"x"},"profile":{"name":"Studio"}}`)
	out := RedactAdmin(doc)

	var got map[string]map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, map[string]any{"username": "susan"}, got["admin"])
	assert.Equal(t, "Studio", got["profile"]["name"])

	assert.Equal(t, Document(`[1,2]`), RedactAdmin(Document(`[1,2]`)))
	assert.Equal(t, Document(`{"profile":{}}`), RedactAdmin(Document(`{"profile":{}}`)))
}
