package mail_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailkit/core/mail"
)

func TestDevTransport_WritesFiles(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "mails")
	transport := mail.NewDevTransport(dir)
	m := newMail(t, mail.DefaultConfig(), transport)

	msg := validMessage()
	msg.HTML = "<p>Hello Jane</p>"
	msg.Attach("terms.txt", "text/plain", []byte("be nice"))
	require.NoError(t, m.Send(context.Background(), msg))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	byExt := map[string]string{}
	for _, e := range entries {
		byExt[filepath.Ext(e.Name())] = filepath.Join(dir, e.Name())
	}
	require.Len(t, byExt, 3)
	assert.Contains(t, byExt[".eml"], "welcome_to_molten")

	eml, err := os.ReadFile(byExt[".eml"])
	require.NoError(t, err)
	assert.Contains(t, string(eml), "Subject: Welcome to Molten!")

	html, err := os.ReadFile(byExt[".html"])
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello Jane</p>", string(html))

	raw, err := os.ReadFile(byExt[".json"])
	require.NoError(t, err)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "Welcome to Molten!", meta["subject"])
	assert.Equal(t, []any{"jane@example.com"}, meta["to"])
	assert.Equal(t, []any{"terms.txt"}, meta["attachments"])
	assert.True(t, strings.HasPrefix(meta["message_id"].(string), "<"))
}

func TestDevTransport_TextOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := newMail(t, mail.DefaultConfig(), mail.NewDevTransport(dir))

	require.NoError(t, m.SendMany(context.Background(), validMessage(), validMessage()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
	for _, e := range entries {
		assert.NotEqual(t, ".html", filepath.Ext(e.Name()))
	}
}
