package credstore

import (
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	require.NoError(t, Save(dir, &Credential{
		Token:     "tok",
		APIURL:    "https://api.example.com",
		SavedAt:   time.Now().UTC(),
		ExpiresAt: &exp,
	}))

	cred, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "tok", cred.Token)
	assert.Equal(t, "https://api.example.com", cred.APIURL)
	require.NotNil(t, cred.ExpiresAt)
	assert.True(t, exp.Equal(*cred.ExpiresAt))
	assert.False(t, cred.Expired(time.Now()))
	assert.True(t, cred.Expired(exp.Add(time.Second)))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(Path(dir))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir), []byte("{"), 0o600))

	_, err := Load(dir)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSave_RejectsEmptyToken(t *testing.T) {
	assert.Error(t, Save(t.TempDir(), &Credential{Token: "  "}))
	assert.Error(t, Save(t.TempDir(), nil))
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(dir, &Credential{Token: "tok"}))

	require.NoError(t, Clear(dir))
	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, Clear(dir))
}

func TestCredential_NoExpiry(t *testing.T) {
	c := Credential{Token: "tok"}
	assert.False(t, c.Expired(time.Now().Add(100*365*24*time.Hour)))
}
