package secrets

import (
	"errors"
	"testing"

	"rfpwatch/internal/config"

	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestSourceKeyPrefersEnvironment(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, SetSourceKey("tendersontime", "from-keychain"))

	src := config.Source{Name: "tendersontime", APIKeyEnv: "TENDERSONTIME_API_KEY"}
	env := map[string]string{"TENDERSONTIME_API_KEY": "from-env"}

	key, err := SourceKey(src, func(k string) string { return env[k] })
	require.NoError(t, err)
	require.Equal(t, "from-env", key)

	key, err = SourceKey(src, func(string) string { return "" })
	require.NoError(t, err)
	require.Equal(t, "from-keychain", key)
}

func TestSourceKeyMissing(t *testing.T) {
	keyring.MockInit()

	_, err := SourceKey(config.Source{Name: "nokey"}, func(string) string { return "" })
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestSetAndDeleteSourceKey(t *testing.T) {
	keyring.MockInit()

	require.Error(t, SetSourceKey("", "k"))
	require.Error(t, SetSourceKey("s", " "))
	require.NoError(t, SetSourceKey("s", "k"))
	require.NoError(t, DeleteSourceKey("s"))

	_, err := SourceKey(config.Source{Name: "s"}, func(string) string { return "" })
	require.True(t, errors.Is(err, ErrNotFound))
}
