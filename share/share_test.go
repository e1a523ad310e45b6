package share

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringInSortedSlice(t *testing.T) {
	a := []string{"Dragonsong's Reprise", "Futures Rewritten", "The Omega Protocol"}

	assert.True(t, StringInSortedSlice(a, "Futures Rewritten"))
	assert.False(t, StringInSortedSlice(a, "futures rewritten"))
	assert.False(t, StringInSortedSlice(a, "Zzz"))
	assert.False(t, StringInSortedSlice(nil, "a"))
}

func TestIsContextClosedError(t *testing.T) {
	assert.True(t, IsContextClosedError(context.Canceled))
	assert.True(t, IsContextClosedError(&url.Error{Op: "Get", URL: "x", Err: context.DeadlineExceeded}))
	assert.True(t, IsContextClosedError(errors.WithStack(context.Canceled)))
	assert.False(t, IsContextClosedError(fmt.Errorf("boom")))
	assert.False(t, IsContextClosedError(nil))
}

func TestCredential_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "credential")

	key, err := LoadCredential(path)
	require.NoError(t, err)
	assert.Empty(t, key)

	require.NoError(t, SaveCredential(path, "abcd1234"))

	key, err = LoadCredential(path)
	require.NoError(t, err)
	assert.Equal(t, "abcd1234", key)
}

func TestTemplateFuncMap_FormatsNumbers(t *testing.T) {
	fn := TemplateFuncMap["fn"].(func(interface{}) string)

	assert.Equal(t, "12,345.6", fn(12345.64))
	assert.Equal(t, "1,000", fn(1000))
	assert.Equal(t, "", fn("x"))
}
