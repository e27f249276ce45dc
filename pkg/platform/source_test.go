package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_Validate(t *testing.T) {
	tests := []struct {
		name    string
		src     Source
		wantErr bool
	}{
		{"uri", Source{URI: "https://example.com"}, false},
		{"html", Source{HTML: "<p>hi</p>", BaseURL: "https://example.com/"}, false},
		{"empty", Source{}, false},
		{"both", Source{URI: "https://a", HTML: "<p>b</p>"}, true},
		{"post body", Source{URI: "https://a", Method: "post", Body: "x=1"}, false},
		{"get body", Source{URI: "https://a", Body: "x=1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.src.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArguments)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSource_MapRoundTrip(t *testing.T) {
	src := Source{
		URI:     "https://example.com/form",
		Method:  "post",
		Headers: map[string]string{"X-Token": "abc"},
		Body:    "a=1",
	}

	m := src.Map()
	assert.Equal(t, "POST", m["method"])
	assert.NotContains(t, m, "html")

	back := SourceFromMap(m)
	src.Method = "POST"
	assert.Equal(t, src, back)
}

func TestAssetPath(t *testing.T) {
	p, ok := AssetPath("asset://web/index.html")
	require.True(t, ok)
	assert.Equal(t, "web/index.html", p)

	for _, uri := range []string{
		"https://example.com",
		"asset://",
		"asset://../secret",
		"asset://web/../../etc/passwd",
	} {
		_, ok := AssetPath(uri)
		assert.False(t, ok, uri)
	}
}

func TestDefaultAssetResolver(t *testing.T) {
	src := Source{URI: "asset://web/index.html"}

	tests := []struct {
		target TargetPlatform
		want   string
	}{
		{TargetAndroid, "file:///android_asset/web/index.html"},
		{TargetIOS, "bundle://web/index.html"},
		{TargetHeadless, "asset://web/index.html"},
	}
	for _, tt := range tests {
		t.Run(string(tt.target), func(t *testing.T) {
			got, err := DefaultAssetResolver{Target: tt.target}.Resolve(src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.URI)
		})
	}
}

func TestDefaultAssetResolver_LeavesRemoteAndInline(t *testing.T) {
	r := DefaultAssetResolver{Target: TargetAndroid}

	remote, err := r.Resolve(Source{URI: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", remote.URI)

	inline, err := r.Resolve(Source{HTML: "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", inline.HTML)
}

func TestDefaultAssetResolver_RejectsBadInput(t *testing.T) {
	_, err := DefaultAssetResolver{Target: TargetIOS}.Resolve(Source{URI: "asset://../x"})
	assert.ErrorIs(t, err, ErrInvalidArguments)

	_, err = DefaultAssetResolver{Target: "tv"}.Resolve(Source{URI: "asset://x"})
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

type prefixResolver struct{ prefix string }

func (r prefixResolver) Resolve(src Source) (Source, error) {
	src.URI = r.prefix + src.URI
	return src, nil
}

func TestSetAssetResolver(t *testing.T) {
	setupTestBridge(t)

	SetAssetResolver(prefixResolver{prefix: "test:"})
	got, err := ResolveSource(Source{URI: "x"})
	require.NoError(t, err)
	assert.Equal(t, "test:x", got.URI)

	SetAssetResolver(nil)
	got, err = ResolveSource(Source{URI: "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", got.URI)
}
