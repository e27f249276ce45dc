package headless

import (
	"testing"
	"testing/fstest"

	"github.com/go-drift/webbridge/pkg/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagePath(t *testing.T) {
	tests := []struct {
		uri        string
		want       string
		wantDomain string
		wantCode   int
	}{
		{uri: "asset://web/index.html", want: "web/index.html"},
		{uri: "asset://index.html", want: "index.html"},
		{uri: "file:///android_asset/web/index.html", want: "web/index.html"},
		{uri: "file:///srv/page.html", want: "srv/page.html"},
		{uri: "docs/../page.html", want: "page.html"},
		{uri: "https://example.com", wantDomain: platform.ErrDomainNetwork, wantCode: codeHostLookup},
		{uri: "ftp://example.com/a", wantDomain: platform.ErrDomainLoadFailed, wantCode: codeUnsupportedScheme},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, failure := pagePath(tt.uri)
			if tt.wantDomain != "" {
				require.NotNil(t, failure)
				assert.Equal(t, tt.wantDomain, failure.domain)
				assert.Equal(t, tt.wantCode, failure.code)
				return
			}
			require.Nil(t, failure)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadPage_ExtractsTitleAndScripts(t *testing.T) {
	pages := fstest.MapFS{
		"web/index.html": {Data: []byte(`<!doctype html>
<html>
<head>
  <title> Bridge demo </title>
  <script src="app.js"></script>
  <script type="application/json">{"not": "code"}</script>
</head>
<body>
  <script>var inline = 1;</script>
  <script src="/shared/util.js"></script>
</body>
</html>`)},
		"web/app.js":     {Data: []byte("var app = 1;")},
		"shared/util.js": {Data: []byte("var util = 1;")},
	}

	doc, failure := readPage(pages, "asset://web/index.html")
	require.Nil(t, failure)

	assert.Equal(t, "Bridge demo", doc.title)
	assert.Equal(t, "asset://web/index.html", doc.url)
	require.Len(t, doc.scripts, 3)
	assert.Equal(t, "web/app.js", doc.scripts[0].name)
	assert.Equal(t, "var app = 1;", doc.scripts[0].source)
	assert.Equal(t, "var inline = 1;", doc.scripts[1].source)
	assert.Equal(t, "shared/util.js", doc.scripts[2].name)
}

func TestReadPage_TransformsTypeScript(t *testing.T) {
	pages := fstest.MapFS{
		"index.html": {Data: []byte(`<script type="text/typescript">const n: number = 2; webViewBridge.send(String(n));</script>`)},
		"main.ts":    {Data: []byte(`const greet = (name: string): string => "hi " + name;`)},
	}

	doc, failure := readPage(pages, "index.html")
	require.Nil(t, failure)
	require.Len(t, doc.scripts, 1)
	assert.NotContains(t, doc.scripts[0].source, ": number")

	doc, failure = readPage(pages, "asset://main.ts")
	require.Nil(t, failure)
	require.Len(t, doc.scripts, 1)
	assert.NotContains(t, doc.scripts[0].source, ": string")
}

func TestReadPage_Failures(t *testing.T) {
	pages := fstest.MapFS{
		"remote.html": {Data: []byte(`<script src="https://cdn.example.com/lib.js"></script>`)},
		"broken.html": {Data: []byte(`<script src="missing.js"></script>`)},
		"bad.ts":      {Data: []byte(`const = ;`)},
	}

	tests := []struct {
		uri    string
		domain string
		code   int
	}{
		{"asset://nope.html", platform.ErrDomainLoadFailed, codeFileNotFound},
		{"asset://remote.html", platform.ErrDomainNetwork, codeHostLookup},
		{"asset://broken.html", platform.ErrDomainLoadFailed, codeFileNotFound},
		{"asset://bad.ts", platform.ErrDomainScript, codeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			_, failure := readPage(pages, tt.uri)
			require.NotNil(t, failure)
			assert.Equal(t, tt.domain, failure.domain)
			assert.Equal(t, tt.code, failure.code)
		})
	}

	_, failure := readPage(nil, "asset://index.html")
	require.NotNil(t, failure)
	assert.Equal(t, codeFileNotFound, failure.code)
}

func TestResolveRef(t *testing.T) {
	assert.Equal(t, "asset://web/about.html", resolveRef("asset://web/index.html", "about.html"))
	assert.Equal(t, "https://example.com/", resolveRef("asset://web/index.html", "https://example.com/"))
	assert.Equal(t, "page.html", resolveRef("", "page.html"))
}
