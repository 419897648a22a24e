package opengraph

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadInjector_Splices(t *testing.T) {
	src := "<html><head><title>t</title></head><body>hi</body></html>"
	block := "<meta property=\"og:title\" content=\"t\" />"

	var out bytes.Buffer
	inj := NewHeadInjector(&out, block)
	_, err := inj.Write([]byte(src))
	require.NoError(t, err)
	require.NoError(t, inj.Close())

	assert.True(t, inj.Injected())
	assert.Equal(t, "<html><head><title>t</title>"+block+"</head><body>hi</body></html>", out.String())
}

func TestHeadInjector_PassThroughWithoutHead(t *testing.T) {
	src := "plain text, no html structure at all"

	var out bytes.Buffer
	inj := NewHeadInjector(&out, "<meta />")
	_, err := inj.Write([]byte(src))
	require.NoError(t, err)
	require.NoError(t, inj.Close())

	assert.False(t, inj.Injected())
	assert.Equal(t, src, out.String())
}

func TestHeadInjector_TagSplitAcrossWrites(t *testing.T) {
	block := "<meta />"
	var out bytes.Buffer
	inj := NewHeadInjector(&out, block)

	// The close tag arrives byte by byte across write boundaries
	for _, chunk := range []string{"<head><title>t</title><", "/he", "ad><body></body>"} {
		_, err := inj.Write([]byte(chunk))
		require.NoError(t, err)
	}
	require.NoError(t, inj.Close())

	assert.True(t, inj.Injected())
	assert.Equal(t, "<head><title>t</title>"+block+"</head><body></body>", out.String())
}

func TestHeadInjector_CaseInsensitive(t *testing.T) {
	var out bytes.Buffer
	inj := NewHeadInjector(&out, "X")
	_, err := inj.Write([]byte("<HEAD></HEAD><BODY></BODY>"))
	require.NoError(t, err)
	require.NoError(t, inj.Close())

	assert.True(t, inj.Injected())
	assert.Equal(t, "<HEAD>X</HEAD><BODY></BODY>", out.String())
}

func TestHeadInjector_OnlyInjectsOnce(t *testing.T) {
	var out bytes.Buffer
	inj := NewHeadInjector(&out, "X")
	_, err := inj.Write([]byte("<head></head><iframe><head></head></iframe>"))
	require.NoError(t, err)
	require.NoError(t, inj.Close())

	assert.Equal(t, "<head>X</head><iframe><head></head></iframe>", out.String())
}

func TestHeadInjector_HoldsBackOnlyTagTail(t *testing.T) {
	var out bytes.Buffer
	inj := NewHeadInjector(&out, "X")

	body := strings.Repeat("a", 4096)
	_, err := inj.Write([]byte(body))
	require.NoError(t, err)

	// Everything except a potential split "</head>" prefix is already
	// flushed downstream
	assert.GreaterOrEqual(t, out.Len(), len(body)-len("</head>")+1)

	require.NoError(t, inj.Close())
	assert.Equal(t, body, out.String())
}

func TestInjectHead(t *testing.T) {
	src := strings.NewReader("<html><head></head><body></body></html>")
	var out bytes.Buffer

	require.NoError(t, InjectHead(&out, src, "B"))
	assert.Equal(t, "<html><head>B</head><body></body></html>", out.String())
}
