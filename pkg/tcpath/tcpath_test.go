package tcpath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	t.Run("RootIsEmpty", func(t *testing.T) {
		comps, abs, ok := Tokenize("/")
		require.True(t, ok)
		assert.True(t, abs)
		assert.Empty(t, comps)
	})

	t.Run("CollapsesDotAndSlashes", func(t *testing.T) {
		comps, abs, ok := Tokenize("/foo/./bar//baz/")
		require.True(t, ok)
		assert.True(t, abs)
		assert.Equal(t, []string{"foo", "bar", "baz"}, comps)
	})

	t.Run("AppliesDotDotLexically", func(t *testing.T) {
		comps, _, ok := Tokenize("/foo/../bar")
		require.True(t, ok)
		assert.Equal(t, []string{"bar"}, comps)
	})

	t.Run("CollapsesToRootOnExcessDotDot", func(t *testing.T) {
		comps, abs, ok := Tokenize("/foo/../../../")
		require.True(t, ok)
		assert.True(t, abs)
		assert.Empty(t, comps)
	})

	t.Run("PreservesLeadingDotDotOnRelative", func(t *testing.T) {
		comps, abs, ok := Tokenize("../foo")
		require.True(t, ok)
		assert.False(t, abs)
		assert.Equal(t, []string{"..", "foo"}, comps)
	})

	t.Run("RejectsOversizedInput", func(t *testing.T) {
		_, _, ok := Tokenize(strings.Repeat("a", MaxPathLen))
		assert.False(t, ok)
	})

	t.Run("RejectsEmptyInput", func(t *testing.T) {
		_, _, ok := Tokenize("")
		assert.False(t, ok)
	})
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"Root", "/", "/"},
		{"DoubleSlashRoot", "//", "/"},
		{"TrailingSlash", "/foo/bar/", "/foo/bar"},
		{"DotDotUp", "/foo/../bar/", "/bar"},
		{"DotDotPastRoot", "/foo/../../../", "/"},
		{"RelativeEmptyBecomesDot", "./", "."},
		{"RelativeDotDot", "../a/./b", "../a/b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeString(tc.in)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("FixedPointUnderRepeatedNormalization", func(t *testing.T) {
		for _, p := range []string{"/a/b/c", "/", ".", "../a/b", "a/b/c"} {
			once, ok := NormalizeString(p)
			require.True(t, ok)
			twice, ok := NormalizeString(once)
			require.True(t, ok)
			assert.Equal(t, once, twice)
		}
	})

	t.Run("TooSmallBufferYieldsError", func(t *testing.T) {
		buf := make([]byte, 2)
		n := Normalize("/foo/bar", buf)
		assert.Equal(t, -1, n)
	})

	t.Run("OversizedInputRejected", func(t *testing.T) {
		buf := make([]byte, MaxPathLen)
		n := Normalize(strings.Repeat("a", MaxPathLen), buf)
		assert.Equal(t, -1, n)
	})
}

func TestDepth(t *testing.T) {
	assert.Equal(t, 0, Depth("/"))
	assert.Equal(t, 1, Depth("/foo"))
	assert.Equal(t, 2, Depth("/foo/bar"))
	assert.Equal(t, -1, Depth(""))
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 0, Distance("/", "/"))
	assert.Equal(t, 1, Distance("/", "/foo"))
	assert.Equal(t, 2, Distance("/foo", "/bar"))
	assert.Equal(t, 4, Distance("/a/b/c", "/a/x/y"))

	t.Run("RelativeDstIgnoresSrc", func(t *testing.T) {
		assert.Equal(t, 2, Distance("", "foo/bar"))
	})

	t.Run("MismatchedAbsolutenessIsInvalid", func(t *testing.T) {
		assert.Equal(t, -1, Distance("relative", "/absolute"))
	})
}

func TestRebase(t *testing.T) {
	t.Run("WalksUpwardWithDotDot", func(t *testing.T) {
		got, ok := RebaseString("/a/b/c/d", "/a/b/c/x")
		require.True(t, ok)
		assert.Equal(t, "../x", got)
	})

	t.Run("UsesRelativeFormWhenSharingMostOfBase", func(t *testing.T) {
		got, ok := RebaseString("/a/b/c", "/a/b/d")
		require.True(t, ok)
		assert.Equal(t, "../d", got)
	})

	t.Run("ReturnsUnchangedWhenNotShorter", func(t *testing.T) {
		got, ok := RebaseString("/", "/a")
		require.True(t, ok)
		assert.Equal(t, "/a", got)
	})

	t.Run("SameDirectoryYieldsDot", func(t *testing.T) {
		got, ok := RebaseString("/a/b", "/a/b")
		require.True(t, ok)
		assert.Equal(t, ".", got)
	})

	t.Run("TooSmallBufferYieldsError", func(t *testing.T) {
		buf := make([]byte, 1)
		n := Rebase("/a/b/c", "/a/x/y", buf)
		assert.Equal(t, -1, n)
	})
}

func TestJoin(t *testing.T) {
	cases := []struct{ a, b, want string }{
		{"/foo", "bar", "/foo/bar"},
		{"/foo/", "/bar", "/foo/bar"},
		{"/", "foo", "/foo"},
		{"rel", "sub", "rel/sub"},
	}
	for _, tc := range cases {
		got, ok := JoinString(tc.a, tc.b)
		require.True(t, ok)
		assert.Equal(t, tc.want, got)
	}
}
