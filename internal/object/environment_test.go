package object

import (
	"testing"

	"github.com/lapis-lang/lapis/internal/ast"
	"github.com/stretchr/testify/require"
)

func TestDefineAndGet(t *testing.T) {
	env := NewEnvironment()
	env.Define("x", Int(1), ast.Private)

	v, found, denied := env.Get("x", false)
	require.True(t, found)
	require.False(t, denied)
	require.Equal(t, Int(1), v)
}

func TestGetFallsThroughToEnclosing(t *testing.T) {
	parent := NewEnvironment()
	parent.Define("x", Int(1), ast.Private)
	child := NewChildEnvironment(parent)

	v, found, denied := child.Get("x", false)
	require.True(t, found)
	require.False(t, denied)
	require.Equal(t, Int(1), v)
}

func TestGetDeniesPrivateFromExternalFile(t *testing.T) {
	env := NewEnvironment()
	env.Define("secret", Int(1), ast.Private)

	_, found, denied := env.Get("secret", true)
	require.True(t, found)
	require.True(t, denied)
}

func TestGetAllowsPublicFromExternalFile(t *testing.T) {
	env := NewEnvironment()
	env.Define("shared", Int(1), ast.Public)

	v, found, denied := env.Get("shared", true)
	require.True(t, found)
	require.False(t, denied)
	require.Equal(t, Int(1), v)
}

func TestGetUndefinedReportsNotFound(t *testing.T) {
	env := NewEnvironment()
	_, found, denied := env.Get("nope", false)
	require.False(t, found)
	require.False(t, denied)
}

func TestAssignUpdatesEnclosingScope(t *testing.T) {
	parent := NewEnvironment()
	parent.Define("x", Int(1), ast.Private)
	child := NewChildEnvironment(parent)

	found, denied := child.Assign("x", Int(2), false)
	require.True(t, found)
	require.False(t, denied)

	v, _, _ := parent.Get("x", false)
	require.Equal(t, Int(2), v)
}

func TestShadowingDefinesInInnermostScope(t *testing.T) {
	parent := NewEnvironment()
	parent.Define("x", Int(1), ast.Private)
	child := NewChildEnvironment(parent)
	child.Define("x", Int(2), ast.Private)

	childVal, _, _ := child.Get("x", false)
	require.Equal(t, Int(2), childVal)
	parentVal, _, _ := parent.Get("x", false)
	require.Equal(t, Int(1), parentVal)
}

func TestGetAllPublicOnlyIncludesDirectPublicBindings(t *testing.T) {
	env := NewEnvironment()
	env.Define("a", Int(1), ast.Public)
	env.Define("b", Int(2), ast.Private)

	pub := env.GetAllPublic()
	require.Equal(t, map[string]Value{"a": Int(1)}, pub)
}
