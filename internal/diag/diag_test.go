package diag

import (
	"testing"

	"github.com/lapis-lang/lapis/internal/sourcemap"
	"github.com/stretchr/testify/require"
)

func span() sourcemap.Span { return sourcemap.Span{FileID: 1, Start: 0, End: 1} }

func TestNewPromotesSoleLabelToPrimary(t *testing.T) {
	d := New(UndefinedVariable, Error, "undefined variable 'x'", []Label{
		{Span: span(), Message: "here"},
	})
	require.True(t, d.Labels[0].IsPrimary)
}

func TestNewKeepsOnlyFirstPrimary(t *testing.T) {
	d := New(TypeMismatchBinary, Error, "mismatch", []Label{
		{Span: span(), Message: "a", IsPrimary: true},
		{Span: span(), Message: "b", IsPrimary: true},
	})
	require.True(t, d.Labels[0].IsPrimary)
	require.False(t, d.Labels[1].IsPrimary)
}

func TestPrimarySpan(t *testing.T) {
	s := span()
	d := New(DivisionByZero, Error, "division by zero", []Label{{Span: s, Message: "x", IsPrimary: true}})
	got, ok := d.PrimarySpan()
	require.True(t, ok)
	require.Equal(t, s, got)
}

func TestPrimarySpanAbsentWithNoLabels(t *testing.T) {
	d := New(InternalError, Error, "oops", nil)
	_, ok := d.PrimarySpan()
	require.False(t, ok)
}

func TestErrorImplementsErrorInterface(t *testing.T) {
	d := UndefinedVariableError(span(), "x")
	var err error = d
	require.Contains(t, err.Error(), "LAP4001")
	require.Contains(t, err.Error(), "undefined variable 'x'")
}

func TestRenderDegradesWithoutSourceMap(t *testing.T) {
	d := DivisionByZeroError(span())
	require.Equal(t, d.Error(), d.Render(nil))
}

func TestRenderUsesSourceMap(t *testing.T) {
	sm := sourcemap.New()
	id := sm.AddFile("main.lapis", "var x = 1 / 0;")
	d := DivisionByZeroError(sourcemap.Span{FileID: id, Start: 8, End: 13})
	rendered := d.Render(sm)
	require.Contains(t, rendered, "main.lapis")
	require.Contains(t, rendered, "help:")
}

func TestWrongArityMessage(t *testing.T) {
	d := WrongArityError(span(), 2, 1)
	require.Contains(t, d.Message, "expected 2 argument(s) but got 1")
}
