package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gscls/analyzer/pkg/token"
)

func TestMessageRendersTemplateArgs(t *testing.T) {
	d := New(token.Range{}, Error, TooManyArguments, "Helper", 2, 3)
	require.Equal(t, `too many arguments to "Helper": expected at most 2, got 3`, d.Message())
}

func TestMessageFallsBackForUnknownCode(t *testing.T) {
	d := New(token.Range{}, Error, Code("SomethingMadeUp"), 1, "x")
	assert.Contains(t, d.Message(), "SomethingMadeUp")
}

func TestInternalAnchorsAtOrigin(t *testing.T) {
	d := Internal(FaultSPA, errTest{"boom"})
	assert.Equal(t, Error, d.Severity)
	assert.Equal(t, InternalFault, d.Code)
	assert.Equal(t, token.Position{Line: 0, Character: 0}, d.Range.Start)
}

func TestSeverityString(t *testing.T) {
	cases := map[Severity]string{Error: "error", Warning: "warning", Information: "info", Hint: "hint"}
	for sev, want := range cases {
		assert.Equal(t, want, sev.String())
	}
}

func TestSortStableOrdersByFileThenPositionThenCode(t *testing.T) {
	diags := []Diagnostic{
		{File: "b.gsc", Range: token.Range{Start: token.Position{Line: 1, Character: 0}}, Code: UnreachableStatement},
		{File: "a.gsc", Range: token.Range{Start: token.Position{Line: 12, Character: 0}}, Code: UnreachableStatement},
		{File: "a.gsc", Range: token.Range{Start: token.Position{Line: 3, Character: 0}}, Code: UnreachableStatement},
	}
	SortStable(diags)

	require.Len(t, diags, 3)
	assert.Equal(t, "a.gsc", diags[0].File)
	assert.Equal(t, 3, diags[0].Range.Start.Line)
	assert.Equal(t, "a.gsc", diags[1].File)
	assert.Equal(t, 12, diags[1].Range.Start.Line, "natural order, not lexicographic")
	assert.Equal(t, "b.gsc", diags[2].File)
}

type errTest struct{ msg string }

func (e errTest) Error() string { return e.msg }
