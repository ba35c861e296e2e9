package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLint(t *testing.T) {
	names := []string{"area", "rate"}

	assert.Empty(t, Lint("", names))
	assert.Empty(t, Lint("area * rate * 1.2", names))
	assert.Empty(t, Lint("max(area, 2) + roundUp(rate)", names))

	issues := Lint("area * waste + waste", names)
	require.Len(t, issues, 1)
	assert.Equal(t, IssueUnknown, issues[0].Kind)
	assert.Equal(t, "waste", issues[0].Name)

	issues = Lint("area *", names)
	require.Len(t, issues, 1)
	assert.Equal(t, IssueSyntax, issues[0].Kind)
	assert.NotContains(t, issues[0].Message, "\n")
}
