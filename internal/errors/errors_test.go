package errors

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLintErrorFormat(t *testing.T) {
	err := &LintError{
		File:     "week1-foundations/01-basic-types.md",
		Line:     14,
		Rule:     "broken-link",
		Message:  "target does not exist: ./missing.md",
		Severity: SeverityError,
	}
	assert.Equal(t,
		"week1-foundations/01-basic-types.md:14: error: target does not exist: ./missing.md [broken-link]",
		err.Error())

	noLine := &LintError{File: "a.md", Rule: "frontmatter", Message: "invalid YAML", Severity: SeverityError}
	assert.Equal(t, "a.md: error: invalid YAML [frontmatter]", noLine.Error())
}

func TestCollectorSeverities(t *testing.T) {
	ec := NewErrorCollector()
	ec.Add(LintError{File: "a.md", Severity: SeverityWarning, Rule: "unlabeled-fence"})
	ec.Add(LintError{File: "a.md", Severity: SeverityInfo, Rule: "draft"})

	assert.False(t, ec.HasErrors(), "warnings alone should not fail validation")
	assert.Equal(t, 1, ec.Count(SeverityWarning))
	assert.Equal(t, 1, ec.Count(SeverityInfo))
	assert.Equal(t, 0, ec.Count(SeverityError))

	ec.Add(LintError{File: "b.md", Severity: SeverityError, Rule: "duplicate-order"})
	assert.True(t, ec.HasErrors())
}

func TestCollectorGeneralErrors(t *testing.T) {
	ec := NewErrorCollector()
	ec.AddError(nil)
	assert.False(t, ec.HasErrors())

	ec.AddError(errors.New("unreadable file"))
	assert.True(t, ec.HasErrors())
	require.Len(t, ec.GeneralErrors(), 1)
}

func TestCollectorSortsByFileAndLine(t *testing.T) {
	ec := NewErrorCollector()
	ec.Add(LintError{File: "b.md", Line: 2})
	ec.Add(LintError{File: "a.md", Line: 9})
	ec.Add(LintError{File: "a.md", Line: 3})

	sorted := ec.LintErrors()
	require.Len(t, sorted, 3)
	assert.Equal(t, "a.md", sorted[0].File)
	assert.Equal(t, 3, sorted[0].Line)
	assert.Equal(t, 9, sorted[1].Line)
	assert.Equal(t, "b.md", sorted[2].File)
}

func TestCollectorByFileAndClear(t *testing.T) {
	ec := NewErrorCollector()
	ec.Add(LintError{File: "a.md", Severity: SeverityError})
	ec.Add(LintError{File: "b.md", Severity: SeverityError})

	assert.Len(t, ec.ByFile("a.md"), 1)
	assert.Empty(t, ec.ByFile("c.md"))

	ec.Clear()
	assert.False(t, ec.HasErrors())
	assert.Empty(t, ec.LintErrors())
}

func TestCollectorConcurrentAdd(t *testing.T) {
	ec := NewErrorCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ec.Add(LintError{File: fmt.Sprintf("%d.md", i), Severity: SeverityError})
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, ec.Count(SeverityError))
}
