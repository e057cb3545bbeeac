package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/far120/mystudy/internal/types"
)

func lesson(track, slug string, order int) *types.LessonInfo {
	return &types.LessonInfo{
		Track:    track,
		Slug:     slug,
		Order:    order,
		Title:    slug,
		FilePath: track + "/" + slug + ".md",
	}
}

func TestRegisterAndGet(t *testing.T) {
	r := NewLessonRegistry()
	l := lesson("week1-foundations", "basic-types", 1)

	r.Register(l)

	got, ok := r.Get("week1-foundations/basic-types")
	require.True(t, ok)
	assert.Equal(t, l, got)
	assert.Equal(t, 1, r.Count())

	_, ok = r.Get("week1-foundations/missing")
	assert.False(t, ok)
}

func TestGetByPath(t *testing.T) {
	r := NewLessonRegistry()
	l := lesson("week2-intermediate", "interfaces", 3)
	r.Register(l)

	got, ok := r.GetByPath("week2-intermediate/interfaces.md")
	require.True(t, ok)
	assert.Equal(t, "interfaces", got.Slug)

	_, ok = r.GetByPath("nope.md")
	assert.False(t, ok)
}

func TestSortedCurriculumOrder(t *testing.T) {
	r := NewLessonRegistry()
	r.Register(lesson("week2-intermediate", "interfaces", 1))
	r.Register(lesson("week1-foundations", "functions", 2))
	r.Register(lesson("week1-foundations", "basic-types", 1))
	r.Register(lesson("week1-foundations", "arrays", 2)) // order tie, slug breaks it

	sorted := r.Sorted()
	require.Len(t, sorted, 4)
	assert.Equal(t, "basic-types", sorted[0].Slug)
	assert.Equal(t, "arrays", sorted[1].Slug)
	assert.Equal(t, "functions", sorted[2].Slug)
	assert.Equal(t, "week2-intermediate", sorted[3].Track)
}

func TestTracks(t *testing.T) {
	r := NewLessonRegistry()
	r.Register(lesson("week2-intermediate", "a", 1))
	r.Register(lesson("week1-foundations", "b", 1))
	r.Register(lesson("week1-foundations", "c", 2))

	assert.Equal(t, []string{"week1-foundations", "week2-intermediate"}, r.Tracks())
}

func TestWatchEvents(t *testing.T) {
	r := NewLessonRegistry()
	events := r.Watch()

	l := lesson("week1-foundations", "basic-types", 1)
	r.Register(l)
	r.Register(l)
	r.Remove(l.Key())

	expectEvent := func(want types.EventType) {
		select {
		case ev := <-events:
			assert.Equal(t, want, ev.Type)
			require.NotNil(t, ev.Lesson)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s event", want)
		}
	}

	expectEvent(types.EventTypeAdded)
	expectEvent(types.EventTypeUpdated)
	expectEvent(types.EventTypeRemoved)
}

func TestRemoveByPath(t *testing.T) {
	r := NewLessonRegistry()
	r.Register(lesson("week1-foundations", "basic-types", 1))

	r.RemoveByPath("week1-foundations/basic-types.md")
	assert.Equal(t, 0, r.Count())

	// Removing an unknown path is a no-op
	r.RemoveByPath("nope.md")
}

func TestUnWatchClosesChannel(t *testing.T) {
	r := NewLessonRegistry()
	ch := r.Watch()
	r.UnWatch(ch)

	_, open := <-ch
	assert.False(t, open)
}
