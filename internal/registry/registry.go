// Package registry maintains the in-memory catalog of discovered lessons and
// broadcasts change events to interested watchers such as the preview server.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/far120/mystudy/internal/types"
)

// LessonRegistry manages all discovered lessons
type LessonRegistry struct {
	lessons  map[string]*types.LessonInfo
	mutex    sync.RWMutex
	watchers []chan types.LessonEvent
}

// NewLessonRegistry creates a new lesson registry
func NewLessonRegistry() *LessonRegistry {
	return &LessonRegistry{
		lessons:  make(map[string]*types.LessonInfo),
		watchers: make([]chan types.LessonEvent, 0),
	}
}

// Register adds or updates a lesson in the registry
func (r *LessonRegistry) Register(lesson *types.LessonInfo) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := types.EventTypeAdded
	if _, exists := r.lessons[lesson.Key()]; exists {
		eventType = types.EventTypeUpdated
	}

	r.lessons[lesson.Key()] = lesson

	r.notify(types.LessonEvent{
		Type:      eventType,
		Lesson:    lesson,
		Timestamp: time.Now(),
	})
}

// Get retrieves a lesson by its track/slug key
func (r *LessonRegistry) Get(key string) (*types.LessonInfo, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	lesson, exists := r.lessons[key]
	return lesson, exists
}

// GetByPath retrieves a lesson by its source file path
func (r *LessonRegistry) GetByPath(filePath string) (*types.LessonInfo, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, lesson := range r.lessons {
		if lesson.FilePath == filePath {
			return lesson, true
		}
	}
	return nil, false
}

// GetAll returns all registered lessons keyed by track/slug
func (r *LessonRegistry) GetAll() map[string]*types.LessonInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make(map[string]*types.LessonInfo, len(r.lessons))
	for key, lesson := range r.lessons {
		result[key] = lesson
	}
	return result
}

// Sorted returns all lessons in curriculum order: by track, then by the
// numeric order prefix, then by slug for stable ties.
func (r *LessonRegistry) Sorted() []*types.LessonInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*types.LessonInfo, 0, len(r.lessons))
	for _, lesson := range r.lessons {
		result = append(result, lesson)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Track != result[j].Track {
			return result[i].Track < result[j].Track
		}
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].Slug < result[j].Slug
	})
	return result
}

// Tracks returns the sorted list of distinct track names.
func (r *LessonRegistry) Tracks() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	seen := make(map[string]struct{})
	for _, lesson := range r.lessons {
		seen[lesson.Track] = struct{}{}
	}

	tracks := make([]string, 0, len(seen))
	for track := range seen {
		tracks = append(tracks, track)
	}
	sort.Strings(tracks)
	return tracks
}

// Remove removes a lesson from the registry
func (r *LessonRegistry) Remove(key string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	lesson, exists := r.lessons[key]
	if !exists {
		return
	}

	delete(r.lessons, key)

	r.notify(types.LessonEvent{
		Type:      types.EventTypeRemoved,
		Lesson:    lesson,
		Timestamp: time.Now(),
	})
}

// RemoveByPath removes the lesson backed by the given file, if any.
func (r *LessonRegistry) RemoveByPath(filePath string) {
	r.mutex.Lock()
	key := ""
	for k, lesson := range r.lessons {
		if lesson.FilePath == filePath {
			key = k
			break
		}
	}
	r.mutex.Unlock()

	if key != "" {
		r.Remove(key)
	}
}

// Watch returns a channel that receives lesson events
func (r *LessonRegistry) Watch() <-chan types.LessonEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan types.LessonEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *LessonRegistry) UnWatch(ch <-chan types.LessonEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Count returns the number of registered lessons
func (r *LessonRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.lessons)
}

// notify delivers an event to all watchers; callers must hold the write lock.
func (r *LessonRegistry) notify(event types.LessonEvent) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}
