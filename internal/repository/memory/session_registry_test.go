package memory

import (
	"sync"
	"testing"

	"ai-lecture-be/pkg/lecture"

	"github.com/stretchr/testify/assert"
)

func TestUpsertCreatesAndMutates(t *testing.T) {
	reg := NewSessionRegistry()

	created := reg.Upsert(42, func(s *lecture.Session) *lecture.Session {
		assert.Nil(t, s)
		return lecture.NewSession(42, "/tmp/doc.pdf")
	})
	assert.NotNil(t, created)
	assert.Equal(t, int64(42), created.LectureID)

	got := reg.Get(42)
	assert.Same(t, created, got)

	// Nil return leaves the stored session untouched.
	same := reg.Upsert(42, func(s *lecture.Session) *lecture.Session {
		assert.Same(t, created, s)
		return nil
	})
	assert.Same(t, created, same)
}

func TestUpdateMissingSession(t *testing.T) {
	reg := NewSessionRegistry()
	ok := reg.Update(7, func(s *lecture.Session) { s.Status = lecture.StatusReady })
	assert.False(t, ok)
	assert.Nil(t, reg.Get(7))
}

func TestUpsertSerializesPerLecture(t *testing.T) {
	reg := NewSessionRegistry()
	reg.Upsert(1, func(*lecture.Session) *lecture.Session {
		return lecture.NewSession(1, "doc.pdf")
	})

	const workers = 32
	const perWorker = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				reg.Update(1, func(s *lecture.Session) {
					s.Cursor.SegmentIndex++
				})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, reg.Get(1).Cursor.SegmentIndex)
}

func TestDistinctLecturesIsolated(t *testing.T) {
	reg := NewSessionRegistry()
	reg.Upsert(1, func(*lecture.Session) *lecture.Session { return lecture.NewSession(1, "a.pdf") })
	reg.Upsert(2, func(*lecture.Session) *lecture.Session { return lecture.NewSession(2, "b.pdf") })

	reg.Update(1, func(s *lecture.Session) { s.Status = lecture.StatusCancelled })

	assert.Equal(t, lecture.StatusCancelled, reg.Get(1).Status)
	assert.Equal(t, lecture.StatusUninitialized, reg.Get(2).Status)
}
