package sweep

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vaxtrack/internal/schedule/service"
	id "vaxtrack/pkg/domain"
	"vaxtrack/pkg/requestcontext"
)

type fakeSynchronizer struct {
	subjects  []id.SubjectID
	updated   map[id.SubjectID]int
	failing   map[id.SubjectID]bool
	pageErr   error
	pageCalls atomic.Int32
	seenTimes []time.Time
}

func (f *fakeSynchronizer) PendingSubjects(_ context.Context, after id.SubjectID, limit int) ([]id.SubjectID, error) {
	f.pageCalls.Add(1)
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	start := 0
	if !after.IsNil() {
		for i, s := range f.subjects {
			if s == after {
				start = i + 1
			}
		}
	}
	end := min(start+limit, len(f.subjects))
	return f.subjects[start:end], nil
}

func (f *fakeSynchronizer) Synchronize(ctx context.Context, subjectID id.SubjectID) (*service.SyncResult, error) {
	f.seenTimes = append(f.seenTimes, requestcontext.Now(ctx))
	if f.failing[subjectID] {
		return nil, errors.New("boom")
	}
	return &service.SyncResult{Updated: f.updated[subjectID]}, nil
}

type SweepSuite struct {
	suite.Suite
	sync *fakeSynchronizer
}

func TestSweepSuite(t *testing.T) {
	suite.Run(t, new(SweepSuite))
}

func (s *SweepSuite) SetupTest() {
	subjects := make([]id.SubjectID, 5)
	for i := range subjects {
		subjects[i] = id.NewSubjectID()
	}
	s.sync = &fakeSynchronizer{
		subjects: subjects,
		updated:  map[id.SubjectID]int{subjects[0]: 2, subjects[3]: 1},
		failing:  map[id.SubjectID]bool{},
	}
}

func (s *SweepSuite) TestRunOncePagesThroughAllSubjects() {
	w := New(s.sync, WithBatchSize(2))

	res, err := w.RunOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(5, res.Subjects)
	s.Equal(3, res.Updated)
	s.Zero(res.Failed)
	s.Equal(int32(3), s.sync.pageCalls.Load())
}

func (s *SweepSuite) TestRunOncePinsOneTimeForTheRun() {
	w := New(s.sync, WithBatchSize(2))

	_, err := w.RunOnce(context.Background())
	s.Require().NoError(err)
	s.Require().Len(s.sync.seenTimes, 5)
	for _, t := range s.sync.seenTimes {
		s.Equal(s.sync.seenTimes[0], t)
	}
}

func (s *SweepSuite) TestRunOnceSkipsFailingSubjects() {
	s.sync.failing[s.sync.subjects[1]] = true
	w := New(s.sync)

	res, err := w.RunOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(4, res.Subjects)
	s.Equal(1, res.Failed)
}

func (s *SweepSuite) TestRunOnceStopsOnPagingError() {
	s.sync.pageErr = errors.New("database unavailable")
	w := New(s.sync)

	res, err := w.RunOnce(context.Background())
	s.Require().Error(err)
	s.Nil(res)
}

func (s *SweepSuite) TestStartStopsOnCancel() {
	w := New(s.sync, WithInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	s.Eventually(func() bool { return s.sync.pageCalls.Load() > 0 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		s.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		s.Fail("worker did not stop")
	}
}
