package hooks_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/canvas-dashboard/hooks"
	"github.com/jrsteele09/canvas-dashboard/lms"
	"github.com/jrsteele09/canvas-dashboard/lms/lmsfake"
	"github.com/stretchr/testify/require"
)

func countingQuery(calls *int32, key hooks.Key, value string) hooks.Query[string] {
	return hooks.Query[string]{
		Key:     key,
		Enabled: true,
		Fetch: func(context.Context) (string, error) {
			atomic.AddInt32(calls, 1)
			return value, nil
		},
	}
}

func TestUse_SameKeyFetchesOnce(t *testing.T) {
	cache := hooks.NewCache(time.Minute)
	var calls int32

	first := hooks.Use(context.Background(), cache, countingQuery(&calls, hooks.Key{"courses", "7"}, "a"))
	second := hooks.Use(context.Background(), cache, countingQuery(&calls, hooks.Key{"courses", "7"}, "b"))

	require.Equal(t, int32(1), calls)
	require.Equal(t, "a", first.Data)
	require.False(t, first.Cached)
	require.Equal(t, "a", second.Data)
	require.True(t, second.Cached)
}

func TestUse_ConcurrentCallsShareFetch(t *testing.T) {
	cache := hooks.NewCache(time.Minute)
	var calls int32
	release := make(chan struct{})

	q := hooks.Query[int]{
		Key:     hooks.Key{"events", "7"},
		Enabled: true,
		Fetch: func(context.Context) (int, error) {
			atomic.AddInt32(&calls, 1)
			<-release
			return 42, nil
		},
	}

	var wg sync.WaitGroup
	results := make([]hooks.Result[int], 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = hooks.Use(context.Background(), cache, q)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		require.NoError(t, r.Err)
		require.Equal(t, 42, r.Data)
	}
}

func TestUse_KeyChangeRefetches(t *testing.T) {
	cache := hooks.NewCache(time.Minute)
	var calls int32

	hooks.Use(context.Background(), cache, countingQuery(&calls, hooks.Key{"assignments", int64(1)}, "one"))
	r := hooks.Use(context.Background(), cache, countingQuery(&calls, hooks.Key{"assignments", int64(2)}, "two"))

	require.Equal(t, int32(2), calls)
	require.Equal(t, "two", r.Data)
	require.Equal(t, 2, cache.Len())
}

func TestUse_Disabled(t *testing.T) {
	cache := hooks.NewCache(time.Minute)
	var calls int32
	q := countingQuery(&calls, hooks.Key{"courses", ""}, "x")
	q.Enabled = false

	r := hooks.Use(context.Background(), cache, q)
	require.True(t, r.Disabled)
	require.Zero(t, calls)
	require.Zero(t, cache.Len())
}

func TestUse_Expiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := hooks.NewCache(30*time.Second, hooks.WithNowTime(func() time.Time { return now }))
	var calls int32
	key := hooks.Key{"courses", "7"}

	hooks.Use(context.Background(), cache, countingQuery(&calls, key, "a"))
	now = now.Add(29 * time.Second)
	require.True(t, hooks.Use(context.Background(), cache, countingQuery(&calls, key, "a")).Cached)

	now = now.Add(time.Second)
	r := hooks.Use(context.Background(), cache, countingQuery(&calls, key, "b"))
	require.False(t, r.Cached)
	require.Equal(t, "b", r.Data)
	require.Equal(t, int32(2), calls)
}

func TestUse_ErrorsAreNotStored(t *testing.T) {
	cache := hooks.NewCache(time.Minute)
	var calls int32
	q := hooks.Query[string]{
		Key:     hooks.Key{"courses", "7"},
		Enabled: true,
		Fetch: func(context.Context) (string, error) {
			atomic.AddInt32(&calls, 1)
			return "", errors.New("upstream down")
		},
	}

	require.Error(t, hooks.Use(context.Background(), cache, q).Err)
	require.Error(t, hooks.Use(context.Background(), cache, q).Err)
	require.Equal(t, int32(2), calls)
	require.Zero(t, cache.Len())
}

func TestUse_CancelledCallerDoesNotFailOthers(t *testing.T) {
	cache := hooks.NewCache(time.Minute)
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})

	q := hooks.Query[int]{
		Key:     hooks.Key{"submissions", "7"},
		Enabled: true,
		Fetch: func(ctx context.Context) (int, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				close(started)
			}
			<-release
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			return 42, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan hooks.Result[int], 1)
	go func() { first <- hooks.Use(ctx, cache, q) }()
	<-started

	second := make(chan hooks.Result[int], 1)
	go func() { second <- hooks.Use(context.Background(), cache, q) }()
	time.Sleep(50 * time.Millisecond)

	cancel()
	abandoned := <-first
	require.ErrorIs(t, abandoned.Err, context.Canceled)

	close(release)
	r := <-second
	require.NoError(t, r.Err)
	require.Equal(t, 42, r.Data)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// the detached fetch still stored its result
	cached := hooks.Use(context.Background(), cache, q)
	require.True(t, cached.Cached)
	require.Equal(t, 42, cached.Data)
}

func TestUse_IncompleteResultsAreNotStored(t *testing.T) {
	cache := hooks.NewCache(time.Minute)
	var calls int32
	q := hooks.Query[lms.PartialResult[lms.Submission]]{
		Key:     hooks.Key{"submissions", "7"},
		Enabled: true,
		Fetch: func(context.Context) (lms.PartialResult[lms.Submission], error) {
			atomic.AddInt32(&calls, 1)
			return lms.PartialResult[lms.Submission]{
				Failures: []lms.Failure{{ID: "course:2", Reason: "503 Service Unavailable"}},
			}, nil
		},
	}

	first := hooks.Use(context.Background(), cache, q)
	require.NoError(t, first.Err)
	require.False(t, first.Data.Complete())

	second := hooks.Use(context.Background(), cache, q)
	require.False(t, second.Cached)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
	require.Zero(t, cache.Len())
}

func TestCache_Invalidate(t *testing.T) {
	cache := hooks.NewCache(time.Minute)
	var calls int32
	hooks.Use(context.Background(), cache, countingQuery(&calls, hooks.Key{"courses", "7"}, "a"))
	hooks.Use(context.Background(), cache, countingQuery(&calls, hooks.Key{"events", "7"}, "b"))
	require.Equal(t, 2, cache.Len())

	cache.Invalidate("courses/")
	require.Equal(t, 1, cache.Len())

	cache.Invalidate()
	require.Zero(t, cache.Len())
}

func TestHooks_ForgetUser(t *testing.T) {
	fake := lmsfake.New(t)
	fake.JSON("users/7/courses", []lms.Course{{ID: 1, Name: "Biology"}})
	fake.JSON("users/17/courses", []lms.Course{{ID: 2, Name: "Chemistry"}})
	client := lms.NewClient(fake.APIRoot(), lms.NewHTTPClient("token", nil))
	h := hooks.New(client, hooks.NewCache(time.Minute))

	h.UserCourses(context.Background(), "7")
	h.UserCourses(context.Background(), "17")
	require.Equal(t, 2, h.Cache().Len())

	h.ForgetUser("7")
	require.Equal(t, 1, h.Cache().Len())

	r := h.UserCourses(context.Background(), "17")
	require.True(t, r.Cached)
	r = h.UserCourses(context.Background(), "7")
	require.False(t, r.Cached)
	require.Equal(t, 2, fake.Count(http.MethodGet, "users/7/courses"))
}

func TestHooks_UserCoursesHitsUpstreamOnce(t *testing.T) {
	fake := lmsfake.New(t)
	fake.JSON("users/7/courses", []lms.Course{{ID: 1, Name: "Biology"}})
	client := lms.NewClient(fake.APIRoot(), lms.NewHTTPClient("token", nil))
	h := hooks.New(client, hooks.NewCache(time.Minute))

	for i := 0; i < 3; i++ {
		r := h.UserCourses(context.Background(), "7")
		require.NoError(t, r.Err)
		require.Len(t, r.Data, 1)
	}
	require.Equal(t, 1, fake.Count(http.MethodGet, "users/7/courses"))

	r := h.UserCourses(context.Background(), "")
	require.True(t, r.Disabled)
}

func TestHooks_CourseStudents(t *testing.T) {
	fake := lmsfake.New(t)
	fake.JSON("courses/3/enrollments", []lms.Enrollment{
		{UserID: 1, Type: lms.TeacherEnrollment},
		{UserID: 2, Type: lms.StudentEnrollment},
	})
	client := lms.NewClient(fake.APIRoot(), lms.NewHTTPClient("token", nil))
	h := hooks.New(client, nil)

	r := h.CourseStudents(context.Background(), 3)
	require.NoError(t, r.Err)
	require.Len(t, r.Data, 1)
	require.Equal(t, int64(2), r.Data[0].UserID)

	require.True(t, h.CourseStudents(context.Background(), 0).Disabled)
}
