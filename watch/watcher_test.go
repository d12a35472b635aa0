package watch

import (
	"accircuit"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const v1 = `#SaveFile
[Components]
R1 resistor 100
[Circuits]
[End]
`

const v2 = `#SaveFile
[Components]
R1 resistor 100
R2 resistor 200
[Circuits]
S1 series 50 ( R1 R2 )
[End]
`

// recorder 收集回调结果
type recorder struct {
	mu       sync.Mutex
	projects []*accircuit.Project
	errs     []error
}

func (r *recorder) onReload(p *accircuit.Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects = append(r.projects, p)
}

func (r *recorder) onError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.projects), len(r.errs)
}

func (r *recorder) last() *accircuit.Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.projects[len(r.projects)-1]
}

func start(t *testing.T, path string, rec *recorder) *Watcher {
	t.Helper()
	w, err := New(path, Options{
		Debounce: 50 * time.Millisecond,
		OnReload: rec.onReload,
		OnError:  rec.onError,
		Logger:   zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(w.Stop)
	return w
}

func TestReloadOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.sav")
	require.NoError(t, os.WriteFile(path, []byte(v1), 0644))

	rec := &recorder{}
	w := start(t, path, rec)

	require.NoError(t, os.WriteFile(path, []byte(v2), 0644))
	require.Eventually(t, func() bool {
		n, _ := rec.counts()
		return n >= 1
	}, 3*time.Second, 10*time.Millisecond)

	p := rec.last()
	assert.Len(t, p.Components(), 2)
	assert.Len(t, p.Circuits(), 1)
	assert.GreaterOrEqual(t, w.Reloads(), 1)
}

func TestDebounceCoalescesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.sav")
	require.NoError(t, os.WriteFile(path, []byte(v1), 0644))

	rec := &recorder{}
	start(t, path, rec)

	for range 5 {
		require.NoError(t, os.WriteFile(path, []byte(v2), 0644))
		time.Sleep(5 * time.Millisecond)
	}
	require.Eventually(t, func() bool {
		n, _ := rec.counts()
		return n >= 1
	}, 3*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	n, _ := rec.counts()
	assert.Less(t, n, 5)
}

func TestBadFileReportsErrorAndKeepsWatching(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.sav")
	require.NoError(t, os.WriteFile(path, []byte(v1), 0644))

	rec := &recorder{}
	start(t, path, rec)

	require.NoError(t, os.WriteFile(path, []byte("garbage\n"), 0644))
	require.Eventually(t, func() bool {
		_, e := rec.counts()
		return e >= 1
	}, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(v2), 0644))
	require.Eventually(t, func() bool {
		n, _ := rec.counts()
		return n >= 1
	}, 3*time.Second, 10*time.Millisecond)
}

func TestIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.sav")
	require.NoError(t, os.WriteFile(path, []byte(v1), 0644))

	rec := &recorder{}
	start(t, path, rec)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.sav"), []byte(v2), 0644))
	time.Sleep(200 * time.Millisecond)
	n, e := rec.counts()
	assert.Zero(t, n)
	assert.Zero(t, e)
}

func TestStopWithoutStart(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "project.sav"), Options{})
	require.NoError(t, err)
	w.Stop()
}

func TestContextCancelStopsLoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.sav")
	require.NoError(t, os.WriteFile(path, []byte(v1), 0644))
	w, err := New(path, Options{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()
	w.Stop()
}
