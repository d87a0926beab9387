package datastore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sigboard/sigboard/pkg/dataset"
	"github.com/sigboard/sigboard/pkg/filetypes/csv"
	"github.com/sigboard/sigboard/pkg/signals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	calls []map[string][]*signals.Signal
}

func (l *recordingListener) PatternsMatched(matches map[string][]*signals.Signal) {
	l.calls = append(l.calls, matches)
}

func (l *recordingListener) last() map[string][]*signals.Signal {
	if len(l.calls) == 0 {
		return nil
	}
	return l.calls[len(l.calls)-1]
}

func paths(matches []*signals.Signal) []string {
	result := []string{}
	for _, s := range matches {
		result = append(result, s.Path())
	}
	return result
}

func writeCsv(t *testing.T, dir string, name string, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func loadCsv(t *testing.T, path string) *dataset.Dataset {
	ds, err := csv.NewCsvFileType().Load(path, dataset.LoadOptions{})
	require.NoError(t, err)
	return ds
}

const logCsv = "time,x [m],label\n0,0.0,idle\n1,2.0,idle\n2,3.0,drive\n"

const sensorsCsv = "time,speed [m/s],gyro/z [rad/s]\n0,1.0,0.1\n1,2.0,0.2\n"

func TestStore(t *testing.T) {
	t.Run("IncrementName()", testIncrementNameFunc())
	t.Run("PatternApplies()", testPatternAppliesFunc())
	t.Run("Add()", testAddFunc())
	t.Run("Remove()", testRemoveFunc())
	t.Run("Match()", testMatchFunc())
	t.Run("Notify()", testNotifyFunc())
	t.Run("RefreshAll()", testRefreshAllFunc())
	t.Run("RefreshAll() - overwrite", testRefreshAllOverwriteFunc())
	t.Run("RefreshAll() - errors", testRefreshAllErrorsFunc())
	t.Run("RefreshWhere()", testRefreshWhereFunc())
	t.Run("SignalFromPath()", testSignalFromPathFunc())
}

func testIncrementNameFunc() func(*testing.T) {
	return func(t *testing.T) {
		assert.Equal(t, "foo_1", IncrementName("foo"))
		assert.Equal(t, "foo_4", IncrementName("foo_3"))
		assert.Equal(t, "foo_10", IncrementName("foo_9"))
		assert.Equal(t, "a_b_2", IncrementName("a_b_1"))
		assert.Equal(t, "foo_3x_1", IncrementName("foo_3x"))
		assert.Equal(t, "_1", IncrementName(""))
	}
}

func testPatternAppliesFunc() func(*testing.T) {
	return func(t *testing.T) {
		assert.True(t, PatternApplies("sensors/speed", "sensors/speed"))
		assert.True(t, PatternApplies("sensors/speed", "sensors/*"))
		assert.True(t, PatternApplies("sensors/gyro/z", "sensors/*"))
		assert.True(t, PatternApplies("log/speed", "*/speed"))
		assert.True(t, PatternApplies("log/speed", "*"))
		assert.False(t, PatternApplies("sensors/speed", "sensors"))
		assert.False(t, PatternApplies("log/speedometer", "*/speed"))
		assert.False(t, PatternApplies("sensors/speed", "sen*/speed"), "inner wildcards are not supported")
		assert.False(t, PatternApplies("sensorsx", "sensors/*"))
	}
}

func testAddFunc() func(*testing.T) {
	return func(t *testing.T) {
		path := writeCsv(t, t.TempDir(), "log.csv", logCsv)
		store := NewStore()

		assert.Equal(t, "log", store.Add(loadCsv(t, path), false))
		assert.Equal(t, "log_1", store.Add(loadCsv(t, path), false))
		assert.Equal(t, "log_2", store.Add(loadCsv(t, path), false))
		assert.Equal(t, []string{"log", "log_1", "log_2"}, store.Names())

		for _, name := range store.Names() {
			ds, ok := store.Get(name)
			require.True(t, ok)
			assert.Equal(t, name, ds.Name())
			for _, s := range ds.Signals() {
				assert.Equal(t, name+"/"+s.Name(), s.Path())
			}
		}

		replacement := loadCsv(t, path)
		assert.Equal(t, "log", store.Add(replacement, true))
		assert.Equal(t, 3, store.Len())
		ds, _ := store.Get("log")
		assert.Same(t, replacement, ds)

		store.Clear()
		assert.Equal(t, 0, store.Len())
		assert.Empty(t, store.Datasets())
	}
}

func testRemoveFunc() func(*testing.T) {
	return func(t *testing.T) {
		dir := t.TempDir()
		store := NewStore()
		store.Insert(loadCsv(t, writeCsv(t, dir, "log.csv", logCsv)), false)
		store.Insert(loadCsv(t, writeCsv(t, dir, "sensors.csv", sensorsCsv)), false)

		listener := &recordingListener{}
		store.Subscribe(listener, []string{"*/x"})

		assert.True(t, store.Remove("log"))
		assert.False(t, store.Remove("log"))
		assert.Equal(t, []string{"sensors"}, store.Names())

		require.Len(t, listener.calls, 1)
		assert.Empty(t, listener.last()["*/x"])
	}
}

func testMatchFunc() func(*testing.T) {
	return func(t *testing.T) {
		dir := t.TempDir()
		store := NewStore()
		store.Insert(loadCsv(t, writeCsv(t, dir, "log.csv", logCsv)), false)
		store.Insert(loadCsv(t, writeCsv(t, dir, "sensors.csv", sensorsCsv)), false)

		assert.Equal(t, []string{"sensors/speed", "sensors/gyro/z"}, paths(store.Match("sensors/*", nil)))
		assert.Equal(t, []string{"sensors/gyro/z"}, paths(store.Match("*/z", nil)))
		assert.Equal(t, []string{"log/x"}, paths(store.Match("log/x", nil)))
		assert.Equal(t, []string{}, paths(store.Match("log/missing", nil)))
		assert.Len(t, store.Match("*", nil), 4)

		logDs, _ := store.Get("log")
		assert.Empty(t, store.Match("sensors/*", []*dataset.Dataset{logDs}))

		matches := store.MatchAll([]string{"*/x", "nothing"}, nil)
		assert.Equal(t, []string{"log/x"}, paths(matches["*/x"]))
		require.Contains(t, matches, "nothing")
		assert.Empty(t, matches["nothing"])
	}
}

func testNotifyFunc() func(*testing.T) {
	return func(t *testing.T) {
		dir := t.TempDir()
		store := NewStore()
		logPath := writeCsv(t, dir, "log.csv", logCsv)
		store.Insert(loadCsv(t, logPath), false)

		first := &recordingListener{}
		second := &recordingListener{}
		store.Subscribe(first, []string{"log/*"})
		store.Subscribe(second, []string{"*/speed"})

		patterns, ok := store.Patterns(first)
		require.True(t, ok)
		assert.Equal(t, []string{"log/*"}, patterns)

		store.Notify(nil)
		require.Len(t, first.calls, 1)
		assert.Equal(t, []string{"log/x", "log/label"}, paths(first.last()["log/*"]))
		require.Len(t, second.calls, 1)
		assert.Empty(t, second.last()["*/speed"])

		sensors := loadCsv(t, writeCsv(t, dir, "sensors.csv", sensorsCsv))
		store.Add(sensors, false)
		require.Len(t, second.calls, 2)
		assert.Equal(t, []string{"sensors/speed"}, paths(second.last()["*/speed"]))
		assert.Empty(t, first.last()["log/*"], "only the added dataset is matched")

		store.Unsubscribe(first)
		store.Unsubscribe(first)
		_, ok = store.Patterns(first)
		assert.False(t, ok)

		store.Notify(nil)
		assert.Len(t, first.calls, 2)
		assert.Len(t, second.calls, 3)
	}
}

func testRefreshAllFunc() func(*testing.T) {
	return func(t *testing.T) {
		dir := t.TempDir()
		path := writeCsv(t, dir, "log.csv", logCsv)
		store := NewStore()
		original := loadCsv(t, path)
		store.Insert(original, false)

		listener := &recordingListener{}
		store.Subscribe(listener, []string{"*/x"})

		changed, err := store.RefreshAll(false)
		require.NoError(t, err)
		assert.Empty(t, changed)
		assert.Empty(t, listener.calls, "unchanged refresh must not notify")
		ds, _ := store.Get("log")
		assert.Same(t, original, ds)

		writeCsv(t, dir, "log.csv", logCsv+"3,5.0,stop\n")
		changed, err = store.RefreshAll(false)
		require.NoError(t, err)
		require.Len(t, changed, 1)
		assert.Equal(t, "log_1", changed[0].Name())
		assert.Equal(t, []string{"log", "log_1"}, store.Names())

		ds, _ = store.Get("log")
		assert.Same(t, original, ds, "original dataset must be kept")

		refreshed, _ := store.Get("log_1")
		x, ok := refreshed.Signal("log_1/x")
		require.True(t, ok)
		assert.Equal(t, 4, x.Len())

		require.Len(t, listener.calls, 1)
		assert.Equal(t, []string{"log_1/x"}, paths(listener.last()["*/x"]), "only changed datasets are matched")

		changed, err = store.RefreshAll(false)
		require.NoError(t, err)
		assert.Empty(t, changed, "content already loaded as log_1 must not be copied again")
		assert.Equal(t, []string{"log", "log_1"}, store.Names())
		assert.Len(t, listener.calls, 1)
	}
}

func testRefreshWhereFunc() func(*testing.T) {
	return func(t *testing.T) {
		dir := t.TempDir()
		logPath := writeCsv(t, dir, "log.csv", logCsv)
		sensorsPath := writeCsv(t, dir, "sensors.csv", sensorsCsv)

		store := NewStore()
		store.Insert(loadCsv(t, logPath), false)
		store.Insert(loadCsv(t, sensorsPath), false)

		writeCsv(t, dir, "log.csv", logCsv+"3,5.0,stop\n")
		writeCsv(t, dir, "sensors.csv", sensorsCsv+"2,3.0,0.3\n")

		changed, err := store.RefreshWhere(false, func(ds *dataset.Dataset) bool {
			return ds.PathData() == logPath
		})
		require.NoError(t, err)
		require.Len(t, changed, 1)
		assert.Equal(t, "log_1", changed[0].Name())
		assert.Equal(t, []string{"log", "sensors", "log_1"}, store.Names())
	}
}

func testRefreshAllOverwriteFunc() func(*testing.T) {
	return func(t *testing.T) {
		dir := t.TempDir()
		path := writeCsv(t, dir, "log.csv", logCsv)
		store := NewStore()
		original := loadCsv(t, path)
		original.SetName("renamed")
		store.Insert(original, false)

		writeCsv(t, dir, "log.csv", logCsv+"3,5.0,stop\n")
		changed, err := store.RefreshAll(true)
		require.NoError(t, err)
		require.Len(t, changed, 1)

		assert.Equal(t, []string{"renamed"}, store.Names())
		ds, _ := store.Get("renamed")
		assert.NotSame(t, original, ds)
		assert.Equal(t, "renamed", ds.Name())

		x, ok := store.SignalFromPath("renamed/x")
		require.True(t, ok)
		assert.Equal(t, 4, x.Len())
	}
}

func testRefreshAllErrorsFunc() func(*testing.T) {
	return func(t *testing.T) {
		dir := t.TempDir()
		missing := writeCsv(t, dir, "gone.csv", logCsv)
		path := writeCsv(t, dir, "log.csv", logCsv)

		store := NewStore()
		store.Insert(loadCsv(t, missing), false)
		store.Insert(loadCsv(t, path), false)
		require.NoError(t, os.Remove(missing))

		writeCsv(t, dir, "log.csv", logCsv+"3,5.0,stop\n")
		changed, err := store.RefreshAll(true)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "gone")
		require.Len(t, changed, 1, "a failing dataset must not stop the others")
		assert.Equal(t, "log", changed[0].Name())
	}
}

func testSignalFromPathFunc() func(*testing.T) {
	return func(t *testing.T) {
		store := NewStore()
		store.Insert(loadCsv(t, writeCsv(t, t.TempDir(), "sensors.csv", sensorsCsv)), false)

		s, ok := store.SignalFromPath("sensors/gyro/z")
		require.True(t, ok)
		assert.Equal(t, "rad/s", s.Units())

		_, ok = store.SignalFromPath("sensors/gyro")
		assert.False(t, ok)
		_, ok = store.SignalFromPath("sensors")
		assert.False(t, ok)
		_, ok = store.SignalFromPath("missing/speed")
		assert.False(t, ok)
	}
}
