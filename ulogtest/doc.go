// Package ulogtest provides helpers for testing code that logs through
// [ulog].
//
// A [Recorder] is a [ulog.Subscriber] that copies every delivered message so
// tests can assert on what was logged after the fact:
//
//	l := ulog.New()
//	rec := ulogtest.NewRecorder()
//	require.NoError(t, l.Subscribe(rec, ulog.LevelDebug))
//
//	l.Infof("x=%d", 5)
//	assert.Equal(t, []string{"x=5"}, rec.Messages())
//
// [JoinLF] builds expected multi-line output with explicit line endings.
package ulogtest
