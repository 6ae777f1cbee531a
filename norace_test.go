//go:build !race

package ulog_test

const raceEnabled = false
