package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPrintQueueSummariesRendersRows(t *testing.T) {
	var out bytes.Buffer
	rows := []queueSummaryRow{
		{SchedulerID: "boefje-acme", Size: 12, NextPriority: 2, OldestScored: time.Now().Add(-time.Minute)},
		{SchedulerID: "normalizer-acme", Size: 3, NextPriority: 1, OldestScored: time.Now().Add(-time.Second)},
	}

	err := printQueueSummaries(&out, rows)
	require.NoError(t, err)

	outStr := out.String()
	require.Contains(t, outStr, "Scheduler")
	require.Contains(t, outStr, "boefje-acme")
	require.Contains(t, outStr, "normalizer-acme")
	require.Contains(t, outStr, "12")
}

func TestPrintQueueSummariesEmpty(t *testing.T) {
	var out bytes.Buffer

	err := printQueueSummaries(&out, nil)
	require.NoError(t, err)
	require.Contains(t, out.String(), "No queued items found.")
}

func TestPrintRequeueStatsDryRun(t *testing.T) {
	var out bytes.Buffer

	err := printRequeueStats(&out, requeueOptions{DryRun: true}, requeueStats{
		totalFailed: 9,
		examined:    4,
		requeued:    3,
		skipped:     1,
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "Dry-run: would requeue 3/4 failed tasks (skipped 1)")
}

func TestParseRequeueFlagsRejectsZeroLimit(t *testing.T) {
	_, err := parseRequeueFlags([]string{"--limit", "0"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "--limit")
}

func TestParseListTasksFlagsValidatesStatus(t *testing.T) {
	_, err := parseListTasksFlags([]string{"--status", "exploded"})
	require.Error(t, err)

	opts, err := parseListTasksFlags([]string{"--status", " Failed "})
	require.NoError(t, err)
	require.Equal(t, "failed", opts.Status)
}

func TestParsePluginCacheClearFlagsRequiresTarget(t *testing.T) {
	_, err := parsePluginCacheClearFlags(nil)
	require.Error(t, err)

	opts, err := parsePluginCacheClearFlags([]string{"--all"})
	require.NoError(t, err)
	require.True(t, opts.All)
}

func TestPluginCachePattern(t *testing.T) {
	require.Equal(t, "katalogus:*", pluginCachePattern(pluginCacheClearOptions{All: true}))
	require.Equal(t, "katalogus:acme:*", pluginCachePattern(pluginCacheClearOptions{OrgID: "acme"}))
}
