package audit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	log, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })
	return log
}

func TestRecordRunAndFindings(t *testing.T) {
	log := openTestLog(t)

	require.NoError(t, log.RecordRun("run-1", "rules/no-var.rsbc"))
	require.NoError(t, log.RecordFindings("run-1", []Finding{
		{RuleID: "no-var", Severity: "warning", Source: "a.js", StartByte: 0, EndByte: 6},
		{RuleID: "no-var", Severity: "warning", Source: "b.js", StartByte: 10, EndByte: 16},
	}))

	count, err := log.CountByRule("no-var")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRecordFindings_EmptyIsNoop(t *testing.T) {
	log := openTestLog(t)
	require.NoError(t, log.RecordRun("run-1", "rules/x.rsbc"))
	require.NoError(t, log.RecordFindings("run-1", nil))

	count, err := log.CountByRule("anything")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCountByRule_AcrossMultipleRuns(t *testing.T) {
	log := openTestLog(t)
	require.NoError(t, log.RecordRun("run-1", "r.rsbc"))
	require.NoError(t, log.RecordRun("run-2", "r.rsbc"))

	require.NoError(t, log.RecordFindings("run-1", []Finding{{RuleID: "dup", Source: "a.js"}}))
	require.NoError(t, log.RecordFindings("run-2", []Finding{{RuleID: "dup", Source: "b.js"}}))

	count, err := log.CountByRule("dup")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
