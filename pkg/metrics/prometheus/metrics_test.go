package prometheus

import (
	"testing"
	"time"

	"github.com/kecho/splatastic/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRegistry(t *testing.T) {
	t.Helper()
	metrics.InitRegistry()
	t.Cleanup(func() { metrics.InitRegistry() })
}

func gatherNames(t *testing.T) map[string]bool {
	t.Helper()
	mfs, err := metrics.GetRegistry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(mfs))
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	return names
}

func TestTaskMetrics_RegistersAndObserves(t *testing.T) {
	setupRegistry(t)
	m := metrics.NewTaskMetrics()
	require.NotNil(t, m)

	m.ObserveScheduled("decode-chunk")
	m.ObserveCompleted("decode-chunk", 5*time.Millisecond)
	m.RecordPending(3)

	names := gatherNames(t)
	assert.True(t, names["splatastic_tasks_scheduled_total"])
	assert.True(t, names["splatastic_task_duration_milliseconds"])
	assert.True(t, names["splatastic_tasks_pending"])
}

func TestWorkerMetrics_RegistersAndObserves(t *testing.T) {
	setupRegistry(t)
	m := metrics.NewWorkerMetrics()
	require.NotNil(t, m)

	m.RecordActiveDepth(0, 2)
	m.ObserveJobRun(0)
	m.ObserveSteal(0)

	names := gatherNames(t)
	assert.True(t, names["splatastic_worker_active_depth"])
	assert.True(t, names["splatastic_worker_jobs_run_total"])
	assert.True(t, names["splatastic_worker_steals_total"])
}

func TestSceneMetrics_RegistersAndObserves(t *testing.T) {
	setupRegistry(t)
	m := metrics.NewSceneMetrics()
	require.NotNil(t, m)

	m.ObserveOpen(true)
	m.ObserveOpen(false)
	m.ObserveOutcome("success")
	m.RecordOpenScenes(4)
	m.ObserveCopyPayload(2048)

	names := gatherNames(t)
	assert.True(t, names["splatastic_scene_opens_total"])
	assert.True(t, names["splatastic_scene_outcomes_total"])
	assert.True(t, names["splatastic_scene_open_count"])
	assert.True(t, names["splatastic_scene_copy_payload_bytes"])
	assert.True(t, names["splatastic_scene_copy_payload_total"])
}

func TestFileMetrics_RegistersAndObserves(t *testing.T) {
	setupRegistry(t)
	m := metrics.NewFileMetrics()
	require.NotNil(t, m)

	m.ObserveChunk("read", 65536)
	m.ObserveOutcome("read", "success")

	names := gatherNames(t)
	assert.True(t, names["splatastic_file_chunk_bytes"])
	assert.True(t, names["splatastic_file_outcomes_total"])
}
