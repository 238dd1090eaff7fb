package scheduler

import (
	"fmt"
	"testing"
	"time"
)

func TestJobHistory_AddResult_TrimsToLast100(t *testing.T) {
	history := &JobHistory{}

	for i := 0; i < 150; i++ {
		history.AddResult(JobResult{
			JobName:   fmt.Sprintf("job-%d", i),
			StartTime: time.Now(),
			Success:   true,
		})
	}

	if len(history.Results) != 100 {
		t.Fatalf("history length = %d, want 100", len(history.Results))
	}

	// Oldest 50 dropped, newest kept.
	if history.Results[0].JobName != "job-50" {
		t.Errorf("oldest kept result = %s, want job-50", history.Results[0].JobName)
	}
	if history.Results[99].JobName != "job-149" {
		t.Errorf("newest result = %s, want job-149", history.Results[99].JobName)
	}
}

func TestJobHistory_GetLatestResults(t *testing.T) {
	history := &JobHistory{}
	for i := 0; i < 5; i++ {
		history.AddResult(JobResult{JobName: fmt.Sprintf("job-%d", i)})
	}

	latest := history.GetLatestResults(3)
	if len(latest) != 3 {
		t.Fatalf("latest length = %d, want 3", len(latest))
	}
	if latest[0].JobName != "job-2" || latest[2].JobName != "job-4" {
		t.Errorf("unexpected window: %s..%s", latest[0].JobName, latest[2].JobName)
	}

	// Asking for more than available returns everything.
	all := history.GetLatestResults(50)
	if len(all) != 5 {
		t.Errorf("length = %d, want 5", len(all))
	}
}
