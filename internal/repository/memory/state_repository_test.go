package memory

import (
	"testing"

	"github.com/yuw136/paper-helper/internal/entity"
)

func TestStateRepository(t *testing.T) {
	r := NewStateRepository()

	cp := &entity.Checkpoint{
		ThreadId: "thread-1",
		State:    entity.CheckpointState{PaperId: "paper-1", TurnCount: 2},
	}
	r.Save(cp)

	got, found := r.Get("thread-1")
	if !found {
		t.Fatal("Get after Save: not found")
	}
	if got.State.TurnCount != 2 {
		t.Errorf("TurnCount = %d, want 2", got.State.TurnCount)
	}

	if _, found := r.Get("thread-2"); found {
		t.Error("Get unknown thread: found")
	}

	r.Delete("thread-1")
	if _, found := r.Get("thread-1"); found {
		t.Error("Get after Delete: found")
	}
}
