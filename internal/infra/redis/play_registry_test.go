package redis

import (
	"context"
	"testing"
	"time"

	"globent-quiz-service/internal/play"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestPlayRegistrySetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	registry := NewPlayRegistry(newClient(mr), time.Minute)
	p, err := play.Prepare(sampleQuiz())
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	first := registry.Add(play.NewSession(p, play.Options{}))
	_ = registry.Add(play.NewSession(p, play.Options{}))
	if got, _ := mr.Get("play:session:" + first); got != "quiz-1" {
		t.Fatalf("expected liveness marker with quiz id, got %q", got)
	}
	if live, err := registry.Live(context.Background()); err != nil || live != 2 {
		t.Fatalf("expected 2 live sessions, got %d %v", live, err)
	}

	registry.Remove(first)
	if mr.Exists("play:session:" + first) {
		t.Fatalf("expected marker removed")
	}

	registry.CloseAll()
	if live, _ := registry.Live(context.Background()); live != 0 {
		t.Fatalf("expected no live sessions after CloseAll, got %d", live)
	}
	if registry.Len() != 0 {
		t.Fatalf("expected local registry empty")
	}
}
