package confirm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// channelPresenter hands each presented prompt to the test.
type channelPresenter chan Prompt

func (c channelPresenter) Present(prompt Prompt) error {
	c <- prompt
	return nil
}

func newGate(p Presenter) *Gate {
	return NewGate(p, clockwork.NewFakeClock(), zerolog.Nop())
}

func confirmAsync(g *Gate, ctx context.Context, message string) <-chan bool {
	out := make(chan bool, 1)
	go func() { out <- g.Confirm(ctx, message) }()
	return out
}

func receive(t *testing.T, ch <-chan bool) bool {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation did not resolve")
		return false
	}
}

func TestConfirmResolvesWithAnswer(t *testing.T) {
	for _, answer := range []bool{true, false} {
		presented := make(channelPresenter, 1)
		g := newGate(presented)

		result := confirmAsync(g, context.Background(), "Delete this ticket?")
		prompt := <-presented
		if prompt.Message != "Delete this ticket?" {
			t.Fatalf("message = %q", prompt.Message)
		}
		if len(g.Pending()) != 1 {
			t.Fatalf("pending = %d, want 1", len(g.Pending()))
		}

		if err := g.Resolve(prompt.ID, answer); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got := receive(t, result); got != answer {
			t.Fatalf("Confirm = %v, want %v", got, answer)
		}
		if len(g.Pending()) != 0 {
			t.Fatalf("prompt still pending after resolve")
		}
	}
}

func TestResolveExactlyOnce(t *testing.T) {
	presented := make(channelPresenter, 1)
	g := newGate(presented)

	result := confirmAsync(g, context.Background(), "Are you sure you want to logout?")
	prompt := <-presented

	if err := g.Resolve(prompt.ID, true); err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	if err := g.Resolve(prompt.ID, false); !errors.Is(err, ErrPromptNotFound) {
		t.Fatalf("second Resolve err = %v, want ErrPromptNotFound", err)
	}
	if got := receive(t, result); !got {
		t.Fatal("answer changed by second resolve")
	}
}

func TestRepeatedPromptsDoNotAccumulate(t *testing.T) {
	presented := make(channelPresenter, 1)
	g := newGate(presented)

	for i := 0; i < 10; i++ {
		result := confirmAsync(g, context.Background(), "again?")
		prompt := <-presented
		if err := g.Resolve(prompt.ID, i%2 == 0); err != nil {
			t.Fatal(err)
		}
		receive(t, result)
	}
	if n := len(g.Pending()); n != 0 {
		t.Fatalf("pending = %d after all prompts resolved", n)
	}
}

func TestConfirmFailsClosed(t *testing.T) {
	t.Run("no presenter", func(t *testing.T) {
		g := newGate(nil)
		if g.Confirm(context.Background(), "x") {
			t.Fatal("Confirm without presenter returned true")
		}
	})

	t.Run("presenter error", func(t *testing.T) {
		g := newGate(PresenterFunc(func(Prompt) error { return errors.New("modal missing") }))
		if g.Confirm(context.Background(), "x") {
			t.Fatal("Confirm with failing presenter returned true")
		}
		if len(g.Pending()) != 0 {
			t.Fatal("failed prompt left pending")
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		presented := make(channelPresenter, 1)
		g := newGate(presented)
		ctx, cancel := context.WithCancel(context.Background())

		result := confirmAsync(g, ctx, "x")
		prompt := <-presented
		cancel()

		if receive(t, result) {
			t.Fatal("cancelled Confirm returned true")
		}
		if err := g.Resolve(prompt.ID, true); !errors.Is(err, ErrPromptNotFound) {
			t.Fatalf("Resolve after cancel err = %v", err)
		}
	})

	t.Run("gate closed", func(t *testing.T) {
		presented := make(channelPresenter, 1)
		g := newGate(presented)

		result := confirmAsync(g, context.Background(), "x")
		<-presented
		g.Close()

		if receive(t, result) {
			t.Fatal("Confirm returned true after Close")
		}
		if g.Confirm(context.Background(), "y") {
			t.Fatal("Confirm on closed gate returned true")
		}
	})
}

func TestPresenterMayResolveSynchronously(t *testing.T) {
	var g *Gate
	g = newGate(PresenterFunc(func(p Prompt) error {
		return g.Resolve(p.ID, true)
	}))

	if !g.Confirm(context.Background(), "auto") {
		t.Fatal("synchronous resolve lost")
	}
}

func TestResolveUnknownPrompt(t *testing.T) {
	g := newGate(make(channelPresenter, 1))
	if err := g.Resolve("missing", true); !errors.Is(err, ErrPromptNotFound) {
		t.Fatalf("err = %v, want ErrPromptNotFound", err)
	}
}
