package account

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNewStatusCell(t *testing.T) {
	tests := []struct {
		name     string
		initial  Status
		expected Kind
	}{
		{"nil becomes logging in", nil, KindLoggingIn},
		{"logging in", LoggingIn{}, KindLoggingIn},
		{"idle", Idle{}, KindIdle},
		{"pointer busy", &Busy{Reason: "Fighting"}, KindBusy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewStatusCell(tt.initial)
			st, err := c.Snapshot()
			if err != nil {
				t.Fatalf("Snapshot() error = %v", err)
			}
			if st.Kind() != tt.expected {
				t.Errorf("Kind() = %s, want %s", st.Kind(), tt.expected)
			}
		})
	}
}

func TestStatusCell_SetAndSnapshot(t *testing.T) {
	c := NewStatusCell(nil)
	c.Set(Busy{Reason: "Crawling"})

	st, err := c.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	busy, ok := st.(Busy)
	if !ok {
		t.Fatalf("Snapshot() = %T, want Busy", st)
	}
	if busy.Reason != "Crawling" {
		t.Errorf("Reason = %q, want %q", busy.Reason, "Crawling")
	}
}

func TestStatusCell_Poison(t *testing.T) {
	c := NewStatusCell(Idle{})
	c.Poison(errors.New("worker panicked"))

	if !c.Poisoned() {
		t.Fatal("Poisoned() = false after Poison")
	}
	if _, err := c.Snapshot(); !errors.Is(err, ErrPoisoned) {
		t.Fatalf("Snapshot() error = %v, want ErrPoisoned", err)
	}

	// Writes are dropped until Reset.
	c.Set(Idle{})
	if _, err := c.Snapshot(); !errors.Is(err, ErrPoisoned) {
		t.Errorf("Set cleared poisoning, error = %v", err)
	}

	c.Reset(LoggingInAgain{})
	st, err := c.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() after Reset error = %v", err)
	}
	if st.Kind() != KindLoggingInAgain {
		t.Errorf("Kind() after Reset = %s, want %s", st.Kind(), KindLoggingInAgain)
	}
}

func TestStatusCell_PoisonNilCause(t *testing.T) {
	c := NewStatusCell(nil)
	c.Poison(nil)
	if _, err := c.Snapshot(); !errors.Is(err, ErrPoisoned) {
		t.Errorf("Snapshot() error = %v, want ErrPoisoned", err)
	}
}

func TestStatusCell_ZeroValue(t *testing.T) {
	var c StatusCell
	st, err := c.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if st.Kind() != KindLoggingIn {
		t.Errorf("zero cell Kind() = %s, want %s", st.Kind(), KindLoggingIn)
	}
}

func TestStatusCell_UpdatedAtAdvances(t *testing.T) {
	c := NewStatusCell(nil)
	before := c.UpdatedAt()
	time.Sleep(time.Millisecond)
	c.Set(Idle{})
	if !c.UpdatedAt().After(before) {
		t.Errorf("UpdatedAt() did not advance: before=%v after=%v", before, c.UpdatedAt())
	}
}

func TestStatusCell_ConcurrentReadersAndWriter(t *testing.T) {
	c := NewStatusCell(nil)
	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		reasons := []string{"Fighting", "Crawling", "Buying"}
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				c.Set(Busy{Reason: reasons[i%len(reasons)]})
			} else {
				c.Set(Idle{})
			}
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				st, err := c.Snapshot()
				if err != nil {
					t.Errorf("Snapshot() error = %v", err)
					return
				}
				if k := st.Kind(); k != KindBusy && k != KindIdle && k != KindLoggingIn {
					t.Errorf("unexpected kind %s", k)
					return
				}
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(stop)
	wg.Wait()
}

func TestStatusCell_UpdateIsAtomic(t *testing.T) {
	c := NewStatusCell(Busy{Reason: "0"})
	var wg sync.WaitGroup
	const n = 50
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Update(func(prev Status) Status {
				b := prev.(Busy)
				b.Reason += "x"
				return b
			})
		}()
	}
	wg.Wait()

	st, _ := c.Snapshot()
	if got := len(st.(Busy).Reason); got != n+1 {
		t.Errorf("len(Reason) = %d, want %d", got, n+1)
	}
}
