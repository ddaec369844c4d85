package worker

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/Dicklesworthstone/sfh/internal/account"
	"github.com/Dicklesworthstone/sfh/internal/crawl"
)

// SimOptions tunes the simulated workers used by `sfh dashboard --simulate`.
type SimOptions struct {
	// Step is the base delay between state changes
	Step time.Duration
	// FightCooldown is the upper bound for a simulated arena cooldown
	FightCooldown time.Duration
	// FailRate is the chance per step that the job gives up (0..1)
	FailRate float64
	// PanicRate is the chance per step that the job panics (0..1)
	PanicRate float64
	// Seed makes the simulation reproducible; 0 uses the clock
	Seed int64
}

// DefaultSimOptions returns options that produce a lively dashboard.
func DefaultSimOptions() SimOptions {
	return SimOptions{
		Step:          800 * time.Millisecond,
		FightCooldown: 45 * time.Second,
	}
}

var busyReasons = []string{
	"Fighting",
	"Buying mushrooms",
	"Tavern quest",
	"City guard",
	"Dungeon",
	"Underworld",
}

// ErrSimulatedFailure is returned by simulated jobs that give up.
var ErrSimulatedFailure = errors.New("simulated failure")

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// SimulatedAccount returns a job that walks an account through login and a
// loop of idle and busy states with a ticking arena cooldown.
func SimulatedAccount(opts SimOptions) Job {
	return JobFunc(func(ctx context.Context, h *Handle) error {
		seed := opts.Seed
		if seed != 0 {
			for _, r := range h.Account.Name {
				seed = seed*31 + int64(r)
			}
		}
		rng := newRand(seed)
		base := opts.Step
		if base <= 0 {
			base = DefaultSimOptions().Step
		}
		step := func() error {
			d := base + time.Duration(rng.Int63n(int64(base)+1))
			return sleep(ctx, d)
		}
		roll := func() error {
			if opts.PanicRate > 0 && rng.Float64() < opts.PanicRate {
				panic(fmt.Sprintf("simulated crash in %s", h.Account.Name))
			}
			if opts.FailRate > 0 && rng.Float64() < opts.FailRate {
				return ErrSimulatedFailure
			}
			return nil
		}

		h.Set(account.LoggingIn{})
		if err := step(); err != nil {
			return err
		}

		session := account.Session{
			Token:     fmt.Sprintf("sim-%s", h.Account.Ident.Short()),
			ExpiresAt: time.Now().Add(time.Hour),
		}
		gs := account.GameState{Character: account.Character{Name: h.Account.Name, Level: 1 + rng.Intn(400)}}
		h.SetScrapbook(&account.ScrapbookInfo{AutoBattle: rng.Intn(2) == 0})

		for i := 0; ; i++ {
			if err := roll(); err != nil {
				return err
			}

			if i > 0 && i%7 == 0 {
				h.Set(account.LoggingInAgain{})
				if err := step(); err != nil {
					return err
				}
			}

			gs.Arena.NextFreeFight = nextFight(rng, opts.FightCooldown)
			h.Set(account.Idle{Session: session, Game: gs})
			if err := step(); err != nil {
				return err
			}

			reason := busyReasons[rng.Intn(len(busyReasons))]
			h.Set(account.Busy{Game: gs, Reason: reason})
			if err := step(); err != nil {
				return err
			}
		}
	})
}

func nextFight(rng *rand.Rand, cooldown time.Duration) *time.Time {
	switch {
	case cooldown <= 0:
		return nil
	case rng.Intn(5) == 0:
		return nil
	}
	t := time.Now().Add(time.Duration(rng.Int63n(int64(cooldown))) - cooldown/4)
	return &t
}

// SimulatedFetcher returns a fetcher that invents player records after a
// short delay.
func SimulatedFetcher(delay time.Duration, seed int64) Fetcher {
	var mu sync.Mutex
	rng := newRand(seed)

	return FetchFunc(func(ctx context.Context, id crawl.PlayerID) (crawl.PlayerRecord, error) {
		if err := sleep(ctx, delay); err != nil {
			return crawl.PlayerRecord{}, err
		}
		mu.Lock()
		level := 1 + rng.Intn(600)
		mu.Unlock()
		return crawl.PlayerRecord{
			ID:    id,
			Name:  fmt.Sprintf("player%d", id),
			Level: level,
		}, nil
	})
}

// SeedRange returns the IDs first..last.
func SeedRange(first, last crawl.PlayerID) []crawl.PlayerID {
	if last < first {
		return nil
	}
	out := make([]crawl.PlayerID, 0, last-first+1)
	for id := first; ; id++ {
		out = append(out, id)
		if id == last {
			break
		}
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
