package worker

import (
	"errors"
	"fmt"

	"github.com/Dicklesworthstone/sfh/internal/account"
	"github.com/Dicklesworthstone/sfh/internal/events"
	"github.com/Dicklesworthstone/sfh/internal/server"
)

// ErrHealthy is returned when reviving an account that has not failed.
var ErrHealthy = errors.New("account has not failed")

// Control applies dashboard actions to the accounts of a registry. It reads
// like the registry it wraps.
type Control struct {
	*server.Registry

	Log *events.Logger
	// Restart, when set, starts a fresh job for a revived account
	Restart func(srv *server.Server, acc *account.Account)
}

// Revive puts a failed or poisoned account back to LoggingIn and restarts
// its job. Accounts that are still healthy are left alone.
func (c *Control) Revive(id account.Ident) error {
	srv, acc, err := c.Lookup(id)
	if err != nil {
		return err
	}
	if st, err := acc.Status.Snapshot(); err == nil && account.Normalize(st).Kind().IsHealthy() {
		return fmt.Errorf("%w: %s", ErrHealthy, acc.Name)
	}

	Revive(NewHandle(srv, acc, c.Log))
	if c.Restart != nil {
		c.Restart(srv, acc)
	}
	return nil
}

// Logout removes the account from its server. Its crawl state stays.
func (c *Control) Logout(id account.Ident) error {
	srv, acc, err := c.Lookup(id)
	if err != nil {
		return err
	}
	if err := c.RemoveAccount(srv.Ident.Key, id); err != nil {
		return err
	}

	data := events.StatusData{Name: acc.Name}
	if st, err := acc.Status.Snapshot(); err == nil {
		data.From = account.Normalize(st).Kind().String()
	}
	NewHandle(srv, acc, c.Log).emit(events.EventAccountRemove, data)
	return nil
}
