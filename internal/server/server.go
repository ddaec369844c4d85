// Package server groups accounts by the game server they play on and holds
// each server's crawl progress.
package server

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/Dicklesworthstone/sfh/internal/account"
	"github.com/Dicklesworthstone/sfh/internal/crawl"
)

var (
	// ErrUnknownServer is returned when no server matches the given key.
	ErrUnknownServer = errors.New("unknown server")
	// ErrUnknownAccount is returned when no account matches the given ident.
	ErrUnknownAccount = errors.New("unknown account")
)

// Ident is the stable identity of a server.
type Ident struct {
	// Key is the normalized host, used for ordering and lookup
	Key string `json:"key"`
	// URL is the address as configured
	URL string `json:"url"`
}

// NewIdent derives an identity from a server address. Addresses without a
// scheme are accepted ("s1.sfgame.net"); text that is not a URL keeps its
// trimmed, lowercased form as the key.
func NewIdent(raw string) Ident {
	raw = strings.TrimSpace(raw)
	return Ident{Key: hostKey(raw), URL: raw}
}

func hostKey(raw string) string {
	s := raw
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Hostname() == "" {
		return strings.ToLower(raw)
	}
	return strings.ToLower(u.Hostname())
}

// Code returns the short server name shown in the dashboard: the first label
// of the host ("s12" for s12.sfgame.net).
func (i Ident) Code() string {
	key := i.Key
	if key == "" {
		return ""
	}
	if dot := strings.IndexByte(key, '.'); dot > 0 {
		return key[:dot]
	}
	return key
}

// String returns the key.
func (i Ident) String() string {
	return i.Key
}

// Server is one game server with the accounts logged into it.
type Server struct {
	Ident Ident
	Crawl *crawl.Progress

	mu       sync.RWMutex
	accounts map[account.Ident]*account.Account
}

// New creates a server with a Waiting crawl and no accounts.
func New(ident Ident) *Server {
	return &Server{
		Ident:    ident,
		Crawl:    crawl.NewProgress(),
		accounts: make(map[account.Ident]*account.Account),
	}
}

// AddAccount attaches acc. Adding the same ident twice replaces the entry.
func (s *Server) AddAccount(acc *account.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[acc.Ident] = acc
}

// RemoveAccount detaches the account and reports whether it was present.
func (s *Server) RemoveAccount(id account.Ident) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return false
	}
	delete(s.accounts, id)
	return true
}

// Account returns the account with the given ident.
func (s *Server) Account(id account.Ident) (*account.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	return acc, ok
}

// Accounts returns the attached accounts in unspecified order.
func (s *Server) Accounts() []*account.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*account.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, acc)
	}
	return out
}

// Len returns the number of attached accounts.
func (s *Server) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

// Registry holds all known servers keyed by identity.
type Registry struct {
	mu      sync.RWMutex
	servers map[string]*Server
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{servers: make(map[string]*Server)}
}

// GetOrCreate returns the server for rawURL, creating it on first use.
func (r *Registry) GetOrCreate(rawURL string) *Server {
	ident := NewIdent(rawURL)

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.servers[ident.Key]; ok {
		return s
	}
	s := New(ident)
	r.servers[ident.Key] = s
	return s
}

// Get returns the server with the given key.
func (r *Registry) Get(key string) (*Server, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.servers[strings.ToLower(key)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownServer, key)
	}
	return s, nil
}

// Servers returns all servers ordered by key.
func (r *Registry) Servers() []*Server {
	r.mu.RLock()
	out := make([]*Server, 0, len(r.servers))
	for _, s := range r.servers {
		out = append(out, s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Ident.Key < out[j].Ident.Key })
	return out
}

// Len returns the number of servers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.servers)
}

// Lookup finds the account with the given ident on any server.
func (r *Registry) Lookup(id account.Ident) (*Server, *account.Account, error) {
	for _, s := range r.Servers() {
		if acc, ok := s.Account(id); ok {
			return s, acc, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrUnknownAccount, id)
}

// AddAccount creates an account named name on the server at rawURL.
func (r *Registry) AddAccount(rawURL, name string) (*Server, *account.Account) {
	s := r.GetOrCreate(rawURL)
	acc := account.New(name)
	s.AddAccount(acc)
	return s, acc
}

// RemoveAccount detaches an account from its server. Servers left without
// accounts stay registered so their crawl state survives.
func (r *Registry) RemoveAccount(key string, id account.Ident) error {
	s, err := r.Get(key)
	if err != nil {
		return err
	}
	if !s.RemoveAccount(id) {
		return fmt.Errorf("%w: %s on %s", ErrUnknownAccount, id, key)
	}
	return nil
}
