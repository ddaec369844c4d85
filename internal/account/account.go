package account

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Ident identifies an account independent of its display name.
type Ident uuid.UUID

// NewIdent returns a random identity.
func NewIdent() Ident {
	return Ident(uuid.New())
}

// ParseIdent parses the textual form produced by Ident.String.
func ParseIdent(s string) (Ident, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return Ident{}, fmt.Errorf("parsing account ident %q: %w", s, err)
	}
	return Ident(id), nil
}

// String returns the canonical UUID form.
func (i Ident) String() string {
	return uuid.UUID(i).String()
}

// Short returns the first eight characters, enough to tell accounts apart in a list.
func (i Ident) Short() string {
	return i.String()[:8]
}

// MarshalText implements encoding.TextMarshaler.
func (i Ident) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Ident) UnmarshalText(b []byte) error {
	id, err := ParseIdent(string(b))
	if err != nil {
		return err
	}
	*i = id
	return nil
}

// ScrapbookInfo is the scrapbook data attached once the worker fetched it.
type ScrapbookInfo struct {
	AutoBattle bool
}

// Account is one game character on one server.
type Account struct {
	Ident  Ident
	Name   string
	Status *StatusCell

	scrapbook atomic.Pointer[ScrapbookInfo]
}

// New creates an account in the LoggingIn state.
func New(name string) *Account {
	return &Account{
		Ident:  NewIdent(),
		Name:   name,
		Status: NewStatusCell(LoggingIn{}),
	}
}

// Scrapbook returns a copy of the attached scrapbook info, or nil.
func (a *Account) Scrapbook() *ScrapbookInfo {
	sb := a.scrapbook.Load()
	if sb == nil {
		return nil
	}
	cp := *sb
	return &cp
}

// SetScrapbook attaches info; nil detaches it.
func (a *Account) SetScrapbook(info *ScrapbookInfo) {
	if info == nil {
		a.scrapbook.Store(nil)
		return
	}
	cp := *info
	a.scrapbook.Store(&cp)
}
