// Package dictionary holds the interpreter's user-defined words: the
// name -> compiled-body mapping manipulated by define/delete/isdef and
// consulted by Call (spec.md §4.A "Dictionary" / §4.H).
package dictionary

import (
	"strings"
	"sync"

	"sscript/internal/bytecode"
	serrors "sscript/internal/errors"
)

// reservedChars are the characters a define-NAME may not start with,
// matching the lexer's own reserved-character set (spec.md §6).
const reservedChars = " \t\r\n[]{}()\""

// Dictionary maps a word name to its compiled body. Zero value is ready
// to use. The guarding RWMutex exists so pinjectN goroutines (SPEC_FULL.md
// §4.H) can read concurrently while a sequential define/delete still
// takes an exclusive lock; concurrent define/delete from within a
// pinjectN body itself is unordered by design and documented unsupported.
type Dictionary struct {
	mu    sync.RWMutex
	words map[string]*bytecode.Chunk
}

// New returns an empty Dictionary.
func New() *Dictionary {
	return &Dictionary{words: make(map[string]*bytecode.Chunk)}
}

// ValidateName reports an InvalidNameDefine error if name is empty or
// starts with a reserved character.
func ValidateName(name string) *serrors.Error {
	if name == "" {
		return serrors.New(serrors.InvalidNameDefine, "define name must not be empty")
	}
	if strings.ContainsRune(reservedChars, rune(name[0])) {
		return serrors.Newf(serrors.InvalidNameDefine, "define name %q starts with a reserved character", name)
	}
	return nil
}

// Set binds name to body, overwriting any previous binding. Callers must
// validate name with ValidateName first; Set itself does not re-check.
func (d *Dictionary) Set(name string, body *bytecode.Chunk) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.words == nil {
		d.words = make(map[string]*bytecode.Chunk)
	}
	d.words[name] = body
}

// Get looks up name's bound body.
func (d *Dictionary) Get(name string) (*bytecode.Chunk, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	body, ok := d.words[name]
	return body, ok
}

// Delete unbinds name. Deleting a name that was never defined is a no-op,
// matching the reference's silent-delete behavior.
func (d *Dictionary) Delete(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.words, name)
}

// Contains reports whether name is currently bound.
func (d *Dictionary) Contains(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.words[name]
	return ok
}
