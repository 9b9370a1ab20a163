//go:build js && wasm

package dom

import (
	"context"
	"fmt"
	"syscall/js"

	"gitlab.com/dirk.krummacker/static-website/internal/storage"
)

// LocalStorage is window.localStorage as a storage.Storage.
type LocalStorage struct {
	v js.Value
}

// NewLocalStorage returns the page's local storage, or an error if the browser denies access
// to it, as some do in private mode.
func NewLocalStorage() (ls *LocalStorage, err error) {
	defer recoverJS(&err)
	v := js.Global().Get("localStorage")
	if !present(v) {
		return nil, fmt.Errorf("localStorage not available")
	}
	return &LocalStorage{v: v}, nil
}

func (l *LocalStorage) GetItem(_ context.Context, key string) (value string, err error) {
	defer recoverJS(&err)
	v := l.v.Call("getItem", key)
	if !present(v) {
		return "", storage.ErrNotFound
	}
	return v.String(), nil
}

// SetItem fails when the browser's quota is exhausted.
func (l *LocalStorage) SetItem(_ context.Context, key string, value string) (err error) {
	defer recoverJS(&err)
	l.v.Call("setItem", key, value)
	return nil
}

func (l *LocalStorage) RemoveItem(_ context.Context, key string) (err error) {
	defer recoverJS(&err)
	l.v.Call("removeItem", key)
	return nil
}

// recoverJS turns an exception thrown by a JavaScript call into an error.
func recoverJS(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if jsErr, ok := r.(js.Error); ok {
		*err = fmt.Errorf("localStorage: %w", jsErr)
		return
	}
	panic(r)
}
