// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"testing"

	"github.com/dop251/goja"
)

// Realm is one JavaScript global environment. Scripts loaded into the
// same Realm share globalThis, as the scripts of one page or extension
// context do.
type Realm struct {
	t       *testing.T
	runtime *goja.Runtime
}

// NewRealm returns an empty Realm.
func NewRealm(t *testing.T) *Realm {
	t.Helper()
	return &Realm{t: t, runtime: goja.New()}
}

// Run executes source as a classic script named name and returns any
// exception it throws.
func (r *Realm) Run(name string, source []byte) error {
	_, err := r.runtime.RunScript(name, string(source))
	return err
}

// Load executes each named file of files in order, failing the test on
// the first missing file or thrown exception.
//
//	realm := testutil.NewRealm(t)
//	realm.Load(files, manifest.Entries["popup"]...)
func (r *Realm) Load(files map[string][]byte, names ...string) {
	r.t.Helper()
	for _, name := range names {
		source, ok := files[name]
		if !ok {
			r.t.Fatalf("loading %s: no such file", name)
		}
		if err := r.Run(name, source); err != nil {
			r.t.Fatalf("loading %s: %v", name, err)
		}
	}
}

// JSON evaluates expression and returns its JSON.stringify form.
func (r *Realm) JSON(expression string) string {
	r.t.Helper()
	value, err := r.runtime.RunString("JSON.stringify(" + expression + ")")
	if err != nil {
		r.t.Fatalf("evaluating %s: %v", expression, err)
	}
	if goja.IsUndefined(value) {
		return "undefined"
	}
	return value.String()
}
