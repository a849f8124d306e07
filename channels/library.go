// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package channels provides published Hodgkin-Huxley channel definitions
built on chans, hhgate and ratelaw:

  - the Hodgkin & Huxley (1952) squid giant axon Na and K channels
  - the Maex & De Schutter (1998) cerebellar granule cell NaF, KDr, KA,
    KCa (voltage and calcium dependent), CaHVA and H channels

Definitions are registered by name in a Library, in a fixed order.
*/
package channels

import (
	"errors"
	"fmt"

	"github.com/emer/hhchan/chans"
	"github.com/emer/hhchan/ratelaw"
	"github.com/goki/kigen/ordmap"
)

// ErrUnknown is returned for channel names not in a Library
var ErrUnknown = errors.New("channels: unknown channel")

// Maker makes a new validated channel Spec
type Maker func() (*chans.Spec, error)

// Library is an ordered set of named channel makers
type Library struct {

	// name of the library
	Name string

	// makers, in order added
	Makers *ordmap.Map[string, Maker]
}

// NewLibrary returns an empty library
func NewLibrary(name string) *Library {
	return &Library{Name: name, Makers: ordmap.New[string, Maker]()}
}

// Add adds a maker under name, replacing any existing one
func (lb *Library) Add(name string, mk Maker) {
	lb.Makers.Add(name, mk)
}

// Names returns the channel names in order
func (lb *Library) Names() []string {
	return lb.Makers.Keys()
}

// Len returns the number of channels
func (lb *Library) Len() int {
	return lb.Makers.Len()
}

// New makes a new Spec for the named channel
func (lb *Library) New(name string) (*chans.Spec, error) {
	mk, ok := lb.Makers.ValByKey(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrUnknown, name, lb.Name)
	}
	sp, err := mk()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", lb.Name, err)
	}
	return sp, nil
}

// lawSet compiles textual rate laws with shared options, keeping the
// first error so a channel definition can be written straight through
type lawSet struct {
	name string
	opts ratelaw.Options
	err  error
}

func (ls *lawSet) law(src string, binds ...ratelaw.Binding) *ratelaw.Law {
	if ls.err != nil {
		return nil
	}
	l, err := ratelaw.ParseCompile(src, ls.opts, binds...)
	if err != nil {
		ls.err = fmt.Errorf("%s: %w", ls.name, err)
	}
	return l
}

// conc returns a lawSet for concentration-dependent laws
func (ls *lawSet) conc() *lawSet {
	cs := *ls
	cs.opts.Conc = true
	return &cs
}

func validated(sp *chans.Spec, errs ...error) (*chans.Spec, error) {
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := sp.Validate(); err != nil {
		return nil, err
	}
	return sp, nil
}
