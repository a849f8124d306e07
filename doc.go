// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package hhchan is the overall repository for Hodgkin-Huxley style channel
kinetics implemented in the Go language (golang).

This top-level of the repository has no functional code -- everything is organized
into the following sub-repositories:

* ratelaw: closed-form rate laws of voltage and concentration, as typed
expression trees with scoped let bindings and explicit division fallbacks,
also parsed from the usual textual formulas.

* q10: temperature correction of rate constants, with an explicit
convention for which rates are scaled.

* hhgate: gating particles in alpha / beta, tau / inf or pre-tabulated form,
all reduced to (A, B) rate tables sampled on a voltage grid, with the exact
exponential update of the gate state and two-column export of the tables.

* capool: the calcium pool of a thin submembrane shell, driven by calcium
current and decaying to basal.

* chans: channel types (gates raised to powers, reversal potential,
maximal conductance) and their per-compartment instances.

* channels: published channel definitions: the Hodgkin & Huxley squid axon
and the Maex & De Schutter (1998) cerebellar granule cell.

* cell: a single isopotential compartment that steps its channels and pools
in a fixed order, so calcium-dependent gates read the concentration
produced in the same step, and records traces into etable tables.

* examples: these actually compile into runnable programs: examples/hhsquid
runs the squid axon with a current pulse and examples/granule the granule cell
with a current step.
*/
package hhchan
