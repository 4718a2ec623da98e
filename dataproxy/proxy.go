/*
Copyright © 2021 the Hypotheticube authors.
This file is part of Hypotheticube.

Hypotheticube is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Hypotheticube is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Hypotheticube.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package dataproxy provides lazy, fault tolerant access to one variable of
// a possibly remote and possibly missing NetCDF file.
//
// A Proxy performs no I/O until it is first read or validated. If the file
// cannot be found or read, or does not hold the expected variable with the
// expected shape, the Proxy remembers the reason and from then on returns
// fully masked data instead of an error.
package dataproxy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/hypotheticube/cloud"
	"github.com/spatialmodel/hypotheticube/ncfile"
	"github.com/spatialmodel/hypotheticube/ndarray"
)

// Config describes the data a Proxy stands in for.
type Config struct {
	// Shape is the expected shape of the variable.
	Shape []int

	// DType is the element type reported to consumers.
	DType ncfile.DataType

	// URI names the file. See cloud.Resolver.Resolve for the accepted forms.
	URI string

	// Variable is the name of the variable within the file.
	Variable string

	// FillValue is stored in masked elements. If nil,
	// ndarray.DefaultFillValue is used.
	FillValue *float64

	// Storage is passed to the resolver when fetching the file.
	Storage cloud.StorageOptions
}

// Proxy stands in for one variable of one NetCDF file.
// It is safe for concurrent use.
type Proxy struct {
	mu sync.Mutex

	cfg    Config
	state  State
	kind   FailureKind
	reason string
	err    error

	// local is the resolved file, owned by the Proxy.
	local *cloud.LocalFile

	resolver *cloud.Resolver
	log      logrus.FieldLogger
}

// Option configures a Proxy.
type Option func(*Proxy)

// WithResolver sets the resolver used to fetch the file. The default is
// cloud.DefaultResolver.
func WithResolver(r *cloud.Resolver) Option {
	return func(p *Proxy) { p.resolver = r }
}

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Proxy) { p.log = l }
}

// New returns a Proxy for cfg. No I/O is performed.
func New(cfg Config, opts ...Option) *Proxy {
	cfg.Shape = append([]int{}, cfg.Shape...)
	if cfg.FillValue != nil {
		f := *cfg.FillValue
		cfg.FillValue = &f
	}
	p := &Proxy{cfg: cfg}
	p.Configure(opts...)
	return p
}

// Configure applies opts to p, for example after p has been decoded.
func (p *Proxy) Configure(opts ...Option) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resolver = cloud.DefaultResolver
	p.log = logrus.StandardLogger()
	for _, o := range opts {
		o(p)
	}
}

// Shape returns the declared shape.
func (p *Proxy) Shape() []int { return append([]int{}, p.cfg.Shape...) }

// DType returns the declared element type.
func (p *Proxy) DType() ncfile.DataType { return p.cfg.DType }

// URI returns the URI of the file.
func (p *Proxy) URI() string { return p.cfg.URI }

// Variable returns the name of the variable.
func (p *Proxy) Variable() string { return p.cfg.Variable }

// FillValue returns the value stored in masked elements.
func (p *Proxy) FillValue() float64 {
	if p.cfg.FillValue == nil {
		return ndarray.DefaultFillValue
	}
	return *p.cfg.FillValue
}

// State returns the current validation state.
func (p *Proxy) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Reason returns a description of why the Proxy failed, or "" if it
// has not.
func (p *Proxy) Reason() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reason
}

// Kind returns the kind of failure, if any.
func (p *Proxy) Kind() FailureKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kind
}

// Err returns the error that caused the Proxy to fail, or nil.
func (p *Proxy) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Proxy) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := fmt.Sprintf("<Proxy %s of %s, shape %s, %s>", p.cfg.Variable, p.cfg.URI, ndarray.FormatShape(p.cfg.Shape), p.state)
	if p.state == Failed {
		s = s[:len(s)-1] + ": " + p.reason + ">"
	}
	return s
}

// Validate checks that the file exists and holds the variable with the
// expected shape, and returns the resulting state. Validation happens at
// most once; later calls return the remembered state. If ctx is
// cancelled before validation completes, the state stays NotChecked.
func (p *Proxy) Validate(ctx context.Context) State {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.validate(ctx)
	return p.state
}

// validate must be called with p.mu held. The only error returned is
// the error of a cancelled ctx.
func (p *Proxy) validate(ctx context.Context) error {
	if p.state != NotChecked {
		return nil
	}
	log := p.log.WithFields(logrus.Fields{"uri": p.cfg.URI, "variable": p.cfg.Variable})
	if err := ctx.Err(); err != nil {
		return err
	}
	local, err := p.resolver.Resolve(ctx, p.cfg.URI, p.cfg.Storage)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		p.fail(NoSuchFile, fmt.Sprintf("no such file %s", p.cfg.URI), err)
		return nil
	}
	p.setLocal(local)

	f, err := ncfile.Open(local.Path)
	if err != nil {
		p.fail(Unreadable, fmt.Sprintf("could not read file %s source %s", local.Path, p.cfg.URI), err)
		return nil
	}
	defer f.Close()
	v, err := f.Variable(p.cfg.Variable)
	if err != nil {
		p.fail(NoVariable, fmt.Sprintf("no variable %s in file %s (source %s)", p.cfg.Variable, local.Path, p.cfg.URI), err)
		return nil
	}
	if shape := v.Shape(); !ndarray.EqualShape(shape, p.cfg.Shape) {
		e := &ShapeMismatchError{Got: shape, Want: p.Shape()}
		p.fail(ShapeMismatch, e.Error(), e)
		return nil
	}
	p.state = Valid
	log.Debug("validated")
	return nil
}

// fail records a failure and releases the local file, which will not be
// needed again. p.mu must be held.
func (p *Proxy) fail(kind FailureKind, reason string, err error) {
	p.state, p.kind, p.reason, p.err = Failed, kind, reason, err
	p.setLocal(nil)
	failures.WithLabelValues(kind.String()).Inc()
	p.log.WithFields(logrus.Fields{
		"uri":      p.cfg.URI,
		"variable": p.cfg.Variable,
		"kind":     kind,
	}).Warnf("%s: %v", reason, err)
}

// setLocal replaces the owned local file, releasing the previous one.
func (p *Proxy) setLocal(f *cloud.LocalFile) {
	if p.local != nil && p.local != f {
		if err := p.local.Release(); err != nil {
			p.log.WithField("path", p.local.Path).Warnf("removing local copy: %v", err)
		}
	}
	p.local = f
}

// Read returns the data selected by sel. Axes without a selector are
// selected entirely, and axes selected with ndarray.At are dropped from
// the result.
//
// If the Proxy has failed, or fails while reading, the result is fully
// masked. The only errors returned are for invalid selectors and
// cancelled contexts.
func (p *Proxy) Read(ctx context.Context, sel ...ndarray.Selector) (*ndarray.Array, error) {
	h, err := ndarray.Resolve(p.cfg.Shape, sel...)
	if err != nil {
		return nil, fmt.Errorf("dataproxy: %s of %s: %w", p.cfg.Variable, p.cfg.URI, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.validate(ctx); err != nil {
		return nil, err
	}
	if p.state == Failed {
		return ndarray.Masked(h.Shape(), p.FillValue()), nil
	}
	a, err := p.read(ctx, h)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var path string
		if p.local != nil {
			path = p.local.Path
		}
		p.fail(ReadFailed, fmt.Sprintf("could not read variable %s from file %s (source %s)", p.cfg.Variable, path, p.cfg.URI), err)
		return ndarray.Masked(h.Shape(), p.FillValue()), nil
	}
	return a, nil
}

// read reads the selection from the file. p.mu must be held.
func (p *Proxy) read(ctx context.Context, h ndarray.Hyperslab) (*ndarray.Array, error) {
	if h.Len() == 0 {
		return ndarray.New(h.Shape(), nil), nil
	}
	var err error
	if p.local == nil {
		p.local, err = p.resolver.Resolve(ctx, p.cfg.URI, p.cfg.Storage)
	} else {
		var local *cloud.LocalFile
		local, err = p.resolver.EnsureLocal(ctx, p.local, p.cfg.Storage)
		if err != nil {
			p.local = nil
		} else {
			p.local = local
		}
	}
	if err != nil {
		return nil, err
	}

	f, err := ncfile.Open(p.local.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	v, err := f.Variable(p.cfg.Variable)
	if err != nil {
		return nil, err
	}
	if shape := v.Shape(); !ndarray.EqualShape(shape, p.cfg.Shape) {
		return nil, &ShapeMismatchError{Got: shape, Want: p.Shape()}
	}
	start, count := h.Bounds()
	block, err := v.Read(start, count)
	if err != nil {
		return nil, err
	}
	a := ndarray.New(h.Shape(), h.Extract(block, count))
	a.FillValue = p.FillValue()
	if missing := missingValues(v); len(missing) > 0 {
		a.MaskWhere(func(x float64) bool {
			for _, m := range missing {
				if x == m || (math.IsNaN(m) && math.IsNaN(x)) {
					return true
				}
			}
			return false
		})
	}
	return a, nil
}

// missingValues returns the values that mark missing data in v.
func missingValues(v ncfile.Variable) []float64 {
	var out []float64
	if fill, ok := v.FillValue(); ok {
		out = append(out, fill)
	}
	if mv, ok := ncfile.AttrFloat64s(v.Attributes(), "missing_value"); ok {
		out = append(out, mv...)
	}
	return out
}

// Reset returns the Proxy to the NotChecked state so that the next Read
// or Validate tries the file again.
func (p *Proxy) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setLocal(nil)
	p.state, p.kind, p.reason, p.err = NotChecked, NoFailure, "", nil
}

// Close releases the local copy of the file, if there is one. The Proxy
// remains usable and fetches the file again when needed.
func (p *Proxy) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.local == nil {
		return nil
	}
	err := p.local.Release()
	p.local = nil
	if err != nil {
		return fmt.Errorf("dataproxy: %v", err)
	}
	return nil
}

// errFromReason rebuilds a failure error after decoding.
func errFromReason(kind FailureKind, reason string, got, want []int) error {
	if kind == ShapeMismatch && got != nil {
		return &ShapeMismatchError{Got: got, Want: want}
	}
	return errors.New(reason)
}
