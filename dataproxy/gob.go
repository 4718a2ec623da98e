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

package dataproxy

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/spatialmodel/hypotheticube/cloud"
	"github.com/spatialmodel/hypotheticube/ncfile"
)

// gobProxy is the serialized form of a Proxy. The local file is not
// included.
type gobProxy struct {
	Shape     []int
	DType     ncfile.DataType
	URI       string
	Variable  string
	FillValue *float64
	Storage   cloud.StorageOptions

	State  State
	Kind   FailureKind
	Reason string

	// GotShape is the actual shape after a shape mismatch.
	GotShape []int
}

// GobEncode implements gob.GobEncoder. No I/O is performed.
func (p *Proxy) GobEncode() ([]byte, error) {
	p.mu.Lock()
	g := gobProxy{
		Shape:     p.cfg.Shape,
		DType:     p.cfg.DType,
		URI:       p.cfg.URI,
		Variable:  p.cfg.Variable,
		FillValue: p.cfg.FillValue,
		Storage:   p.cfg.Storage,
		State:     p.state,
		Kind:      p.kind,
		Reason:    p.reason,
	}
	var sm *ShapeMismatchError
	if errors.As(p.err, &sm) {
		g.GotShape = sm.Got
	}
	p.mu.Unlock()

	var b bytes.Buffer
	if err := gob.NewEncoder(&b).Encode(g); err != nil {
		return nil, fmt.Errorf("dataproxy: encoding %s: %v", g.URI, err)
	}
	return b.Bytes(), nil
}

// GobDecode implements gob.GobDecoder. The decoded Proxy uses
// cloud.DefaultResolver and the standard logger until Configure is
// called. No I/O is performed.
func (p *Proxy) GobDecode(b []byte) error {
	var g gobProxy
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&g); err != nil {
		return fmt.Errorf("dataproxy: decoding: %v", err)
	}
	p.Configure()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = Config{
		Shape:     g.Shape,
		DType:     g.DType,
		URI:       g.URI,
		Variable:  g.Variable,
		FillValue: g.FillValue,
		Storage:   g.Storage,
	}
	p.state, p.kind, p.reason = g.State, g.Kind, g.Reason
	p.err = nil
	if p.state == Failed {
		p.err = errFromReason(g.Kind, g.Reason, g.GotShape, g.Shape)
	}
	p.setLocal(nil)
	return nil
}
