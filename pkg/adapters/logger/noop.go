// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-pqmesh.
//
// go-pqmesh is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package logger

// NoOp discards everything
type NoOp struct{}

// NewNoOp returns a logger that discards all output
func NewNoOp() *NoOp {
	return &NoOp{}
}

func (NoOp) Debug(string, ...Field) {}
func (NoOp) Info(string, ...Field) {}
func (NoOp) Warn(string, ...Field) {}
func (NoOp) Error(string, ...Field) {}
func (n NoOp) With(...Field) Logger { return n }
func (n NoOp) WithError(error) Logger { return n }

// OrNoOp returns l, or a NoOp logger when l is nil
func OrNoOp(l Logger) Logger {
	if l == nil {
		return NewNoOp()
	}
	return l
}
