package compiler

import (
	"github.com/cockroachdb/errors"

	"scriptc/internal/model"
	"scriptc/internal/symbols"
)

// accumulator collects instance-init statements per class during the walk.
// Every statement is stamped with the ordinal of the unit that contributed
// it. Sealing ends the write phase; the constructor passes only read.
type accumulator struct {
	byClass map[symbols.SymbolID][]model.Stmt
	sealed  bool
}

func newAccumulator() *accumulator {
	return &accumulator{byClass: make(map[symbols.SymbolID][]model.Stmt)}
}

func (a *accumulator) add(class symbols.SymbolID, unit int, stmts []model.Stmt) {
	if a.sealed {
		panic(errors.AssertionFailedf("instance initializer added to class %d after the walk", class))
	}
	for _, s := range stmts {
		s.Unit = unit
		a.byClass[class] = append(a.byClass[class], s)
	}
}

func (a *accumulator) seal() initView {
	a.sealed = true
	return initView{byClass: a.byClass}
}

// initView is the read-only side of a sealed accumulator.
type initView struct {
	byClass map[symbols.SymbolID][]model.Stmt
}

// statements returns a fresh copy of the init statements of class, in
// contribution order.
func (v initView) statements(class symbols.SymbolID) []model.Stmt {
	stmts := v.byClass[class]
	if len(stmts) == 0 {
		return nil
	}
	return append([]model.Stmt(nil), stmts...)
}
