package compiler

import "scriptc/internal/model"

// finalize hands each class its instance-init statements, freezes it and
// builds the forest: classes in registration order, then the enums the
// policy emits, then interfaces.
func (r *run) finalize() *model.Forest {
	forest := &model.Forest{
		Classes: make([]*model.Class, 0, len(r.order)),
	}
	for _, typ := range r.order {
		b := r.classes[typ]
		b.SetInstanceInit(r.inits.statements(typ))
		forest.Classes = append(forest.Classes, b.Freeze())
	}
	for _, typ := range r.enums {
		sem := r.policy.TypeSemantics(typ)
		if sem.Emitted() {
			forest.Enums = append(forest.Enums, &model.Enum{Symbol: typ, Name: sem.Name})
		}
	}
	for _, typ := range r.interfaceOrder {
		forest.Interfaces = append(forest.Interfaces, r.interfaces[typ])
	}
	return forest
}
