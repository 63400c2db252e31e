package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	t.Run("specific types", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newTestHandler()
		r.Register(h, "TeacherCreated", "TeacherUpdated")

		assert.Len(t, r.GetHandlers("TeacherCreated"), 1)
		assert.Len(t, r.GetHandlers("TeacherUpdated"), 1)
		assert.Empty(t, r.GetHandlers("TeacherDeleted"))
	})

	t.Run("wildcard handlers follow typed ones", func(t *testing.T) {
		r := NewHandlerRegistry()
		typed := newTestHandler()
		wildcard := newTestHandler()
		r.Register(wildcard)
		r.Register(typed, "UserCreated")

		handlers := r.GetHandlers("UserCreated")
		assert.Len(t, handlers, 2)
		assert.Same(t, typed, handlers[0])
		assert.Same(t, wildcard, handlers[1])
		assert.Len(t, r.GetHandlers("Anything"), 1)
	})

	t.Run("double registration is ignored", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newTestHandler()
		r.Register(h, "UserCreated")
		r.Register(h, "UserCreated")
		assert.Len(t, r.GetHandlers("UserCreated"), 1)
	})

	t.Run("unregister and list all", func(t *testing.T) {
		r := NewHandlerRegistry()
		a := newTestHandler()
		b := newTestHandler()
		r.Register(a, "UserCreated", "UserDeleted")
		r.Register(b)
		assert.Len(t, r.GetAllHandlers(), 2)

		r.Unregister(a)
		assert.Len(t, r.GetHandlers("UserCreated"), 1)
		assert.Len(t, r.GetAllHandlers(), 1)

		r.Unregister(b)
		assert.Empty(t, r.GetAllHandlers())
	})
}
