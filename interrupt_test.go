package dirload

import "testing"

func TestInterrupt(t *testing.T) {
	assert := newAsserter(t)

	i := NewInterrupt()
	assert(!i.IsSet(), "new Interrupt should be unset")

	i.Set()
	assert(i.IsSet(), "Interrupt should be set after Set()")
}
