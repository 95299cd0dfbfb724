package kvproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFaultError(t *testing.T) {
	f := NewFault("something broke")
	var err error = f
	assert.Equal(t, "something broke", err.Error())
}
