package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("jane@example.com"))
	assert.True(t, IsValidEmail("jane.doe+tag@sub.example.co.ke"))

	assert.False(t, IsValidEmail(""))
	assert.False(t, IsValidEmail("jane"))
	assert.False(t, IsValidEmail("jane@example"))
	assert.False(t, IsValidEmail("jane doe@example.com"))
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("+254700000000"))
	assert.True(t, IsValidPhone("0700000000"))
	assert.True(t, IsValidPhone("0700 000 000"))
	assert.True(t, IsValidPhone("(070) 000-0000"))

	assert.False(t, IsValidPhone(""))
	assert.False(t, IsValidPhone("12345"))
	assert.False(t, IsValidPhone("not-a-number"))
}
