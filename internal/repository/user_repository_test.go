package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@school.example", normalizeEmail("  Ada@School.Example "))
	assert.Equal(t, "ada@school.example", normalizeEmail("ada@school.example"))
	assert.Equal(t, "", normalizeEmail("   "))
}
