package rulevm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityString_DefaultsToError(t *testing.T) {
	assert.Equal(t, "error", Severity(99).String())
}

func TestConstraintCheck_CompiledRegex(t *testing.T) {
	c := mustConstraint("X", `^foo`)
	assert.True(t, c.Check("foobar"))
	assert.False(t, c.Check("barfoo"))

	c.Kind = ConstraintNotRegex
	assert.False(t, c.Check("foobar"))
	assert.True(t, c.Check("barfoo"))
}

func TestConstraintCheck_InertRegex(t *testing.T) {
	plain := &Constraint{Kind: ConstraintRegex}
	assert.False(t, plain.Check("anything"), "an inert plain regex constraint is never satisfied")

	negated := &Constraint{Kind: ConstraintNotRegex}
	assert.True(t, negated.Check("anything"), "an inert not_regex constraint is satisfied by the always-non-matching test")
}
