package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, PolicyFail, ParsePolicy("fail", PolicyDegrade))
	assert.Equal(t, PolicyDegrade, ParsePolicy("degrade", PolicyFail))
	assert.Equal(t, PolicyFail, ParsePolicy("", PolicyFail))
	assert.Equal(t, PolicyDegrade, ParsePolicy("nonsense", PolicyDegrade))
}

func TestDefaultPolicies(t *testing.T) {
	p := DefaultPolicies()
	assert.Equal(t, PolicyFail, p.Recording)
	assert.Equal(t, PolicyFail, p.Transcription)
	assert.Equal(t, PolicyDegrade, p.Analysis)
}
