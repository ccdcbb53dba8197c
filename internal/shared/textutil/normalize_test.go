package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	cases := map[string]string{
		"Orçamento":  "orcamento",
		"SERVIÇOS":   "servicos",
		"João Ávila": "joao avila",
		"plain":      "plain",
		"":           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Fold(in))
	}
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("Orçamento #12 - João", "orcamento"))
	assert.True(t, Contains("Consultoria Técnica", "TECNICA"))
	assert.True(t, Contains("anything", ""))
	assert.False(t, Contains("Categoria", "produto"))
}
