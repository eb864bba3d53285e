package corrector_test

import (
	"testing"

	"github.com/gnames/gntaxon/pkg/corrector"
	"github.com/gnames/gntaxon/pkg/parserpool"
	"github.com/stretchr/testify/assert"
)

func TestCorrectWithoutParser(t *testing.T) {
	c := corrector.New(nil, map[string]string{
		"Homo  sapien": "Homo sapiens",
	})

	tests := []struct {
		msg, name, res string
	}{
		{"blank", "   ", ""},
		{"whitespace", "  Ariopsis\tfelis ", "Ariopsis felis"},
		{"quotes", `"Ariopsis felis"`, "Ariopsis felis"},
		{"correction", "Homo sapien", "Homo sapiens"},
		{"authorship stays", "Homo sapiens L.", "Homo sapiens L."},
	}
	for _, v := range tests {
		assert.Equal(t, v.res, c.Correct(v.name), v.msg)
	}
}

func TestCorrectWithParser(t *testing.T) {
	pool := parserpool.NewPool(1)
	defer pool.Close()
	c := corrector.New(pool, nil)

	tests := []struct {
		msg, name, res string
	}{
		{"canonical", "Homo sapiens Linnaeus, 1758", "Homo sapiens"},
		{"uninomial", "Animalia", "Animalia"},
		{"unparsed stays", "12 34", "12 34"},
	}
	for _, v := range tests {
		assert.Equal(t, v.res, c.Correct(v.name), v.msg)
	}
}
