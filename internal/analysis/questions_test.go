package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"tarim-kds/internal/safety"
	"tarim-kds/internal/schema"
)

func TestProvincePackPassesSafetyGate(t *testing.T) {
	sch := schema.Default()

	pack := ProvincePack(sch, "Mersin", 2024)
	assert.Len(t, pack, 10)

	for _, q := range pack {
		v := safety.Validate(q.SQL, sch)
		assert.True(t, v.Safe, "question %d: %s (offending %q)", q.ID, q.SQL, v.Offending)
		assert.Equal(t, strings.Count(q.SQL, "?"), len(q.Params),
			"question %d: placeholder and parameter counts must match", q.ID)
	}
}

func TestProductPackPassesSafetyGate(t *testing.T) {
	sch := schema.Default()

	pack := ProductPack(sch, "Domates", 2024)
	assert.Len(t, pack, 10)

	for _, q := range pack {
		v := safety.Validate(q.SQL, sch)
		assert.True(t, v.Safe, "question %d: %s (offending %q)", q.ID, q.SQL, v.Offending)
		assert.Equal(t, strings.Count(q.SQL, "?"), len(q.Params),
			"question %d: placeholder and parameter counts must match", q.ID)
	}
}

func TestPacksFollowResolvedSchema(t *testing.T) {
	sch := schema.Build("istatistik", []string{"province", "district", "product", "year", "category", "area", "production", "yield"})

	for _, q := range ProvincePack(sch, "Mersin", 2024) {
		assert.NotContains(t, q.SQL, `"il"`, "question %d must use the resolved column names", q.ID)
		assert.Contains(t, q.SQL, `"istatistik"`, "question %d", q.ID)
		v := safety.Validate(q.SQL, sch)
		assert.True(t, v.Safe, "question %d offending %q", q.ID, v.Offending)
	}
}
