package call

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeOverwritesOnlyNonEmpty(t *testing.T) {
	prior := Draft{Name: "Asha", Email: "asha@example.com"}
	extracted := Draft{Email: "", Phone: "+15550100", ServiceName: "ganesh puja"}

	merged := Merge(prior, extracted)

	assert.Equal(t, "Asha", merged.Name)
	assert.Equal(t, "asha@example.com", merged.Email)
	assert.Equal(t, "+15550100", merged.Phone)
	assert.Equal(t, "ganesh puja", merged.ServiceName)
}

func TestMergeIdempotent(t *testing.T) {
	prior := Draft{Name: "Asha"}
	extracted := Draft{Phone: "+15550100"}

	once := Merge(prior, extracted)
	twice := Merge(once, extracted)

	assert.Equal(t, once, twice)
}

func TestMergeOrderIndependentForDisjointFields(t *testing.T) {
	a := Draft{Name: "Asha"}
	b := Draft{Email: "asha@example.com"}

	assert.Equal(t, Merge(Merge(Draft{}, a), b), Merge(Merge(Draft{}, b), a))
}

func TestMergeTrimsWhitespace(t *testing.T) {
	merged := Merge(Draft{}, Draft{Name: "  Asha  ", Phone: "   "})

	assert.Equal(t, "Asha", merged.Name)
	assert.Empty(t, merged.Phone)
}

func TestIsComplete(t *testing.T) {
	full := Draft{Name: "Asha", Email: "a@b.c", Phone: "+15550100", ServiceName: "ganesh puja"}
	require.True(t, full.IsComplete())

	for _, tc := range []struct {
		name  string
		draft Draft
	}{
		{"missing name", Draft{Email: "a@b.c", Phone: "+15550100", ServiceName: "puja"}},
		{"missing email", Draft{Name: "Asha", Phone: "+15550100", ServiceName: "puja"}},
		{"missing phone", Draft{Name: "Asha", Email: "a@b.c", ServiceName: "puja"}},
		{"missing service", Draft{Name: "Asha", Email: "a@b.c", Phone: "+15550100"}},
		{"whitespace only", Draft{Name: "  ", Email: "a@b.c", Phone: "+15550100", ServiceName: "puja"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, tc.draft.IsComplete())
		})
	}
}

func TestMissingFixedOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"name", "email", "phone", "service name"},
		Draft{}.Missing(),
	)

	assert.Equal(t,
		[]string{"email", "service name"},
		Draft{Name: "Asha", Phone: "+15550100"}.Missing(),
	)
}
