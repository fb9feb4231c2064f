package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		expected      []int64
		expectedError bool
	}{
		{name: "numbers", raw: `[{"id":5},{"id":2},{"id":9}]`, expected: []int64{5, 2, 9}},
		{name: "numeric strings", raw: `[{"id":"5"},{"id":"2"}]`, expected: []int64{5, 2}},
		{name: "extra fields ignored", raw: `[{"id":1,"children":[{"id":4}]},{"id":3,"name":"x"}]`, expected: []int64{1, 3}},
		{name: "empty list", raw: `[]`, expected: []int64{}},
		{name: "empty body", raw: ``, expectedError: true},
		{name: "not json", raw: `5,2,9`, expectedError: true},
		{name: "object instead of list", raw: `{"id":5}`, expectedError: true},
		{name: "null", raw: `null`, expectedError: true},
		{name: "entry without id", raw: `[{"id":1},{"name":"x"}]`, expectedError: true},
		{name: "null entry", raw: `[{"id":1},null]`, expectedError: true},
		{name: "fractional id", raw: `[{"id":1.5}]`, expectedError: true},
		{name: "non numeric string id", raw: `[{"id":"abc"}]`, expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := DecodeList([]byte(tt.raw))

			if tt.expectedError {
				assert.ErrorIs(t, err, ErrMalformedPayload)
				assert.Nil(t, ids)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestScope_Conditions(t *testing.T) {
	columns, values := Scope{"resource_id": 7, "resource_type": "page", "other": 1}.Conditions(Photos)

	assert.Equal(t, []string{"resource_type", "resource_id"}, columns)
	assert.Equal(t, []any{"page", 7}, values)

	columns, values = Scope(nil).Conditions(Photos)
	assert.Empty(t, columns)
	assert.Empty(t, values)
}

func TestTarget_Validate(t *testing.T) {
	for _, target := range []Target{PageSections, Banners, Pages, Navigations, Photos, Videos} {
		assert.NoError(t, target.Validate(), target.Name)
	}
	assert.Error(t, Target{Table: "pages", RankColumn: "order by"}.Validate())
}
