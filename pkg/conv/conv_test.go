package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToString(t *testing.T) {
	tests := []struct {
		in   any
		want string
		ok   bool
	}{
		{"Heat", "Heat", true},
		{1995, "1995", true},
		{float64(1917), "1917", true},
		{8.3, "8.3", true},
		{true, "true", true},
		{nil, "", false},
		{[]string{"a"}, "", false},
	}
	for _, tt := range tests {
		got, ok := ToString(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func TestToFloat64AndInt(t *testing.T) {
	f, ok := ToFloat64(" 8.5 ")
	assert.True(t, ok)
	assert.Equal(t, 8.5, f)
	_, ok = ToFloat64("n/a")
	assert.False(t, ok)

	i, ok := ToInt(float64(1995))
	assert.True(t, ok)
	assert.Equal(t, 1995, i)
	_, ok = ToInt("1995")
	assert.False(t, ok)
}

func TestSliceAnyToString(t *testing.T) {
	assert.Equal(t, []string{"R", "1995"}, SliceAnyToString([]any{"R", 1995}))
	assert.Equal(t, []string{"a"}, SliceAnyToString([]string{"a"}))
	assert.Nil(t, SliceAnyToString("a"))
}

func TestConfigGet(t *testing.T) {
	cfg := map[string]any{"key": "director", "n": float64(3), "limit": 7}
	assert.Equal(t, "director", ConfigGet(cfg, "key", ""))
	assert.Equal(t, "x", ConfigGet(cfg, "missing", "x"))
	assert.Equal(t, "x", ConfigGet(cfg, "n", "x"))
	assert.Equal(t, int64(3), ConfigGetInt64(cfg, "n", 0))
	assert.Equal(t, int64(7), ConfigGetInt64(cfg, "limit", 0))
	assert.Equal(t, int64(5), ConfigGetInt64(nil, "n", 5))
}
