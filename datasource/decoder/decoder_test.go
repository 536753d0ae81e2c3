package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshal(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	d := NewDecoder()

	var data Data
	err := d.Unmarshal(&data, []byte(`{"tag":"create","method":"POST","path":"/tasks",`+
		`"headers":{"x-trace":["a","b"],"Accept":["application/json"]},`+
		`"body":{"hello":"world","n":[1,2.5,null]},"extra":{"ignored":[true]}}`))
	require.NoError(t, err)

	a.Equal("create", data.Tag)
	a.Equal("POST", data.Method)
	a.Equal("/tasks", data.Path)
	a.Equal([]Header{
		{"X-Trace", "a"},
		{"X-Trace", "b"},
		{"Accept", "application/json"},
	}, data.Header)
	a.True(data.HasBody)
	a.Equal(map[string]any{
		"hello": "world",
		"n":     []any{1.0, 2.5, nil},
	}, data.Body)
}

func TestUnmarshalDefaults(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	d := NewDecoder()

	var data Data
	require.NoError(t, d.Unmarshal(&data, []byte(`{"path":"/ping","headers":null}`)))
	a.Equal("GET", data.Method)
	a.Empty(data.Tag)
	a.Empty(data.Header)
	a.False(data.HasBody)
	a.Nil(data.Body)

	require.NoError(t, d.Unmarshal(&data, []byte(`{"path":"/x","body":null}`)))
	a.False(data.HasBody)
}

func TestUnmarshalReuse(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	d := NewDecoder()

	var data Data
	require.NoError(t, d.Unmarshal(&data, []byte(`{"path":"/a","headers":{"a":["1","2","3"]},"body":1}`)))
	a.Len(data.Header, 3)

	require.NoError(t, d.Unmarshal(&data, []byte(`{"path":"/b","headers":{"b":["1"]}}`)))
	a.Equal("/b", data.Path)
	a.Equal([]Header{{"B", "1"}}, data.Header)
	a.False(data.HasBody)
}

func TestUnmarshalInterns(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	d := NewDecoder()

	line := []byte(`{"tag":"t","path":"/p"}`)
	var first, second Data
	require.NoError(t, d.Unmarshal(&first, line))
	copy(line, `{"tag":"x","path":"/q"}`)
	require.NoError(t, d.Unmarshal(&second, line))

	a.Equal("t", first.Tag)
	a.Equal("/p", first.Path)
	a.Equal(2, d.tags.Len())
	a.Equal("x", second.Tag)
}

func TestUnmarshalErrors(t *testing.T) {
	t.Parallel()
	d := NewDecoder()

	for _, line := range []string{
		`{"path":"/a"`,
		`{"path":`,
		`["/a"]`,
		`{"path":"/a","headers":{"a":"b"}}`,
		`{"path":"/a"} trailing`,
	} {
		var data Data
		assert.Error(t, d.Unmarshal(&data, []byte(line)), line)
	}

	var data Data
	assert.ErrorIs(t, d.Unmarshal(&data, []byte(`{"tag":"t"}`)), ErrNoPath)
	assert.ErrorIs(t, d.Unmarshal(&data, []byte(`{"path":"/a","body":01}`)), ErrInvalidJSON)
}
