package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeIsLoose(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	c := Type(Props{"hello": Literal("world")})
	a.Equal(`{ hello: "world" }`, c.Name())

	in := map[string]any{"hello": "world", "goodnight": "moon"}
	a.True(c.Is(in))

	v, err := c.Decode(in)
	a.NoError(err)
	a.Equal(in, v)

	w, err := c.Encode(in)
	a.NoError(err)
	a.Equal(in, w)

	a.False(c.Is(map[string]any{}))
	_, err = c.Decode(map[string]any{})
	errs := AsErrors(err)
	require.Len(t, errs, 1)
	a.Equal([]string{"hello"}, errs[0].Path)
}

func TestExactStrips(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	c := Exact(Type(Props{"hello": Literal("world")}))
	in := map[string]any{"hello": "world", "goodnight": "moon"}

	a.False(c.Is(in))
	a.True(c.Is(map[string]any{"hello": "world"}))

	v, err := c.Decode(in)
	a.NoError(err)
	a.Equal(map[string]any{"hello": "world"}, v)

	w, err := c.Encode(in)
	a.NoError(err)
	a.Equal(map[string]any{"hello": "world"}, w)

	_, err = c.Decode("nope")
	a.Error(err)

	a.Panics(func() { Exact(String()) })
}

func TestPartial(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	c := Partial(Props{"meta": Record(String())})
	a.Equal("{ meta?: { [K in string]: string } }", c.Name())
	a.True(c.Is(map[string]any{}))
	a.True(c.Is(map[string]any{"meta": map[string]any{"k": "v"}}))
	a.False(c.Is(map[string]any{"meta": "v"}))

	v, err := c.Decode(map[string]any{})
	a.NoError(err)
	a.Equal(map[string]any{}, v)
}

func TestExactIntersection(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	c := Exact(Intersection(
		Type(Props{"code": String()}),
		Partial(Props{
			"meta":    Record(String()),
			"secrets": Record(String()),
		}),
	))

	a.True(c.Is(map[string]any{"code": "hello world"}))
	a.False(c.Is(map[string]any{"code": "hello world", "no": "good"}))
	a.False(c.Is(map[string]any{"meta": map[string]any{}}))

	w, err := c.Encode(map[string]any{"code": "hello world", "no": "good"})
	a.NoError(err)
	a.Equal(map[string]any{"code": "hello world"}, w)

	v, err := c.Decode(map[string]any{"code": "x", "meta": map[string]any{"a": "b"}, "extra": 1.0})
	a.NoError(err)
	a.Equal(map[string]any{"code": "x", "meta": map[string]any{"a": "b"}}, v)

	_, err = c.Decode(map[string]any{"code": 1.0, "meta": "bad"})
	a.Len(AsErrors(err), 2)
}

func TestNestedPaths(t *testing.T) {
	t.Parallel()

	c := Type(Props{
		"outer": Type(Props{
			"list": Array(Type(Props{"name": String()})),
		}),
	})
	_, err := c.Decode(map[string]any{
		"outer": map[string]any{
			"list": []any{map[string]any{"name": "ok"}, map[string]any{"name": 5.0}},
		},
	})
	errs := AsErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, "$.outer.list[1].name", errs[0].PathString())
}
