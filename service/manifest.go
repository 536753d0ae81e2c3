package service

import (
	"github.com/ozontech/typedhttp/codec"
)

// Manifest declares a remote service: named operations under one base URL.
type Manifest struct {
	BaseURL    string
	Operations map[string]Operation
}

type Operation struct {
	Method string
	// PathTemplate holds {name} placeholders filled from Args.Params.
	PathTemplate string
	// PathParamCodec documents the params shape. Substitution does not check it.
	PathParamCodec codec.Codec
	InputCodec     codec.Codec
	OutputCodec    codec.Codec
	// MapArguments converts the caller's argument into Args. When nil the
	// caller passes Args directly.
	MapArguments func(arg any) (Args, error)
}

// Args are the inputs of one operation call.
type Args struct {
	Params map[string]any
	Data   any
}
