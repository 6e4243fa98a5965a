//go:build js && wasm

package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/himanishpuri/SongBook/pkg/songbook/chords"
	"github.com/himanishpuri/SongBook/pkg/songbook/index"
	"github.com/himanishpuri/SongBook/pkg/songbook/locale"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorUnknownLocale
	ErrorUnknownChord
	ErrorEncoding
)

// Lays out a song file as chord sheet lines.
// Args: text, locale, offset. Returns: {error: number, data: array | string}
func renderSong(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 3 arguments: text, locale, offset")
	}
	if args[0].Type() != js.TypeString || args[1].Type() != js.TypeString {
		return makeErrorResponse(ErrorInvalidArgs, "text and locale must be strings")
	}
	if args[2].Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "offset must be a number")
	}

	loc := args[1].String()
	if _, _, ok := locale.Default().Resolve(loc); !ok {
		return makeErrorResponse(ErrorUnknownLocale, fmt.Sprintf("Unknown locale: %s", loc))
	}

	classifier := locale.Default().Classifier(loc)
	lines := classifier.Process(index.SongLines([]byte(args[0].String()), classifier.Scale()), args[2].Int())
	return makeDataResponse(lines)
}

// Transposes one chord line.
// Args: line, offset, locale. Returns: {error: number, data: string}
func transposeLine(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 3 arguments: line, offset, locale")
	}
	if args[0].Type() != js.TypeString || args[1].Type() != js.TypeNumber || args[2].Type() != js.TypeString {
		return makeErrorResponse(ErrorInvalidArgs, "Expected (string, number, string)")
	}

	scale := locale.Default().Scale(args[2].String())
	if len(scale) == 0 {
		return makeErrorResponse(ErrorUnknownLocale, fmt.Sprintf("Unknown locale: %s", args[2].String()))
	}
	return makeDataResponse(chords.TransposeLine(args[0].String(), args[1].Int(), scale))
}

// Computes the offset that makes a chord line start on a target chord.
// Args: line, target, locale. Returns: {error: number, data: number | string}
func chordOffset(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 3 arguments: line, target, locale")
	}
	for i, a := range args[:3] {
		if a.Type() != js.TypeString {
			return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("argument %d must be a string", i+1))
		}
	}

	scale := locale.Default().Scale(args[2].String())
	if len(scale) == 0 {
		return makeErrorResponse(ErrorUnknownLocale, fmt.Sprintf("Unknown locale: %s", args[2].String()))
	}
	offset, err := chords.Offset(args[0].String(), args[1].String(), scale)
	if err != nil {
		return makeErrorResponse(ErrorUnknownChord, err.Error())
	}
	return makeDataResponse(offset)
}

// makeDataResponse converts v to plain JavaScript values through JSON.
func makeDataResponse(v any) js.Value {
	raw, err := json.Marshal(v)
	if err != nil {
		return makeErrorResponse(ErrorEncoding, fmt.Sprintf("Failed to encode result: %v", err))
	}
	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", js.Global().Get("JSON").Call("parse", string(raw)))
	return result
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")
	logf := func(method, format string, args ...any) {
		if !console.IsUndefined() {
			console.Call(method, fmt.Sprintf(format, args...))
		}
	}

	logf("log", "🔧 SongBook WASM module initializing...")

	done := make(chan struct{})

	js.Global().Set("songbookRender", js.FuncOf(renderSong))
	js.Global().Set("songbookTranspose", js.FuncOf(transposeLine))
	js.Global().Set("songbookOffset", js.FuncOf(chordOffset))
	logf("log", "📝 songbook functions registered for locales %v", locale.Default().Locales())

	window := js.Global().Get("window")
	if !window.IsUndefined() {
		eventInit := js.Global().Get("Object").New()
		event := js.Global().Get("CustomEvent").New("wasmReady", eventInit)
		window.Call("dispatchEvent", event)
		logf("log", "✅ wasmReady event dispatched")
	} else {
		logf("error", "❌ window object is undefined!")
	}

	<-done
}
