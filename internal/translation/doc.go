// Package translation defines the provider contract used by the translation
// engine, together with the per-run translation cache, the retry controller
// that wraps every provider call, and the engine's error types.
package translation
