// Package language normalizes requested target language codes.
//
// Requested codes go through a fixed alias table (kr -> ko, jp -> ja,
// cn -> zh-CN, ...) and are then checked against the set of languages the
// engine accepts. Lookup is case-insensitive and accepts "_" in place of "-".
package language
