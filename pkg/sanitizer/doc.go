// Package sanitizer normalizes untrusted customer input (names, phones, free-text
// comments) before it reaches validation or storage.
package sanitizer
