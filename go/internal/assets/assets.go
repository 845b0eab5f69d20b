// Package assets holds files compiled into the server binary.
package assets

import _ "embed"

// WordList is the default category word pool in the words.FilePool format.
//
//go:embed wordlist.yaml
var WordList []byte
