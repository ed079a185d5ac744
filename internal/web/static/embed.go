package static

import _ "embed"

//go:embed index.html
var index []byte

// Index returns the recognition page.
func Index() []byte {
	return index
}
