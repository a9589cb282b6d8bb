package packaging

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// binaryExtensions are read verbatim. Everything else is treated as UTF-8 text.
var binaryExtensions = map[string]bool{
	".woff":  true,
	".woff2": true,
	".png":   true,
	".jpg":   true,
	".jpeg":  true,
	".gif":   true,
}

// IsBinary reports whether path is stored byte-for-byte.
func IsBinary(path string) bool {
	return binaryExtensions[strings.ToLower(filepath.Ext(path))]
}

// readSource reads a file in the mode its extension calls for. Text files
// with invalid UTF-8 get one U+FFFD for each byte that does not decode.
func readSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if IsBinary(path) || utf8.Valid(data) {
		return data, nil
	}
	return decodeText(data), nil
}

func decodeText(data []byte) []byte {
	out := make([]byte, 0, len(data)+8)
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		out = utf8.AppendRune(out, r)
		data = data[size:]
	}
	return out
}
