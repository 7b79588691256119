package config

import "unicode/utf8"

const (
	unnamedFile = "_unnamed_"
	// most file systems limit single name to 255 bytes
	maxFileNameLen = 255
)

func limitFileName(name string) string {
	if len(name) == 0 {
		return unnamedFile
	}
	for len(name) > maxFileNameLen {
		_, size := utf8.DecodeLastRuneInString(name)
		name = name[:len(name)-size]
	}
	return name
}
