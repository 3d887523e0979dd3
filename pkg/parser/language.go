package parser

import (
	"path/filepath"
	"strings"
)

// Language represents a supported source language.
type Language int

const (
	// LanguageCPP covers C++ sources and headers. Plain C files are parsed
	// with the same grammar.
	LanguageCPP Language = iota
	// LanguageUnknown represents an unsupported language
	LanguageUnknown
)

// String returns the string representation of the language.
func (l Language) String() string {
	switch l {
	case LanguageCPP:
		return "cpp"
	default:
		return "unknown"
	}
}

var cppExtensions = map[string]bool{
	".cc":  true,
	".cpp": true,
	".cxx": true,
	".c++": true,
	".c":   true,
	".h":   true,
	".hh":  true,
	".hpp": true,
	".hxx": true,
	".h++": true,
	".ipp": true,
}

// DetectLanguage detects the language from a file path.
// Returns LanguageUnknown if the file extension is not recognized.
func DetectLanguage(filePath string) Language {
	if cppExtensions[strings.ToLower(filepath.Ext(filePath))] {
		return LanguageCPP
	}
	return LanguageUnknown
}

// IsHeader reports whether path looks like a header file.
func IsHeader(filePath string) bool {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".h", ".hh", ".hpp", ".hxx", ".h++", ".ipp":
		return true
	}
	return false
}

// ParseLanguageString converts a language string to a Language type.
func ParseLanguageString(lang string) Language {
	switch strings.ToLower(lang) {
	case "cpp", "c++", "cxx", "c":
		return LanguageCPP
	default:
		return LanguageUnknown
	}
}
