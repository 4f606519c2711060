package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Синтаксические (от front-end)
	SynInfo       Code = 2000
	SynParseError Code = 2001
	SynMissing    Code = 2002

	// Устаревшие вызовы
	DepInfo          Code = 1000
	DeprecatedMethod Code = 1001

	// Ввод-вывод
	IOInfo     Code = 4000
	IOLoadFail Code = 4001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:      "Unknown error",
		SynInfo:          "Syntax information",
		SynParseError:    "Source could not be parsed",
		SynMissing:       "Missing syntax element",
		DepInfo:          "Deprecation information",
		DeprecatedMethod: "Deprecated method call",
		IOInfo:           "I/O information",
		IOLoadFail:       "Failed to load file",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("DEP%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
