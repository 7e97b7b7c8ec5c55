package segment

import "unicode"

// IsNonLexical 判断单字是否为非词汇字符：空白、标点、符号、数字、拉丁字母。
// 此类字符不参与词表匹配，直接成为独立词元。
func IsNonLexical(r rune) bool {
	switch {
	case r < 0x80:
		// ASCII 全部视为非词汇（字母、数字、标点、控制符）
		return true
	case unicode.IsSpace(r), unicode.IsControl(r):
		return true
	case unicode.IsPunct(r), unicode.IsSymbol(r):
		return true
	case unicode.IsNumber(r):
		return true
	case unicode.Is(unicode.Latin, r):
		return true
	}
	return false
}

// IsCJK 判断是否为中日韩统一表意文字（基本区、扩展 A、扩展 B–F）。
func IsCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x20000 && r <= 0x2EBEF)
}

// IsCountableWord: 至少含一个汉字，且不含 ASCII 字母或数字。
func IsCountableWord(w string) bool {
	han := false
	for _, r := range w {
		if r < 0x80 && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
		if IsCJK(r) {
			han = true
		}
	}
	return han
}
