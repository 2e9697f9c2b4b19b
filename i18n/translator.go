package i18n

import (
	"strings"
	"sync/atomic"
)

// Translator retrieves localized messages for issue codes.
// data provides optional parameters to embed in the message (for example,
// "expected" or "field"); templates reference them as {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"invalid_type":    "expected {expected}, got {got}",
		"too_short":       "string {value} is shorter than the minimum length of {min}",
		"too_long":        "string {value} exceeds the maximum length of {max}",
		"pattern":         "string {value} does not match pattern {pattern}",
		"required":        "missing field {field}",
		"item":            "error in list item {index}",
		"field":           "error parsing field {field}",
		"union_exhausted": "{got} matched none of {alternatives}",
		"invalid_enum":    "{value} is not a member of enum {enum}",
		"max_depth":       "max depth {max} exceeded",
	},
	"ja": {
		"invalid_type":    "型が不正です ({expected} を期待しましたが {got} でした)",
		"too_short":       "文字列 {value} が最小長 {min} より短いです",
		"too_long":        "文字列 {value} が最大長 {max} を超えています",
		"pattern":         "文字列 {value} がパターン {pattern} に一致しません",
		"required":        "必須フィールド {field} が不足しています",
		"item":            "リストの要素 {index} でエラー",
		"field":           "フィールド {field} の解析でエラー",
		"union_exhausted": "{got} はいずれの候補 {alternatives} にも一致しません",
		"invalid_enum":    "{value} は列挙型 {enum} のメンバーではありません",
		"max_depth":       "最大深さ {max} を超えました",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// translatorBox gives atomic.Value a single concrete type to store.
type translatorBox struct{ tr Translator }

var current atomic.Value

func init() { current.Store(translatorBox{dictTranslator{lang: "en"}}) }

// SetLanguage switches the built-in Translator language ("en"/"ja"). It is
// safe to call while validations are running.
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	current.Store(translatorBox{dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	current.Store(translatorBox{tr})
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	return current.Load().(translatorBox).tr.Message(code, data)
}
