package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "tag").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"invalid_type":          "invalid type",
		"invalid_literal":       "invalid literal value",
		"invalid_enum":          "value is not one of the allowed options",
		"invalid_format":        "invalid format",
		"not_integer":           "expected integer",
		"required":              "required property missing",
		"unknown_key":           "unknown key",
		"too_small":             "too small",
		"too_big":               "too big",
		"too_short":             "too short",
		"pattern":               "does not match pattern",
		"discriminator_missing": "discriminator missing",
		"discriminator_unknown": "unknown variant",
		"parse_error":           "parse error",
		"custom":                "invalid value",
	},
	"ja": {
		"invalid_type":          "型が不正です",
		"invalid_literal":       "リテラル値が不正です",
		"invalid_enum":          "許可された値ではありません",
		"invalid_format":        "形式が不正です",
		"not_integer":           "整数である必要があります",
		"required":              "必須プロパティが不足しています",
		"unknown_key":           "未知のキーです",
		"too_small":             "小さすぎます",
		"too_big":               "大きすぎます",
		"too_short":             "短すぎます",
		"pattern":               "パターンに一致しません",
		"discriminator_missing": "判別子がありません",
		"discriminator_unknown": "未知のバリアントです",
		"parse_error":           "解析エラー",
		"custom":                "値が不正です",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	// {key} placeholders are filled from data when present.
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
