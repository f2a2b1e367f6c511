package i18n

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const (
	LanguageEnglish    = "en"
	LanguagePortuguese = "pt-BR"
)

//go:embed locales/*.toml
var locales embed.FS

type Translator struct {
	bundle    *i18n.Bundle
	supported []language.Tag
	matcher   language.Matcher
}

// NewTranslator loads every embedded message file. English is the fallback.
func NewTranslator() (*Translator, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(locales, "locales/*.toml")
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		if _, err := bundle.LoadMessageFileFS(locales, file); err != nil {
			return nil, fmt.Errorf("failed to load translation file %s: %w", file, err)
		}
	}

	supported := bundle.LanguageTags()

	return &Translator{
		bundle:    bundle,
		supported: supported,
		matcher:   language.NewMatcher(supported),
	}, nil
}

// Match picks the supported language closest to an Accept-Language header.
func (t *Translator) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return LanguageEnglish
	}

	_, index, confidence := t.matcher.Match(tags...)
	if confidence == language.No {
		return LanguageEnglish
	}

	return t.supported[index].String()
}

// Message localizes messageID. Unknown ids come back unchanged.
func (t *Translator) Message(lang, messageID string, data map[string]any) string {
	return t.localize(lang, &i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
}

func (t *Translator) Plural(lang, messageID string, count int) string {
	return t.localize(lang, &i18n.LocalizeConfig{
		MessageID:    messageID,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}

func (t *Translator) localize(lang string, config *i18n.LocalizeConfig) string {
	localizer := i18n.NewLocalizer(t.bundle, lang, LanguageEnglish)

	msg, err := localizer.Localize(config)
	if err != nil {
		zap.L().Warn("translation not found",
			zap.String("lang", lang),
			zap.String("message_id", config.MessageID),
			zap.Error(err))
		return config.MessageID
	}

	return msg
}
