package middleware

import (
	"github.com/gin-gonic/gin"

	"todoservice/internal/adapter/http/helper"
	"todoservice/internal/adapter/i18n"
	ct "todoservice/pkg/context"
)

// LanguageMiddleware resolves Accept-Language to a supported language.
func LanguageMiddleware(translator *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := translator.Match(c.GetHeader("Accept-Language"))

		c.Set(helper.LanguageKey, lang)
		GetCurrent(c).Set(ct.LanguageKey, lang)

		c.Next()
	}
}
