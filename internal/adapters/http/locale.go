package http

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"

	"github.com/samirrijal/metropass/internal/core/domain"
)

const localeKey = "locale"

var localeMatcher = language.NewMatcher([]language.Tag{
	language.Vietnamese,
	language.English,
})

// LocaleMiddleware resolves the display locale from ?lang= or
// Accept-Language and stores it for the handlers.
func LocaleMiddleware(fallback domain.Locale) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(localeKey, resolveLocale(c.Query("lang"), c.Get(fiber.HeaderAcceptLanguage), fallback))
		c.Vary(fiber.HeaderAcceptLanguage)
		return c.Next()
	}
}

func resolveLocale(query, acceptLanguage string, fallback domain.Locale) domain.Locale {
	switch query {
	case "en":
		return domain.LocaleEnglish
	case "vi":
		return domain.LocaleVietnamese
	}
	if acceptLanguage == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	if idx == 1 {
		return domain.LocaleEnglish
	}
	return domain.LocaleVietnamese
}

func localeOf(c *fiber.Ctx) domain.Locale {
	if l, ok := c.Locals(localeKey).(domain.Locale); ok {
		return l
	}
	return domain.LocaleVietnamese
}
