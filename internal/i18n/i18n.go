package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	bundle        *i18n.Bundle
	matcher       language.Matcher
	locales       []string
	defaultLocale = "id"
)

type ctxKey struct{}

// Init loads all locale files and sets the default locale.
func Init(defLocale string) error {
	if defLocale != "" {
		defaultLocale = defLocale
	}
	def, err := language.Parse(defaultLocale)
	if err != nil {
		return fmt.Errorf("i18n: default locale %q: %w", defaultLocale, err)
	}

	bundle = i18n.NewBundle(def)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("i18n: read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return fmt.Errorf("i18n: read %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return fmt.Errorf("i18n: parse %s: %w", e.Name(), err)
		}
	}

	// The default goes first so it wins when nothing matches.
	tags := []language.Tag{def}
	locales = []string{defaultLocale}
	for _, t := range bundle.LanguageTags() {
		if t != def {
			tags = append(tags, t)
			locales = append(locales, t.String())
		}
	}
	matcher = language.NewMatcher(tags)

	slog.Info("i18n loaded", "files", len(entries), "default", defaultLocale)
	return nil
}

// Match picks the best supported locale for an Accept-Language header.
func Match(acceptLanguage string) string {
	if matcher == nil || strings.TrimSpace(acceptLanguage) == "" {
		return defaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return defaultLocale
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return defaultLocale
	}
	return locales[idx]
}

// WithLocale returns a new context carrying the given locale string (e.g. "id", "en").
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, ctxKey{}, locale)
}

// LocaleFromContext extracts the locale from the context.
// Returns the configured default locale if not set.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return defaultLocale
}

// T translates a message ID using the locale from the context.
// Optional templateData provides values for template placeholders.
func T(ctx context.Context, messageID string, templateData ...map[string]any) string {
	if bundle == nil {
		return messageID
	}
	l := i18n.NewLocalizer(bundle, LocaleFromContext(ctx), defaultLocale)

	cfg := &i18n.LocalizeConfig{MessageID: messageID}
	if len(templateData) > 0 && templateData[0] != nil {
		cfg.TemplateData = templateData[0]
	}

	msg, err := l.Localize(cfg)
	if err != nil {
		return messageID
	}
	return msg
}
