// Package i18n localizes user-facing strings of the CLI and the HTTP API.
// Scoring labels and feedback texts are fixed English and are not translated.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

type ctxKey struct{}

// Catalog holds the loaded translations.
type Catalog struct {
	bundle *i18n.Bundle
	lang   string
}

// Load parses every embedded locale file. lang is the default language used
// when a request or localizer has no better match.
func Load(lang string) (*Catalog, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("parse language %q: %w", lang, err)
	}

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("parse locale file %s: %w", e.Name(), err)
		}
		slog.Debug("loaded locale file", "file", e.Name())
	}

	return &Catalog{bundle: bundle, lang: tag.String()}, nil
}

// Lang returns the default language tag.
func (c *Catalog) Lang() string { return c.lang }

// Localizer returns a localizer preferring langs in order, then the default.
// Each entry may be a tag or an Accept-Language header value.
func (c *Catalog) Localizer(langs ...string) *i18n.Localizer {
	return i18n.NewLocalizer(c.bundle, append(langs, c.lang)...)
}

// Context returns ctx carrying a localizer for langs.
func (c *Catalog) Context(ctx context.Context, langs ...string) context.Context {
	return WithLocalizer(ctx, c.Localizer(langs...))
}

// WithLocalizer stores a localizer in the context.
func WithLocalizer(ctx context.Context, loc *i18n.Localizer) context.Context {
	return context.WithValue(ctx, ctxKey{}, loc)
}

func localize(ctx context.Context, cfg *i18n.LocalizeConfig) string {
	loc, ok := ctx.Value(ctxKey{}).(*i18n.Localizer)
	if !ok {
		return cfg.MessageID
	}
	s, err := loc.Localize(cfg)
	if err != nil {
		slog.Warn("missing translation", "id", cfg.MessageID, "error", err)
		return cfg.MessageID
	}
	return s
}

// T translates a message by ID. Without a localizer in ctx, or for an unknown
// ID, the ID itself is returned.
func T(ctx context.Context, msgID string) string {
	return localize(ctx, &i18n.LocalizeConfig{MessageID: msgID})
}

// Td translates a message by ID with template data.
func Td(ctx context.Context, msgID string, data map[string]any) string {
	return localize(ctx, &i18n.LocalizeConfig{MessageID: msgID, TemplateData: data})
}

// Tp translates a pluralized message. data may be nil; Count is always set.
func Tp(ctx context.Context, msgID string, count int, data map[string]any) string {
	td := map[string]any{"Count": count}
	for k, v := range data {
		td[k] = v
	}
	return localize(ctx, &i18n.LocalizeConfig{
		MessageID:    msgID,
		PluralCount:  count,
		TemplateData: td,
	})
}
